package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed marks a completion that could not be read as the expected
// record. It never leaves a stage: malformed output degrades to a fallback.
var ErrMalformed = errors.New("malformed completion")

// Outcome is the result of decoding a completion: either a parsed value or
// the reason it was malformed.
type Outcome[T any] struct {
	value T
	cause error
}

// Parsed returns the decoded value and true, or the zero value and false.
func (o Outcome[T]) Parsed() (T, bool) {
	return o.value, o.cause == nil
}

// Cause is nil for a parsed outcome and wraps ErrMalformed otherwise.
func (o Outcome[T]) Cause() error {
	return o.cause
}

func malformed[T any](format string, args ...any) Outcome[T] {
	return Outcome[T]{cause: fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))}
}

// Decode reads completion as a JSON object of type T. Markdown code fences
// around the object are tolerated; anything else that is not a single JSON
// object is malformed.
func Decode[T any](completion string) Outcome[T] {
	text := cleanJSONResponse(completion)
	if !strings.HasPrefix(text, "{") {
		return malformed[T]("expected a JSON object, got %q", preview(text))
	}
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return malformed[T]("%v", err)
	}
	return Outcome[T]{value: v}
}

func cleanJSONResponse(s string) string {
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	return trimmed
}

func preview(s string) string {
	const max = 40
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
