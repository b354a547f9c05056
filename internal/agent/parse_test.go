package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		completion string
		want       sample
		parsed     bool
	}{
		{"plain object", `{"name":"a","count":2}`, sample{"a", 2}, true},
		{"fenced json", "```json\n{\"name\":\"b\"}\n```", sample{Name: "b"}, true},
		{"bare fence", "```\n{\"count\":3}\n```", sample{Count: 3}, true},
		{"surrounding whitespace", "\n  {\"name\":\"c\"}  \n", sample{Name: "c"}, true},
		{"prose", "Sure! Here is your workflow.", sample{}, false},
		{"array", `[{"name":"a"}]`, sample{}, false},
		{"null", "null", sample{}, false},
		{"empty", "", sample{}, false},
		{"truncated", `{"name":"a","cou`, sample{}, false},
		{"wrong type", `{"count":"many"}`, sample{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Decode[sample](tt.completion)
			got, ok := out.Parsed()
			assert.Equal(t, tt.parsed, ok)
			if tt.parsed {
				assert.Equal(t, tt.want, got)
				assert.NoError(t, out.Cause())
			} else {
				require.Error(t, out.Cause())
				assert.True(t, errors.Is(out.Cause(), ErrMalformed))
			}
		})
	}
}

func TestPreviewTruncates(t *testing.T) {
	long := "this completion is considerably longer than forty characters"
	assert.Equal(t, long[:40]+"...", preview(long))
	assert.Equal(t, "short", preview("short"))
}
