// Package prompts holds the instruction templates sent to the model by each
// stage. Built-in defaults can be replaced per stage by files in a
// configured directory.
package prompts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/LiboWorks/workflow-wizard/internal/config"
)

// Override file names looked up in the prompts directory.
const (
	IntentFile    = "intent.txt"
	PlannerFile   = "planner.txt"
	ValidatorFile = "validator.txt"
)

// Set is the full collection of stage templates. It is read once and then
// shared read-only.
type Set struct {
	Intent    string
	Planner   string
	Validator string
}

// Defaults returns the built-in templates.
func Defaults() Set {
	return Set{
		Intent:    DefaultIntent,
		Planner:   DefaultPlanner,
		Validator: DefaultValidator,
	}
}

// Load returns the templates for cfg, replacing each default whose override
// file exists in cfg.Prompts.Dir. A missing file keeps the default; any
// other read failure is an error.
func Load(cfg *config.Config) (Set, error) {
	return LoadDir(cfg.Prompts.Dir)
}

// LoadDir is Load for an explicit directory. An empty dir yields Defaults.
func LoadDir(dir string) (Set, error) {
	set := Defaults()
	if dir == "" {
		return set, nil
	}
	for name, dst := range map[string]*string{
		IntentFile:    &set.Intent,
		PlannerFile:   &set.Planner,
		ValidatorFile: &set.Validator,
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Set{}, fmt.Errorf("load prompt %s: %w", name, err)
		}
		*dst = string(data)
	}
	return set, nil
}
