package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LiboWorks/workflow-wizard/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	set, err := Load(config.NewConfig())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), set)
	assert.Contains(t, set.Intent, `"trigger_type": "schedule|event|manual"`)
	assert.Contains(t, set.Planner, `"tools_used"`)
	assert.Contains(t, set.Validator, `"is_valid"`)
}

func TestLoadPartialOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PlannerFile), []byte("custom planner"), 0o644))

	set, err := Load(config.NewConfig().WithPrompts(dir))
	require.NoError(t, err)
	assert.Equal(t, "custom planner", set.Planner)
	assert.Equal(t, DefaultIntent, set.Intent)
	assert.Equal(t, DefaultValidator, set.Validator)
}

func TestLoadMissingDirectoryKeepsDefaults(t *testing.T) {
	set, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), set)
}

func TestLoadUnreadableOverride(t *testing.T) {
	dir := t.TempDir()
	// A directory where a file is expected cannot be read.
	require.NoError(t, os.Mkdir(filepath.Join(dir, IntentFile), 0o755))

	_, err := LoadDir(dir)
	assert.ErrorContains(t, err, "load prompt intent.txt")
}
