package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LiboWorks/workflow-wizard/internal/config"
	wtesting "github.com/LiboWorks/workflow-wizard/internal/testing"
	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	config.Reset()
	t.Cleanup(config.Reset)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCreateOffline(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.json")

	out, err := execute(t, "", "create", "--provider", "offline", "--format", "n8n", "--out", outPath, "archive", "my", "notes")
	require.NoError(t, err, out)

	for _, want := range []string{
		"🎯 Understanding your request...",
		"✓ Intent: archive my notes",
		"✓ Created workflow with 1 steps",
		"✓ Workflow validated successfully",
		"📦 Exporting workflow...",
		"Name: archive my notes",
		"Steps: 1",
		"💾 Workflow saved to: " + outPath,
	} {
		assert.Contains(t, out, want)
	}

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var result workflow.ExportResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, workflow.FormatN8N, result.Format)
	require.NotNil(t, result.N8N)
	assert.Len(t, result.N8N.Nodes, 1)
}

func TestCreateInteractive(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.json")

	out, err := execute(t, "sync my calendar\n", "create", "--provider", "offline", "--out", outPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Describe the workflow you want to create:")
	assert.Contains(t, out, "Name: sync my calendar")
	assert.FileExists(t, outPath)
}

func TestCreateEmptyDescription(t *testing.T) {
	out, err := execute(t, "\n", "create", "--provider", "offline", "--out", filepath.Join(t.TempDir(), "x.json"))
	assert.Error(t, err)
	assert.Contains(t, out, "Please provide a workflow description")
}

func TestCreateMissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("WIZARD_ANTHROPIC_API_KEY", "")

	out, err := execute(t, "", "create", "--provider", "anthropic", "--out", filepath.Join(t.TempDir(), "x.json"), "anything")
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
	assert.Contains(t, out, "ANTHROPIC_API_KEY")
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "", "validate", "--provider", "offline", wtesting.FixturePath(t, "weather_digest.yaml"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "✅ Quick validation passed")
	assert.Contains(t, out, "✅ Morning weather digest is valid")
	assert.NotContains(t, out, "Lint:")
}

func TestValidateCommandStructuralFailure(t *testing.T) {
	out, err := execute(t, "", "validate", "--offline", wtesting.FixturePath(t, "missing_steps.json"))
	assert.ErrorIs(t, err, errPlanInvalid)
	assert.Contains(t, out, "❌ Quick validation failed:")
	assert.Contains(t, out, "steps")
}

func TestValidateCommandLint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`workflow_name: Nightly
trigger:
  type: schedule
  config:
    cron: "at night"
steps:
  - step_id: 1
    name: Ping
    tool: webhook
    action: post
tools_used: [webhook]
`), 0o644))

	out, err := execute(t, "", "validate", "--offline", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "🔎 Lint:")
	assert.Contains(t, out, `schedule trigger cron "at night" does not parse`)
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "", "export", "-f", "n8n", "-o", dir, wtesting.FixturePath(t, "weather_digest.yaml"))
	require.NoError(t, err, out)

	data, err := os.ReadFile(filepath.Join(dir, "morning_weather_digest.n8n.json"))
	require.NoError(t, err)
	var wf workflow.N8NWorkflow
	require.NoError(t, json.Unmarshal(data, &wf))
	assert.Len(t, wf.Nodes, 2)
}

func TestExportCommandMultiDocument(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "", "export", "--format", "python", "--output", dir, wtesting.FixturePath(t, "multi_plan.yaml"))
	require.NoError(t, err, out)

	for _, name := range []string{"log_signups.py", "archive_notes.py"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "def run_workflow():")
	}
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		name   string
		format workflow.Format
		want   string
	}{
		{"Morning weather digest", workflow.FormatYAML, "morning_weather_digest.yaml"},
		{"Sync: CRM → Sheets!", workflow.FormatZapier, "sync_crm__sheets.zapier.json"},
		{"", workflow.FormatJSON, "workflow.json"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, exportFileName(workflow.Plan{WorkflowName: tt.name}, tt.format))
		})
	}
}

func TestModelPull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("gguf"))
	}))
	defer srv.Close()
	dir := t.TempDir()

	out, err := execute(t, "", "model", "pull", "--dir", dir, srv.URL+"/tiny.gguf")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✅ Model ready at "+filepath.Join(dir, "tiny.gguf"))
	assert.FileExists(t, filepath.Join(dir, "tiny.gguf"))
}
