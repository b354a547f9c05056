package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LiboWorks/workflow-wizard/internal/agent"
	"github.com/LiboWorks/workflow-wizard/internal/backend"
	"github.com/LiboWorks/workflow-wizard/internal/config"
	"github.com/LiboWorks/workflow-wizard/internal/prompts"
	wtesting "github.com/LiboWorks/workflow-wizard/internal/testing"
	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

var fixedTime = time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)

func newTestPipeline(t *testing.T, llm backend.LLMBackend, opts ...Option) *Pipeline {
	t.Helper()
	cfg := config.NewConfig().WithProvider(config.ProviderOffline, "")
	opts = append([]Option{WithClock(func() time.Time { return fixedTime }), WithPrompts(prompts.Defaults())}, opts...)
	p, err := New(llm, cfg, opts...)
	require.NoError(t, err)
	return p
}

func TestRunWeatherEndToEnd(t *testing.T) {
	// The validator answers with prose, so validation degrades to a pass.
	llm := wtesting.NewScriptedBackend(wtesting.WeatherIntent, wtesting.WeatherPlan, "The workflow looks reasonable.")
	p := newTestPipeline(t, llm)

	res, err := p.Run(context.Background(), wtesting.WeatherRequest, "n8n")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "Workflow created successfully", res.Message)
	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)

	require.NotNil(t, res.Intent)
	assert.Equal(t, wtesting.WeatherRequest, res.Intent.RawInput)
	assert.Equal(t, workflow.TriggerSchedule, res.Intent.TriggerType)

	wtesting.ExpectPlan(t, res.Workflow).
		Named("Morning weather email").
		StepCount(2).
		UsesTools("webhook", "gmail").
		PassesQuickValidate().
		HasIntent(wtesting.WeatherRequest)

	require.NotNil(t, res.Export)
	assert.Equal(t, workflow.FormatN8N, res.Export.Format)
	assert.Equal(t, "2024-06-03T07:00:00Z", res.Export.ExportTime)
	require.NotNil(t, res.Export.N8N)
	assert.Len(t, res.Export.N8N.Nodes, 2)
	assert.Len(t, res.Export.N8N.Connections, 1)
	assert.Empty(t, res.Lint)

	require.Equal(t, 3, llm.Calls())
	assert.Equal(t, []int{config.DefaultIntentTokens, config.DefaultPlanTokens, config.DefaultValidateTokens}, llm.Budgets)
	assert.Contains(t, llm.Prompts[0], "User Request: "+wtesting.WeatherRequest)
	assert.Contains(t, llm.Prompts[1], "Intent Analysis:\n")
	assert.Contains(t, llm.Prompts[2], "Workflow Plan:\n")
}

func TestRunOfflineDegradesEveryStage(t *testing.T) {
	p := newTestPipeline(t, backend.NewOfflineBackend())

	res, err := p.Run(context.Background(), wtesting.WeatherRequest, "python")
	require.NoError(t, err)

	assert.Equal(t, agent.FallbackIntent(wtesting.WeatherRequest), *res.Intent)
	wtesting.ExpectPlan(t, res.Workflow).
		Named(wtesting.WeatherRequest).
		IsWebhookFallback().
		PassesQuickValidate().
		HasIntent(wtesting.WeatherRequest)
	assert.Equal(t, workflow.FormatPython, res.Export.Format)
	assert.Contains(t, res.Export.PythonCode, "# Step 1: Execute workflow")
}

func TestRunRejectedWorkflow(t *testing.T) {
	llm := wtesting.NewScriptedBackend(wtesting.WeatherIntent, wtesting.WeatherPlan, `{
		"is_valid": false,
		"issues": [
			{"severity": "error", "step_id": 2, "message": "recipient is missing", "suggestion": "set config.to"},
			{"severity": "warning", "step_id": 1, "message": "no timeout", "suggestion": "add one"}
		]
	}`)
	p := newTestPipeline(t, llm)

	res, err := p.Run(context.Background(), wtesting.WeatherRequest, "json")
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidWorkflow))

	var invalid *InvalidWorkflowError
	require.True(t, errors.As(err, &invalid))
	assert.Len(t, invalid.Issues, 2)
	assert.Equal(t, "Morning weather email", invalid.Workflow.WorkflowName)
	assert.Equal(t, "workflow validation failed: recipient is missing (and 1 more issues)", err.Error())
	assert.Equal(t, 3, llm.Calls(), "export never runs")
}

func TestRunCompletionFailureHalts(t *testing.T) {
	boom := errors.New("upstream 503")
	llm := wtesting.NewScriptedBackend(wtesting.WeatherIntent).Then(wtesting.Reply{Err: boom})
	p := newTestPipeline(t, llm)

	_, err := p.Run(context.Background(), wtesting.WeatherRequest, "json")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "plan: completion")
	assert.Equal(t, 2, llm.Calls(), "validation is never attempted")
}

func TestRunCanceled(t *testing.T) {
	llm := wtesting.NewScriptedBackend(wtesting.WeatherIntent, wtesting.WeatherPlan, "ok")
	p := newTestPipeline(t, llm)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, wtesting.WeatherRequest, "json")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, llm.Calls())
}

func TestRunCanceledBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	llm := wtesting.NewScriptedBackend(wtesting.WeatherIntent, wtesting.WeatherPlan, "ok")
	p := newTestPipeline(t, llm, WithProgress(func(ev Event) {
		if ev.Stage == StageExtract && ev.Done {
			cancel()
		}
	}))

	_, err := p.Run(ctx, wtesting.WeatherRequest, "json")
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "run canceled before plan")
	assert.Equal(t, 1, llm.Calls())
}

func TestRunEmptyDescription(t *testing.T) {
	p := newTestPipeline(t, backend.NewOfflineBackend())
	for _, d := range []string{"", "   \n\t"} {
		_, err := p.Run(context.Background(), d, "json")
		assert.ErrorIs(t, err, ErrEmptyDescription)
	}
}

func TestRunProgressEvents(t *testing.T) {
	var events []string
	p := newTestPipeline(t, backend.NewOfflineBackend(), WithProgress(func(ev Event) {
		suffix := ":start"
		if ev.Done {
			suffix = ":done"
		}
		events = append(events, ev.Stage+suffix)
	}))

	_, err := p.Run(context.Background(), "sync notes", "json")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"extract:start", "extract:done",
		"plan:start", "plan:done",
		"validate:start", "validate:done",
		"export:start", "export:done",
	}, events)
	assert.Equal(t, []string{StageExtract, StagePlan, StageValidate, StageExport}, p.Stages())
}

func TestRunUnknownFormatExportsJSON(t *testing.T) {
	p := newTestPipeline(t, backend.NewOfflineBackend())
	res, err := p.Run(context.Background(), "sync notes", "bpmn")
	require.NoError(t, err)
	assert.Equal(t, workflow.FormatJSON, res.Export.Format)
}

func TestRunReportsLint(t *testing.T) {
	plan := `{
	  "workflow_name": "Nightly",
	  "trigger": {"type": "schedule", "config": {"cron": "nightly"}},
	  "steps": [{"step_id": 1, "tool": "sheets", "action": "read_rows"}],
	  "tools_used": ["sheets"]
	}`
	p := newTestPipeline(t, wtesting.NewScriptedBackend(wtesting.WeatherIntent, plan, `{"is_valid": true}`))

	res, err := p.Run(context.Background(), "nightly sheet read", "json")
	require.NoError(t, err)
	require.Len(t, res.Lint, 1)
	assert.Equal(t, workflow.SeverityWarning, res.Lint[0].Severity)
	assert.True(t, res.Success, "lint findings never fail a run")
}

func TestRunConcurrentInvocations(t *testing.T) {
	p := newTestPipeline(t, backend.NewOfflineBackend())

	var wg sync.WaitGroup
	ids := make([]string, 8)
	errs := make([]error, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := p.Run(context.Background(), "request", "yaml")
			errs[i] = err
			if err == nil {
				ids[i] = res.RunID
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := range ids {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "run ids are unique")
		seen[ids[i]] = true
	}
}

func TestValidateOnly(t *testing.T) {
	llm := wtesting.NewScriptedBackend(`{"is_valid": true, "issues": [], "optimizations": ["cache the forecast"]}`)
	p := newTestPipeline(t, llm)

	plan := agent.FallbackPlan(agent.FallbackIntent("x"))
	sum, err := p.ValidateOnly(context.Background(), plan)
	require.NoError(t, err)
	assert.True(t, sum.IsValid)
	assert.Empty(t, sum.Issues)
	assert.Equal(t, []string{"cache the forecast"}, sum.Optimizations)
}

func TestValidateOnlyError(t *testing.T) {
	llm := new(wtesting.ScriptedBackend).Then(wtesting.Reply{Err: errors.New("rate limited")})
	_, err := newTestPipeline(t, llm).ValidateOnly(context.Background(), workflow.Plan{})
	assert.ErrorContains(t, err, "rate limited")
}

func TestNewLoadsPromptOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(dir, prompts.IntentFile, "CUSTOM INTENT"))

	scripted := wtesting.NewScriptedBackend("nope")
	cfg := config.NewConfig().WithProvider(config.ProviderOffline, "").WithPrompts(dir).WithLimits(11, 22, 33)

	p, err := New(scripted, cfg)
	require.NoError(t, err)
	_, err = p.Run(context.Background(), "x", "json")
	require.NoError(t, err)
	assert.Equal(t, "CUSTOM INTENT\n\nUser Request: x", scripted.Prompts[0])
	assert.Equal(t, []int{11, 22, 33}, scripted.Budgets)
}

func TestExportWithoutModel(t *testing.T) {
	llm := wtesting.NewScriptedBackend()
	p := newTestPipeline(t, llm)
	res := p.Export(agent.FallbackPlan(agent.FallbackIntent("x")), "zapier")
	assert.Equal(t, workflow.FormatZapier, res.Format)
	assert.Equal(t, 0, llm.Calls())
}

func TestRunRejectionWithLooseStepID(t *testing.T) {
	llm := wtesting.NewScriptedBackend(wtesting.WeatherIntent, wtesting.WeatherPlan,
		`{"is_valid": false, "issues": [{"severity": "error", "step_id": "all", "message": "no data source"}]}`)
	p := newTestPipeline(t, llm)

	res, err := p.Run(context.Background(), wtesting.WeatherRequest, "n8n")
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrInvalidWorkflow)

	var invalid *InvalidWorkflowError
	require.True(t, errors.As(err, &invalid))
	require.Len(t, invalid.Issues, 1)
	assert.Equal(t, 0, invalid.Issues[0].StepID)
	assert.Equal(t, 3, llm.Calls(), "export never runs")
}

func TestRunStepLessPlanIsReplaced(t *testing.T) {
	llm := wtesting.NewScriptedBackend(wtesting.WeatherIntent, `{"workflow_name": "x", "steps": []}`, `{"is_valid": true}`)
	p := newTestPipeline(t, llm)

	res, err := p.Run(context.Background(), wtesting.WeatherRequest, "zapier")
	require.NoError(t, err)
	wtesting.ExpectPlan(t, res.Workflow).IsWebhookFallback().PassesQuickValidate()
	require.NotNil(t, res.Export.Zapier)
	assert.Len(t, res.Export.Zapier.Steps, 1)
}
