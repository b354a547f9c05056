package export

import (
	"strings"

	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

var zapierApps = map[string]string{
	workflow.ToolGmail:   "Gmail",
	workflow.ToolSheets:  "Google Sheets",
	workflow.ToolNotion:  "Notion",
	workflow.ToolWebhook: "Webhooks",
}

// ZapierApp maps a tool to its Zapier app name.
func ZapierApp(tool string) string {
	if app, ok := zapierApps[strings.ToLower(tool)]; ok {
		return app
	}
	return "Code"
}

func renderZapier(plan workflow.Plan, out *workflow.ExportResult) error {
	zap := &workflow.ZapierWorkflow{
		Title: workflowName(plan),
		Steps: make([]workflow.ZapierStep, 0, len(plan.Steps)),
	}
	for _, step := range plan.Steps {
		zap.Steps = append(zap.Steps, workflow.ZapierStep{
			App:    ZapierApp(step.Tool),
			Action: step.Action,
			Fields: stepConfig(step),
		})
	}
	out.Zapier = zap
	return nil
}
