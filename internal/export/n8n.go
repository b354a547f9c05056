package export

import (
	"fmt"
	"strings"

	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

var n8nNodeTypes = map[string]string{
	workflow.ToolGmail:   "n8n-nodes-base.gmail",
	workflow.ToolSheets:  "n8n-nodes-base.googleSheets",
	workflow.ToolNotion:  "n8n-nodes-base.notion",
	workflow.ToolWebhook: "n8n-nodes-base.webhook",
}

const n8nFallbackType = "n8n-nodes-base.function"

// N8NNodeType maps a tool to its n8n node type.
func N8NNodeType(tool string) string {
	if t, ok := n8nNodeTypes[strings.ToLower(tool)]; ok {
		return t
	}
	return n8nFallbackType
}

// renderN8N lays steps out top to bottom and chains each node to the next.
func renderN8N(plan workflow.Plan, out *workflow.ExportResult) error {
	wf := &workflow.N8NWorkflow{
		Name:        workflowName(plan),
		Nodes:       make([]workflow.N8NNode, 0, len(plan.Steps)),
		Connections: make(map[string]workflow.N8NConnection),
	}

	for i, step := range plan.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("Step %d", i+1)
		}
		wf.Nodes = append(wf.Nodes, workflow.N8NNode{
			Parameters: stepConfig(step),
			Name:       name,
			Type:       N8NNodeType(step.Tool),
			Position:   [2]int{250, 300 + i*150},
			ID:         nodeID(i),
		})
		if i > 0 {
			wf.Connections[nodeID(i-1)] = workflow.N8NConnection{
				Main: [][]workflow.N8NLink{{{Node: nodeID(i), Type: "main", Index: 0}}},
			}
		}
	}
	out.N8N = wf
	return nil
}

func nodeID(i int) string {
	return fmt.Sprintf("node_%d", i)
}
