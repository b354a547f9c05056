package export

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

func renderPython(plan workflow.Plan, out *workflow.ExportResult) error {
	out.PythonCode = PythonScript(plan)
	return nil
}

// PythonScript builds a runnable Python skeleton for plan: a module
// docstring, a run_workflow function with one commented block per step,
// and a __main__ guard.
func PythonScript(plan workflow.Plan) string {
	var sb strings.Builder
	name := workflowName(plan)

	// Header
	fmt.Fprintf(&sb, "\"\"\"\n%s\n%s\n\"\"\"\n\n", docstringSafe(name), docstringSafe(plan.Description))
	sb.WriteString("def run_workflow():\n")
	sb.WriteString("    \"\"\"Execute workflow\"\"\"\n")
	fmt.Fprintf(&sb, "    print(%s)\n\n", strconv.Quote("Starting workflow: "+name))

	for _, step := range plan.Steps {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "    # Step %d: %s\n", step.StepID, commentSafe(step.Name))
		fmt.Fprintf(&sb, "    print(%s)\n", strconv.Quote("Executing: "+step.Name))
		fmt.Fprintf(&sb, "    # Implement %s - %s\n", commentSafe(step.Tool), commentSafe(step.Action))
		fmt.Fprintf(&sb, "    # Config: %s\n", compactConfig(step.Config))
	}

	sb.WriteString("\n    print(\"Workflow completed!\")\n\n")
	sb.WriteString("if __name__ == \"__main__\":\n")
	sb.WriteString("    run_workflow()\n")
	return sb.String()
}

var whitespace = regexp.MustCompile(`\s+`)

// commentSafe keeps free-form text on a single comment line: NULs are
// removed and runs of whitespace collapse to one space.
func commentSafe(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// docstringSafe stops text from closing the module docstring early.
func docstringSafe(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"""`, `\"\"\"`)
}

func compactConfig(cfg map[string]any) string {
	if len(cfg) == 0 {
		return "{}"
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return "{}"
	}
	return commentSafe(string(b))
}
