package workflow

import "strings"

// Format is an export target.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatN8N    Format = "n8n"
	FormatZapier Format = "zapier"
	FormatPython Format = "python"
)

// Formats lists every supported export target.
var Formats = []Format{FormatJSON, FormatYAML, FormatN8N, FormatZapier, FormatPython}

// ParseFormat maps a user-supplied format name onto a Format. The second
// return is false for names that are not supported.
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, true
		}
	}
	return f, false
}

// N8NWorkflow is the node-graph rendering of a plan.
type N8NWorkflow struct {
	Name        string                   `json:"name" yaml:"name"`
	Nodes       []N8NNode                `json:"nodes" yaml:"nodes"`
	Connections map[string]N8NConnection `json:"connections" yaml:"connections"`
}

// N8NNode is one step rendered as an n8n node.
type N8NNode struct {
	Parameters map[string]any `json:"parameters" yaml:"parameters"`
	Name       string         `json:"name" yaml:"name"`
	Type       string         `json:"type" yaml:"type"`
	Position   [2]int         `json:"position" yaml:"position"`
	ID         string         `json:"id" yaml:"id"`
}

// N8NConnection wires a node's main output to downstream inputs.
type N8NConnection struct {
	Main [][]N8NLink `json:"main" yaml:"main"`
}

// N8NLink is a single edge target.
type N8NLink struct {
	Node  string `json:"node" yaml:"node"`
	Type  string `json:"type" yaml:"type"`
	Index int    `json:"index" yaml:"index"`
}

// ZapierWorkflow is the step-list rendering of a plan.
type ZapierWorkflow struct {
	Title string       `json:"title" yaml:"title"`
	Steps []ZapierStep `json:"steps" yaml:"steps"`
}

// ZapierStep is one step rendered for Zapier.
type ZapierStep struct {
	App    string         `json:"app" yaml:"app"`
	Action string         `json:"action" yaml:"action"`
	Fields map[string]any `json:"fields" yaml:"fields"`
}

// ExportResult wraps a plan rendered into one target format. Exactly one
// payload field is set for yaml, n8n, zapier and python; json has none.
type ExportResult struct {
	Format      Format          `json:"format" yaml:"format"`
	Workflow    Plan            `json:"workflow" yaml:"workflow"`
	YAMLContent string          `json:"yaml_content,omitempty" yaml:"yaml_content,omitempty"`
	N8N         *N8NWorkflow    `json:"n8n_workflow,omitempty" yaml:"n8n_workflow,omitempty"`
	Zapier      *ZapierWorkflow `json:"zapier_workflow,omitempty" yaml:"zapier_workflow,omitempty"`
	PythonCode  string          `json:"python_code,omitempty" yaml:"python_code,omitempty"`
	ExportTime  string          `json:"export_time" yaml:"export_time"`
}
