// Package workflow defines the records passed between pipeline stages:
// the extracted intent, the workflow plan and its steps, validation
// results and export results.
package workflow

import "strings"

// TriggerType describes when a workflow runs.
type TriggerType string

const (
	TriggerSchedule TriggerType = "schedule"
	TriggerEvent    TriggerType = "event"
	TriggerManual   TriggerType = "manual"
)

// Valid reports whether t is one of the known trigger types.
func (t TriggerType) Valid() bool {
	switch t {
	case TriggerSchedule, TriggerEvent, TriggerManual:
		return true
	}
	return false
}

// Complexity is the model's estimate of how involved a request is.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Valid reports whether c is one of the known complexity levels.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return true
	}
	return false
}

// ErrorHandling is descriptive metadata on a step. Nothing here executes it.
type ErrorHandling string

const (
	OnErrorRetry ErrorHandling = "retry"
	OnErrorSkip  ErrorHandling = "skip"
	OnErrorFail  ErrorHandling = "fail"
)

// Tool vocabulary. Any other tool name is accepted on a step and maps to
// the generic node/app in the export tables.
const (
	ToolGmail   = "gmail"
	ToolSheets  = "sheets"
	ToolNotion  = "notion"
	ToolWebhook = "webhook"
)

var knownTools = map[string]bool{
	ToolGmail:   true,
	ToolSheets:  true,
	ToolNotion:  true,
	ToolWebhook: true,
}

// KnownTool reports whether name belongs to the bounded tool vocabulary.
func KnownTool(name string) bool {
	return knownTools[strings.ToLower(strings.TrimSpace(name))]
}

// Intent is the structured interpretation of a free-text request.
type Intent struct {
	Goal             string      `json:"goal" yaml:"goal"`
	Summary          string      `json:"summary" yaml:"summary"`
	TriggerType      TriggerType `json:"trigger_type" yaml:"trigger_type"`
	TriggerDetails   string      `json:"trigger_details" yaml:"trigger_details"`
	DataSources      []string    `json:"data_sources" yaml:"data_sources"`
	DataDestinations []string    `json:"data_destinations" yaml:"data_destinations"`
	RequiredTools    []string    `json:"required_tools" yaml:"required_tools"`
	KeyActions       []string    `json:"key_actions" yaml:"key_actions"`
	Complexity       Complexity  `json:"complexity" yaml:"complexity"`
	// RawInput is the original request, verbatim.
	RawInput string `json:"raw_input" yaml:"raw_input"`
}

// Trigger says how a plan is started.
type Trigger struct {
	Type   TriggerType    `json:"type" yaml:"type"`
	Config map[string]any `json:"config" yaml:"config"`
}

// Step is a single tool+action unit within a plan. StepID ordering is
// execution order.
type Step struct {
	StepID        int            `json:"step_id" yaml:"step_id"`
	Name          string         `json:"name" yaml:"name"`
	Tool          string         `json:"tool" yaml:"tool"`
	Action        string         `json:"action" yaml:"action"`
	Config        map[string]any `json:"config" yaml:"config"`
	Inputs        []string       `json:"inputs" yaml:"inputs"`
	Outputs       []string       `json:"outputs" yaml:"outputs"`
	ErrorHandling ErrorHandling  `json:"error_handling" yaml:"error_handling"`
}

// Plan is an ordered sequence of tool-bound steps realizing an intent.
type Plan struct {
	WorkflowName string   `json:"workflow_name" yaml:"workflow_name"`
	Description  string   `json:"description" yaml:"description"`
	Trigger      Trigger  `json:"trigger" yaml:"trigger"`
	Steps        []Step   `json:"steps" yaml:"steps"`
	ToolsUsed    []string `json:"tools_used" yaml:"tools_used"`

	// Intent links the plan back to the request it was built from.
	Intent *Intent `json:"intent,omitempty" yaml:"intent,omitempty"`
}

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single finding about a plan.
type Issue struct {
	Severity   Severity `json:"severity" yaml:"severity"`
	StepID     int      `json:"step_id" yaml:"step_id"`
	Message    string   `json:"message" yaml:"message"`
	Suggestion string   `json:"suggestion" yaml:"suggestion"`
}

// ValidationResult is the validator's verdict. Workflow is always set,
// either to the model's corrected plan or to the plan that was checked.
type ValidationResult struct {
	IsValid       bool     `json:"is_valid" yaml:"is_valid"`
	Issues        []Issue  `json:"issues" yaml:"issues"`
	Optimizations []string `json:"optimizations" yaml:"optimizations"`
	Workflow      Plan     `json:"workflow" yaml:"workflow"`
}

// Errors returns the issues graded as errors.
func (r ValidationResult) Errors() []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			out = append(out, is)
		}
	}
	return out
}
