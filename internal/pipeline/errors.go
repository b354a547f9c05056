package pipeline

import (
	"errors"
	"fmt"

	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

var (
	// ErrEmptyDescription is returned by Run for a blank request.
	ErrEmptyDescription = errors.New("workflow description is empty")

	// ErrInvalidWorkflow matches every *InvalidWorkflowError.
	ErrInvalidWorkflow = errors.New("workflow validation failed")
)

// InvalidWorkflowError stops a run whose plan the validator rejected. It
// carries the rejected plan and the issues that explain the rejection.
type InvalidWorkflowError struct {
	Workflow workflow.Plan
	Issues   []workflow.Issue
}

func (e *InvalidWorkflowError) Error() string {
	switch len(e.Issues) {
	case 0:
		return ErrInvalidWorkflow.Error()
	case 1:
		return fmt.Sprintf("%s: %s", ErrInvalidWorkflow, e.Issues[0].Message)
	default:
		return fmt.Sprintf("%s: %s (and %d more issues)", ErrInvalidWorkflow, e.Issues[0].Message, len(e.Issues)-1)
	}
}

func (e *InvalidWorkflowError) Is(target error) bool {
	return target == ErrInvalidWorkflow
}
