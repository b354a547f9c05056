package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/moogar0880/problems"

	"github.com/LiboWorks/workflow-wizard/internal/pipeline"
	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

// invalidWorkflowResponse is returned with 400 when the validator rejects a
// designed plan, so callers can show the issues next to the plan.
type invalidWorkflowResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Workflow workflow.Plan    `json:"workflow"`
	Issues   []workflow.Issue `json:"issues"`
}

func badRequest(c echo.Context, detail string) error {
	problem := problems.NewStatusProblem(http.StatusBadRequest).
		WithInstance(c.Request().URL.Path).
		WithType("validation_error").
		WithDetail(detail)

	return c.JSON(http.StatusBadRequest, problem)
}

func internalError(c echo.Context, err error) error {
	problem := problems.NewStatusProblem(http.StatusInternalServerError).
		WithInstance(c.Request().URL.Path).
		WithType("internal_error").
		WithError(err)

	return c.JSON(http.StatusInternalServerError, problem)
}

// handlePipelineError maps pipeline failures onto HTTP responses.
func handlePipelineError(c echo.Context, err error) error {
	var invalid *pipeline.InvalidWorkflowError

	switch {
	case errors.As(err, &invalid):
		return c.JSON(http.StatusBadRequest, invalidWorkflowResponse{
			Success:  false,
			Message:  invalid.Error(),
			Workflow: invalid.Workflow,
			Issues:   invalid.Issues,
		})

	case errors.Is(err, pipeline.ErrEmptyDescription):
		return badRequest(c, err.Error())

	default:
		return internalError(c, err)
	}
}
