package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

type WorkflowRequest struct {
	Description  string `json:"description" validate:"required"`
	ExportFormat string `json:"export_format"`
}

type ExportRequest struct {
	Workflow map[string]any `json:"workflow" validate:"required"`
	Format   string         `json:"format"`
}

// ValidateResponse carries the model verdict plus the model-free lint.
type ValidateResponse struct {
	IsValid       bool             `json:"is_valid"`
	Issues        []workflow.Issue `json:"issues"`
	Optimizations []string         `json:"optimizations"`
	Lint          []workflow.Issue `json:"lint"`
}

func (s *Server) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": ServiceName,
		"status":  "running",
		"version": Version,
	})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) createWorkflow(c echo.Context) error {
	var req WorkflowRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}
	if err := s.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.ExportFormat == "" {
		req.ExportFormat = string(workflow.FormatJSON)
	}

	result, err := s.designer.Run(c.Request().Context(), req.Description, req.ExportFormat)
	if err != nil {
		s.logger.Warn("design_failed", "error", err)
		return handlePipelineError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// validateWorkflow takes the plan itself as the request body.
func (s *Server) validateWorkflow(c echo.Context) error {
	var plan workflow.Plan
	if err := c.Bind(&plan); err != nil {
		return badRequest(c, "Invalid workflow: "+err.Error())
	}

	summary, err := s.designer.ValidateOnly(c.Request().Context(), plan)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, ValidateResponse{
		IsValid:       summary.IsValid,
		Issues:        summary.Issues,
		Optimizations: summary.Optimizations,
		Lint:          workflow.Lint(plan),
	})
}

// exportWorkflow renders a saved plan without calling a model. The raw
// document goes through the structural check first.
func (s *Server) exportWorkflow(c echo.Context) error {
	var req ExportRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}
	if err := s.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}
	if errs := workflow.StructuralErrors(req.Workflow); len(errs) > 0 {
		return badRequest(c, "Workflow failed quick validation: "+strings.Join(errs, "; "))
	}

	raw, err := json.Marshal(req.Workflow)
	if err != nil {
		return internalError(c, err)
	}
	var plan workflow.Plan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return badRequest(c, "Invalid workflow: "+err.Error())
	}

	return c.JSON(http.StatusOK, s.designer.Export(plan, req.Format))
}
