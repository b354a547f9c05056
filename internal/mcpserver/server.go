// Package mcpserver exposes the workflow designer as Model Context Protocol
// tools, over stdio or mounted on the HTTP server as SSE.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/LiboWorks/workflow-wizard/internal/pipeline"
	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

// Designer is the part of the pipeline the tools call.
type Designer interface {
	Run(ctx context.Context, description, format string) (*pipeline.Result, error)
	ValidateOnly(ctx context.Context, plan workflow.Plan) (*pipeline.ValidationSummary, error)
	Export(plan workflow.Plan, format string) workflow.ExportResult
}

type Server struct {
	mcpServer *server.MCPServer
	designer  Designer
}

func NewServer(designer Designer, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Workflow Wizard",
			version,
			server.WithToolCapabilities(true),
		),
		designer: designer,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	formats := make([]string, len(workflow.Formats))
	for i, f := range workflow.Formats {
		formats[i] = string(f)
	}
	formatHelp := "Export format: " + strings.Join(formats, ", ") + " (default json)"

	s.mcpServer.AddTool(
		mcp.NewTool(
			"design_workflow",
			mcp.WithDescription("Design an automation workflow from a natural language description"),
			mcp.WithString("description", mcp.Required(), mcp.Description("What the workflow should do")),
			mcp.WithString("format", mcp.Description(formatHelp)),
		),
		s.handleDesign,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"validate_workflow",
			mcp.WithDescription("Check a workflow plan for structural, logical and security problems"),
			mcp.WithString("workflow", mcp.Required(), mcp.Description("The workflow plan as JSON")),
		),
		s.handleValidate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"export_workflow",
			mcp.WithDescription("Export a workflow plan to another format without calling a model"),
			mcp.WithString("workflow", mcp.Required(), mcp.Description("The workflow plan as JSON")),
			mcp.WithString("format", mcp.Required(), mcp.Description(formatHelp)),
		),
		s.handleExport,
	)
}

func (s *Server) handleDesign(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	description, ok := args["description"].(string)
	if !ok || strings.TrimSpace(description) == "" {
		return mcp.NewToolResultError("Missing required parameter: description"), nil
	}
	format, _ := args["format"].(string)

	result, err := s.designer.Run(ctx, description, format)
	if err != nil {
		var invalid *pipeline.InvalidWorkflowError
		if errors.As(err, &invalid) {
			issues, _ := json.Marshal(invalid.Issues)
			return mcp.NewToolResultError(fmt.Sprintf("Workflow validation failed: %s", issues)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to design workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, errResult := planArgument(request)
	if errResult != nil {
		return errResult, nil
	}

	summary, err := s.designer.ValidateOnly(ctx, plan)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to validate: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(struct {
		*pipeline.ValidationSummary
		Lint []workflow.Issue `json:"lint"`
	}{summary, workflow.Lint(plan)})
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, errResult := planArgument(request)
	if errResult != nil {
		return errResult, nil
	}
	args, _ := request.Params.Arguments.(map[string]interface{})
	format, _ := args["format"].(string)

	jsonBytes, _ := json.Marshal(s.designer.Export(plan, format))
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// planArgument reads the "workflow" argument, given either as JSON text or
// as an object, and applies the structural pre-flight check to it.
func planArgument(request mcp.CallToolRequest) (workflow.Plan, *mcp.CallToolResult) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return workflow.Plan{}, mcp.NewToolResultError("Invalid arguments type")
	}

	var raw []byte
	switch v := args["workflow"].(type) {
	case string:
		raw = []byte(v)
	case map[string]interface{}:
		raw, _ = json.Marshal(v)
	default:
		return workflow.Plan{}, mcp.NewToolResultError("Missing required parameter: workflow")
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return workflow.Plan{}, mcp.NewToolResultError(fmt.Sprintf("workflow is not a JSON object: %v", err))
	}
	if errs := workflow.StructuralErrors(doc); len(errs) > 0 {
		return workflow.Plan{}, mcp.NewToolResultError("Workflow failed quick validation: " + strings.Join(errs, "; "))
	}

	var plan workflow.Plan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return workflow.Plan{}, mcp.NewToolResultError(fmt.Sprintf("Invalid workflow: %v", err))
	}
	return plan, nil
}

// ServeStdio serves the tools on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// MountHTTPHandlers serves the SSE transport under /mcp.
func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
