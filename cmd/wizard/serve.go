package main

import (
	"github.com/spf13/cobra"

	"github.com/LiboWorks/workflow-wizard/internal/mcpserver"
	"github.com/LiboWorks/workflow-wizard/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the MCP SSE transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.WithServer(addr)

			p, llm, err := a.newPipeline()
			if err != nil {
				return err
			}
			defer llm.Close()

			srv := server.New(p, server.WithLogger(a.logger))
			return srv.ListenAndServe(cmd.Context(), a.cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8000)")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the workflow tools over MCP on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, llm, err := a.newPipeline()
			if err != nil {
				return err
			}
			defer llm.Close()

			a.logger.Info("mcp_stdio_start")
			return mcpserver.NewServer(p, server.Version).ServeStdio()
		},
	}
}
