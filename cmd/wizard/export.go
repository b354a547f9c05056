package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LiboWorks/workflow-wizard/internal/export"
	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export <plan-file>",
		Short: "Export a saved workflow plan without calling a model",
		Long: `Export renders every plan in a YAML or JSON file into the chosen format.
Multi-document YAML files produce one output per plan.

Examples:
  wizard export plan.yaml --format n8n
  wizard export plans.yaml -f python -o ./dist`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			plans, err := workflow.LoadPlans(args[0])
			if err != nil {
				fmt.Fprintf(out, "❌ Failed to parse plan: %v\n", err)
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				fmt.Fprintf(out, "❌ Failed to create output folder: %v\n", err)
				return err
			}

			exporter := export.New(export.WithLogger(a.logger))
			for _, plan := range plans {
				if !plan.QuickValidate() {
					fmt.Fprintf(out, "⚠️  %q failed quick validation, exporting anyway\n", plan.WorkflowName)
				}
				result := exporter.Process(plan, format)

				path := filepath.Join(outDir, exportFileName(plan, result.Format))
				if err := writeExport(path, result); err != nil {
					fmt.Fprintf(out, "❌ Failed to save %s: %v\n", path, err)
					return err
				}
				fmt.Fprintf(out, "✅ %s → %s\n", plan.WorkflowName, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(workflow.FormatJSON), "Export format: json, yaml, n8n, zapier or python")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Output folder")
	return cmd
}

// writeExport writes the native artifact for yaml and python and the full
// export document otherwise.
func writeExport(path string, result workflow.ExportResult) error {
	switch result.Format {
	case workflow.FormatYAML:
		return os.WriteFile(path, []byte(result.YAMLContent), 0o644)
	case workflow.FormatPython:
		return os.WriteFile(path, []byte(result.PythonCode), 0o755)
	case workflow.FormatN8N:
		return writeJSON(path, result.N8N)
	case workflow.FormatZapier:
		return writeJSON(path, result.Zapier)
	default:
		return writeJSON(path, result)
	}
}

func exportFileName(plan workflow.Plan, format workflow.Format) string {
	name := strings.ToLower(strings.Join(strings.Fields(plan.WorkflowName), "_"))
	name = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, name)
	if name == "" {
		name = "workflow"
	}

	ext := ".json"
	switch format {
	case workflow.FormatYAML:
		ext = ".yaml"
	case workflow.FormatPython:
		ext = ".py"
	case workflow.FormatN8N:
		ext = ".n8n.json"
	case workflow.FormatZapier:
		ext = ".zapier.json"
	}
	return name + ext
}
