package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LiboWorks/workflow-wizard/internal/pipeline"
	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

const defaultOutput = "workflow_output.json"

func newCreateCmd(a *app) *cobra.Command {
	var (
		format  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "create [description...]",
		Short: "Design a workflow from a plain-language description",
		Long: `Create runs the full pipeline: it extracts the intent of your request,
plans the steps, validates the plan and exports it.

Without arguments the description is read interactively.

Examples:
  wizard create "save new Gmail attachments to Notion"
  wizard create --format zapier --out zap.json notify me of new signups`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			description := strings.Join(args, " ")
			if description == "" {
				var err error
				if description, err = promptDescription(cmd.InOrStdin(), out); err != nil {
					return err
				}
			}
			if strings.TrimSpace(description) == "" {
				fmt.Fprintln(out, "❌ Error: Please provide a workflow description")
				return pipeline.ErrEmptyDescription
			}

			p, llm, err := a.newPipeline(pipeline.WithProgress(progressPrinter(out)))
			if err != nil {
				fmt.Fprintf(out, "❌ Error: %v\n", err)
				return err
			}
			defer llm.Close()

			result, err := p.Run(cmd.Context(), description, format)
			if err != nil {
				var invalid *pipeline.InvalidWorkflowError
				switch {
				case errors.As(err, &invalid):
					fmt.Fprintln(out, "⚠️  Workflow has issues:")
					for _, is := range invalid.Issues {
						fmt.Fprintf(out, "  - [%s] %s\n", is.Severity, is.Message)
					}
				case cmd.Context().Err() != nil:
					fmt.Fprintln(out, "\n👋 Workflow creation cancelled")
				default:
					fmt.Fprintf(out, "\n❌ Error: %v\n", err)
				}
				return err
			}

			printSummary(out, result)

			if err := writeJSON(outPath, result.Export); err != nil {
				fmt.Fprintf(out, "❌ Failed to save workflow: %v\n", err)
				return err
			}
			fmt.Fprintf(out, "\n💾 Workflow saved to: %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(workflow.FormatJSON), "Export format: json, yaml, n8n, zapier or python")
	cmd.Flags().StringVarP(&outPath, "out", "o", defaultOutput, "File to write the export to")
	return cmd
}

func promptDescription(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintln(out, "Welcome to Workflow Wizard! 🧙")
	fmt.Fprintln(out, "\nDescribe the workflow you want to create:")
	fmt.Fprint(out, "> ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// progressPrinter reports each stage the way a person follows along.
func progressPrinter(out io.Writer) func(pipeline.Event) {
	return func(ev pipeline.Event) {
		run := ev.Run
		if !ev.Done {
			switch ev.Stage {
			case pipeline.StageExtract:
				fmt.Fprintln(out, "\n🎯 Understanding your request...")
			case pipeline.StagePlan:
				fmt.Fprintln(out, "\n📋 Planning workflow...")
			case pipeline.StageValidate:
				fmt.Fprintln(out, "\n✅ Validating workflow...")
			case pipeline.StageExport:
				fmt.Fprintln(out, "\n📦 Exporting workflow...")
			}
			return
		}

		switch ev.Stage {
		case pipeline.StageExtract:
			fmt.Fprintf(out, "✓ Intent: %s\n", run.Intent.Summary)
		case pipeline.StagePlan:
			fmt.Fprintf(out, "✓ Created workflow with %d steps\n", len(run.Plan.Steps))
		case pipeline.StageValidate:
			fmt.Fprintln(out, "✓ Workflow validated successfully")
			for _, is := range run.Lint {
				fmt.Fprintf(out, "  ⚠️  %s\n", is.Message)
			}
		}
	}
}

func printSummary(out io.Writer, result *pipeline.Result) {
	wf := result.Workflow
	fmt.Fprintln(out, "\n✨ Workflow created successfully!")
	fmt.Fprintln(out, "\nWorkflow Summary:")
	fmt.Fprintf(out, "  Name: %s\n", wf.WorkflowName)
	fmt.Fprintf(out, "  Steps: %d\n", len(wf.Steps))
	fmt.Fprintf(out, "  Tools: %s\n", strings.Join(wf.ToolsUsed, ", "))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
