package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LiboWorks/workflow-wizard/internal/workflow"
)

var errPlanInvalid = errors.New("workflow plan is not valid")

func newValidateCmd(a *app) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "validate <plan-file>",
		Short: "Check a saved workflow plan",
		Long: `Validate runs the structural pre-flight check and the model-free lint
over a saved plan, then asks the model to review it.

Use --offline to skip the model review.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := args[0]

			doc, err := workflow.LoadDocument(path)
			if err != nil {
				fmt.Fprintf(out, "❌ Failed to read plan: %v\n", err)
				return err
			}
			if errs := workflow.StructuralErrors(doc); len(errs) > 0 {
				fmt.Fprintln(out, "❌ Quick validation failed:")
				for _, e := range errs {
					fmt.Fprintf(out, "  - %s\n", e)
				}
				return errPlanInvalid
			}
			fmt.Fprintln(out, "✅ Quick validation passed")

			plans, err := workflow.LoadPlans(path)
			if err != nil {
				return err
			}
			plan := plans[0]

			if issues := workflow.Lint(plan); len(issues) > 0 {
				fmt.Fprintln(out, "🔎 Lint:")
				for _, is := range issues {
					fmt.Fprintf(out, "  - [%s] %s\n", is.Severity, is.Message)
				}
			}

			if offline {
				return nil
			}

			p, llm, err := a.newPipeline()
			if err != nil {
				fmt.Fprintf(out, "❌ Error: %v\n", err)
				return err
			}
			defer llm.Close()

			summary, err := p.ValidateOnly(cmd.Context(), plan)
			if err != nil {
				fmt.Fprintf(out, "❌ Error: %v\n", err)
				return err
			}

			for _, is := range summary.Issues {
				fmt.Fprintf(out, "  - [%s] %s\n", is.Severity, is.Message)
				if is.Suggestion != "" {
					fmt.Fprintf(out, "    💡 %s\n", is.Suggestion)
				}
			}
			if len(summary.Optimizations) > 0 {
				fmt.Fprintf(out, "🚀 Optimizations: %s\n", strings.Join(summary.Optimizations, "; "))
			}
			if !summary.IsValid {
				fmt.Fprintf(out, "⚠️  %s has issues\n", plan.WorkflowName)
				return errPlanInvalid
			}
			fmt.Fprintf(out, "✅ %s is valid\n", plan.WorkflowName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the model review")
	return cmd
}
