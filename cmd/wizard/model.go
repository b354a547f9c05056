package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LiboWorks/workflow-wizard/internal/downloader"
)

func newModelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage local GGUF models for the llama provider",
	}

	var dir, name string
	pull := &cobra.Command{
		Use:   "pull <url>",
		Short: "Download a GGUF model",
		Long: `Pull downloads a GGUF file (for example from Hugging Face) into the
models folder. Set HUGGINGFACE_TOKEN for gated repositories.

Example:
  wizard model pull https://huggingface.co/org/repo/resolve/main/model.Q4_K_M.gguf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "⬇️  Downloading %s\n", args[0])

			path, err := downloader.Fetch(cmd.Context(), nil, args[0], dir, name)
			if err != nil {
				fmt.Fprintf(out, "❌ %v\n", err)
				return err
			}
			a.logger.Info("model_ready", "path", path)
			fmt.Fprintf(out, "✅ Model ready at %s\n", path)
			fmt.Fprintf(out, "   Use it with: wizard --provider llama --model %s create ...\n", path)
			return nil
		},
	}
	pull.Flags().StringVar(&dir, "dir", downloader.DefaultDir, "Folder to store models in")
	pull.Flags().StringVar(&name, "name", "", "File name (default: last URL segment)")

	cmd.AddCommand(pull)
	return cmd
}
