package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemaform/pkg/renderers/vanilla"
)

func renderCmd(a *app) *cobra.Command {
	var (
		renderer string
		output   string
		title    string
		action   string
		method   string
	)
	cmd := &cobra.Command{
		Use:   "render <schema>",
		Short: "Render a form to HTML or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			req, err := a.request(args[0])
			if err != nil {
				return err
			}
			req.Renderer = renderer
			req.RenderOptions.Title = title
			req.RenderOptions.Action = action
			req.RenderOptions.Method = method

			out, err := orch.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			a.logger.Info("form written", "path", output, "bytes", len(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&renderer, "renderer", "r", vanilla.Name, "renderer to use (vanilla, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&title, "title", "", "form title")
	cmd.Flags().StringVar(&action, "action", "", "form action URL")
	cmd.Flags().StringVar(&method, "method", "", "form method (POST when empty)")
	return cmd
}
