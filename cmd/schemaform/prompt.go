package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemaform/pkg/renderers/tui"
)

func promptCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "prompt <schema>",
		Short: "Fill a form interactively in the terminal",
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
			f, err := orch.Build(cmd.Context(), req)
			if err != nil {
				return err
			}

			session, err := tui.New(f,
				tui.WithOutput(cmd.ErrOrStderr()),
				tui.WithPromptDriver(tui.NewSurveyDriverStdio(os.Stdin, os.Stderr, os.Stderr)),
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			out, err := session.Run(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "output-format", string(tui.OutputFormatJSON), "submitted model format (json, form, pretty)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
