package main

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemaform/pkg/validation"
)

var errLintFailed = errors.New("schema has issues")

func lintCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lint <schema>",
		Short: "Build and render every form of a schema and report problems",
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
			result := validation.Lint(cmd.Context(), orch, req)

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			} else {
				for _, issue := range result.Issues {
					location := issue.Form
					if issue.Path != "" {
						location += " " + issue.Path
					}
					fmt.Fprintf(out, "%s: %s\n", location, issue.Message)
				}
				if result.Valid {
					fmt.Fprintf(out, "ok: %d form(s)\n", len(result.Forms))
				}
			}
			if !result.Valid {
				return errLintFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
