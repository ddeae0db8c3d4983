package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func formsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forms <schema>",
		Short: "List the forms a schema document describes",
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
			refs, err := orch.Forms(cmd.Context(), req)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMETHOD\tENDPOINT\tTITLE")
			for _, ref := range refs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ref.ID, ref.Method, ref.Endpoint, ref.Title)
			}
			return w.Flush()
		},
	}
}
