package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/kapu/messenger-api-go/internal/api"
	"github.com/spf13/cobra"
)

func newProbeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check which API environments answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			envs := api.Environments()
			clients := make([]*api.Client, 0, len(envs))
			for _, env := range envs {
				clients = append(clients, api.New(env, c.logger))
			}

			results := api.Probe(cmd.Context(), clients, c.logger)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ENVIRONMENT\tURL\tSTATUS\tLATENCY")
			for _, r := range results {
				status := "unreachable"
				if r.Reachable {
					status = fmt.Sprintf("%d", r.StatusCode)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Environment, r.BaseURL, status, r.Latency.Round(time.Millisecond))
			}
			return w.Flush()
		},
	}
}
