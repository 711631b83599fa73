package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/kapu/messenger-api-go/internal/featureflag"
	"github.com/spf13/cobra"
)

func newFlagsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Inspect and toggle feature flags",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show every feature flag and its value",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				container, err := c.services(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, v := range container.Flags.Snapshot() {
					fmt.Fprintf(w, "%s\t%t\n", v.Flag, v.Enabled)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "set <flag> <true|false>",
			Short: "Persist a feature flag value",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				flag, err := featureflag.ParseFlag(args[0])
				if err != nil {
					return err
				}
				enabled, err := strconv.ParseBool(args[1])
				if err != nil {
					return fmt.Errorf("invalid value %q for %s", args[1], flag)
				}

				container, err := c.services(cmd.Context())
				if err != nil {
					return err
				}
				if err := container.Flags.Update(cmd.Context(), flag, enabled); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s=%t\n", flag, enabled)
				return nil
			},
		},
	)
	return cmd
}
