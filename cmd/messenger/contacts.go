package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/kapu/messenger-api-go/internal/app"
	"github.com/kapu/messenger-api-go/internal/contact"
	"github.com/kapu/messenger-api-go/internal/featureflag"
	"github.com/kapu/messenger-api-go/internal/notification"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func requireConversations(container *app.Container) error {
	if container.Conversations == nil {
		return fmt.Errorf("no conversation store configured, set POSTGRES_HOST")
	}
	return nil
}

func newContactsCmd(c *cli) *cobra.Command {
	var (
		limit    int
		selectAt int
	)

	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List conversations that can be attached as a contact card",
		Long: `List conversations that can be attached as a contact card.

Only conversations with a single phone number and an avatar are shown.
With --select the chosen row is printed as first name, last name and phone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			container, err := c.services(ctx)
			if err != nil {
				return err
			}
			if !container.Flags.Enabled(featureflag.AttachContact) {
				return fmt.Errorf("attaching contacts is disabled (%s)", featureflag.AttachContact)
			}
			if err := requireConversations(container); err != nil {
				return err
			}

			conversations, err := container.Conversations.FindAttachable(ctx, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			list := contact.NewAttachList(contact.AttachListenerFunc(func(first, last, phone string) {
				fmt.Fprintf(out, "first=%q last=%q phone=%q\n", first, last, phone)
			}))
			list.SetContacts(conversations)

			if cmd.Flags().Changed("select") {
				if !list.Select(selectAt) {
					return fmt.Errorf("no contact at position %d", selectAt)
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tIMAGE")
			for i := 0; i < list.Count(); i++ {
				row, _ := list.Row(i)
				fmt.Fprintf(w, "%d\t%s\t%s\n", i, row.Name, row.ImageURI)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "read at most this many conversations, 0 for all")
	cmd.Flags().IntVar(&selectAt, "select", 0, "attach the contact at this position")
	return cmd
}

func newActionsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "actions <conversation-id>",
		Short: "Show the notification actions a conversation gets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid conversation id %q", args[0])
			}

			container, err := c.services(ctx)
			if err != nil {
				return err
			}
			if err := requireConversations(container); err != nil {
				return err
			}

			conv, err := container.Conversations.FindByID(ctx, id)
			if err != nil {
				return err
			}
			if conv == nil {
				return fmt.Errorf("conversation %d not found", id)
			}

			account, err := container.Sessions.Load(ctx)
			if err != nil {
				return err
			}

			plan := container.Notifications.Plan(*conv, account)
			fmt.Fprintf(cmd.OutOrStdout(), "notification: %s\n", joinActions(plan.Notification))
			fmt.Fprintf(cmd.OutOrStdout(), "wearable: %s\n", joinActions(plan.Wearable))
			return nil
		},
	}
}

func joinActions(actions []notification.Action) string {
	if len(actions) == 0 {
		return "-"
	}
	return strings.Join(lo.Map(actions, func(a notification.Action, _ int) string {
		return string(a)
	}), ",")
}
