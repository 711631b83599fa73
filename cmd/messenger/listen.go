package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kapu/messenger-api-go/internal/contact"
	"github.com/kapu/messenger-api-go/internal/featureflag"
	"github.com/kapu/messenger-api-go/internal/stream"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newListenCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Follow conversation updates pushed by the server",
		Long: `Follow conversation updates pushed by the server until interrupted.

Every conversation is printed with the notification actions it would get.
Attachable contacts are collected as they arrive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			container, account, err := c.account(ctx)
			if err != nil {
				return err
			}

			sub, err := container.NewSubscriber(account.AccountID)
			if err != nil {
				return err
			}
			defer sub.RemoveAllListeners()

			out := cmd.OutOrStdout()
			contacts := contact.NewAttachList(nil)
			contacts.OnChanged(func() {
				c.logger.Debug("Attachable contacts changed", zap.Int("count", contacts.Count()))
			})

			sub.OnEvent(func(event *stream.Event) {
				for _, conv := range event.Conversations {
					plan := container.Notifications.Plan(conv, account)
					fmt.Fprintf(out, "%s\t%d\t%s\t%s\n", event.Type, conv.ID, conv.Title, joinActions(plan.Notification))
				}
				if event.Type == stream.EventConversationRemoved {
					return
				}
				if container.Flags.Enabled(featureflag.AttachContact) {
					contacts.SetContacts(event.Conversations)
				}
			})

			failed := make(chan struct{}, 1)
			sub.OnStateChange(func(state stream.State) {
				if state == stream.StateFailed {
					select {
					case failed <- struct{}{}:
					default:
					}
				}
			})

			if err := sub.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect stream: %w", err)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			c.logger.Info("Listening for conversation updates, waiting for signals...")

			var runErr error
			select {
			case sig := <-sigCh:
				c.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
			case <-failed:
				runErr = fmt.Errorf("stream gave up reconnecting")
			case <-ctx.Done():
			}

			c.logger.Info("Shutting down gracefully...")
			sub.Stop()
			c.logger.Info("Shutdown complete", zap.Int("attachable_contacts", contacts.Count()))
			return runErr
		},
	}
}
