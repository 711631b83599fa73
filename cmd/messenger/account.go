package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/kapu/messenger-api-go/internal/api"
	"github.com/kapu/messenger-api-go/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSignupCmd(c *cli) *cobra.Command {
	var req api.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and make this device its primary device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			container, err := c.services(ctx)
			if err != nil {
				return err
			}

			resp, err := container.API.Account().Signup(ctx, req)
			if err != nil {
				return fmt.Errorf("signup failed: %w", err)
			}
			if err := container.Sessions.Save(ctx, session.FromSignup(req, resp)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed up as %s (account %s)\n", req.Name, resp.AccountId)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	cmd.Flags().StringVar(&req.PhoneNumber, "phone", "", "phone number of this device")
	cmd.Flags().StringVar(&req.RealName, "name", "", "display name")
	return cmd
}

func newLoginCmd(c *cli) *cobra.Command {
	var req api.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			container, err := c.services(ctx)
			if err != nil {
				return err
			}

			resp, err := container.API.Account().Login(ctx, req)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := container.Sessions.Save(ctx, session.FromLogin(resp)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (account %s)\n", resp.Name, resp.AccountId)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in account",
		Long: `Forget the signed-in account on this machine.

With --remove the account is also deleted on the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			container, account, err := c.account(ctx)
			if err != nil {
				return err
			}

			if remove {
				if err := container.API.Account().Remove(ctx, account.AccountID); err != nil {
					return fmt.Errorf("failed to remove account: %w", err)
				}
				c.logger.Info("Account removed", zap.String("account_id", account.AccountID))
			}
			if err := container.Sessions.Clear(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "also delete the account on the server")
	return cmd
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and when the session expires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			container, err := c.services(ctx)
			if err != nil {
				return err
			}

			exists, err := container.Sessions.Exists(ctx)
			if err != nil {
				return err
			}
			var account *session.Account
			if exists {
				if account, err = container.Sessions.Load(ctx); err != nil {
					return err
				}
			}
			if account == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			left, err := container.Sessions.ExpiresIn(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "account\t%s\n", account.AccountID)
			fmt.Fprintf(w, "name\t%s\n", account.Name)
			fmt.Fprintf(w, "primary\t%t\n", account.IsPrimary())
			fmt.Fprintf(w, "expires in\t%s\n", left.Round(time.Minute))
			return w.Flush()
		},
	}
}

func newCountCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show how much data the account stores on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			container, account, err := c.account(ctx)
			if err != nil {
				return err
			}

			counts, err := container.API.Account().Count(ctx, account.AccountID)
			if err != nil {
				return fmt.Errorf("count failed: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "devices\t%d\n", counts.DeviceCount)
			fmt.Fprintf(w, "messages\t%d\n", counts.MessageCount)
			fmt.Fprintf(w, "conversations\t%d\n", counts.ConversationCount)
			fmt.Fprintf(w, "drafts\t%d\n", counts.DraftCount)
			fmt.Fprintf(w, "scheduled\t%d\n", counts.ScheduledCount)
			fmt.Fprintf(w, "blacklist\t%d\n", counts.BlacklistCount)
			fmt.Fprintf(w, "contacts\t%d\n", counts.ContactCount)
			return w.Flush()
		},
	}
}

func newProductsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the plans that can be purchased",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tMONTHS")
			for _, p := range api.Products() {
				fmt.Fprintf(w, "%s\t%s\t%d\n", p.ID, p.Type, p.Months)
			}
			return w.Flush()
		},
	}
}

func newSubscribeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <product-id>",
		Short: "Record a purchased plan on the account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			product, err := api.ProductByID(args[0])
			if err != nil {
				return err
			}

			container, account, err := c.account(ctx)
			if err != nil {
				return err
			}

			purchasedAt := time.Now()
			if err := container.API.Account().ApplyPurchase(ctx, account.AccountID, product, purchasedAt); err != nil {
				return fmt.Errorf("failed to apply purchase: %w", err)
			}

			account.SubscriptionType = int(product.SubscriptionType())
			account.SubscriptionExpiration = 0
			if exp := product.Expiration(purchasedAt); !exp.IsZero() {
				account.SubscriptionExpiration = exp.UnixMilli()
			}
			if err := container.Sessions.Save(ctx, *account); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Subscribed to %s\n", product.ID)
			return nil
		},
	}
}
