package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/messenger-api-go/internal/app"
	"github.com/kapu/messenger-api-go/internal/config"
	"github.com/kapu/messenger-api-go/internal/session"
	"github.com/kapu/messenger-api-go/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const buildTimeout = 30 * time.Second

// cli carries what the commands share. Fields already set before Execute
// are used as is, which is how the tests inject their services.
type cli struct {
	cfg       *config.Config
	logger    *zap.Logger
	container *app.Container
	owned     bool
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "messenger",
		Short: "Command line client for the messenger API",
		Long: `Talk to the messenger API from a terminal.

Configuration comes from the environment (or a .env file):
  MESSENGER_ENV   debug, staging or release (default release)
  API_BASE_URL    override the environment's base URL
  REDIS_HOST      where the session and feature flags are kept
  POSTGRES_HOST   local conversation store, optional`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}

	root.AddCommand(
		newSignupCmd(c),
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newCountCmd(c),
		newProductsCmd(c),
		newSubscribeCmd(c),
		newProbeCmd(c),
		newContactsCmd(c),
		newActionsCmd(c),
		newFlagsCmd(c),
		newListenCmd(c),
	)
	return root
}

// execute runs one command line. What the command opened is released even
// when it fails, since cobra skips post-run hooks after an error.
func execute(ctx context.Context, c *cli, args []string) error {
	defer c.close()

	root := newRootCmd(c)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (c *cli) init() error {
	if c.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		c.cfg = cfg
	}
	if c.logger == nil {
		logger, err := util.NewLogger(c.cfg.Logging.Level, c.cfg.Logging.File)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		c.logger = logger
	}
	return nil
}

// services builds the container on first use so commands that only need the
// config never touch Redis.
func (c *cli) services(ctx context.Context) (*app.Container, error) {
	if c.container != nil {
		return c.container, nil
	}

	buildCtx, cancel := context.WithTimeout(ctx, buildTimeout)
	defer cancel()

	container, err := app.Build(buildCtx, c.cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble services: %w", err)
	}
	c.container = container
	c.owned = true
	return container, nil
}

// account loads the signed-in account or fails with a hint to log in.
func (c *cli) account(ctx context.Context) (*app.Container, *session.Account, error) {
	container, err := c.services(ctx)
	if err != nil {
		return nil, nil, err
	}
	account, err := container.Sessions.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if account == nil {
		return nil, nil, fmt.Errorf("not signed in, run login or signup first")
	}
	return container, account, nil
}

func (c *cli) close() {
	if c.container != nil && c.owned {
		c.container.Close()
		c.container = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}
