// Package cli is the billing command-line adapter built on cobra.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"agency-billing/internal/app"
	"agency-billing/internal/config"
	"agency-billing/internal/db"
	ierr "agency-billing/internal/errors"
	"agency-billing/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

// runtime is the state shared by every command of one invocation.
type runtime struct {
	cfg    *config.Config
	logger zerolog.Logger
	pool   *pgxpool.Pool
	svc    app.ApplicationService
	out    io.Writer
}

// Option customizes the root command.
type Option func(*runtime)

// WithService runs commands against svc instead of opening the database.
func WithService(svc app.ApplicationService) Option {
	return func(rt *runtime) { rt.svc = svc }
}

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(rt *runtime) { rt.out = w }
}

// NewRootCommand builds the billing command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	rt := &runtime{out: os.Stdout, logger: logger.Nop()}
	for _, opt := range opts {
		opt(rt)
	}

	root := &cobra.Command{
		Use:   "billing",
		Short: "GST billing and invoicing for a service agency",
		Long: `billing manages the business profile, clients, recurring subscriptions,
GST invoices, payments and collection reports.

Configuration is read from the environment (and a .env file when present):
  DATABASE_URL  - PostgreSQL connection string
  JWT_SECRET    - HS256 secret for the HTTP API
  SERVER_PORT   - HTTP port for 'billing serve' (default 8080)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			rt.close()
		},
	}
	root.SetOut(rt.out)

	root.AddCommand(
		newServeCommand(rt),
		newMigrateCommand(rt),
		newTokenCommand(rt),
		newProfileCommand(rt),
		newClientCommand(rt),
		newSubscriptionCommand(rt),
		newInvoiceCommand(rt),
		newPaymentCommand(rt),
		newReportCommand(rt),
		newSeedCommand(rt),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %s\n", ierr.DisplayMessage(err, err.Error()))
		os.Exit(1)
	}
}

func (rt *runtime) init() error {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	rt.cfg = cfg
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return err
	}
	rt.logger = logger.WithComponent("billing")
	return nil
}

// service returns the application service, opening the database on first use.
func (rt *runtime) service(ctx context.Context) (app.ApplicationService, error) {
	if rt.svc != nil {
		return rt.svc, nil
	}
	pool, err := rt.connect(ctx)
	if err != nil {
		return nil, err
	}
	rt.svc = app.NewAppService(db.NewStore(pool), rt.cfg.Billing(), rt.logger)
	return rt.svc, nil
}

func (rt *runtime) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if rt.pool != nil {
		return rt.pool, nil
	}
	if err := rt.cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	pool, err := db.NewPool(ctx, rt.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	rt.pool = pool
	return pool, nil
}

func (rt *runtime) close() {
	if rt.pool != nil {
		rt.pool.Close()
		rt.pool = nil
	}
}

// printJSON writes v as indented JSON.
func (rt *runtime) printJSON(v any) error {
	enc := json.NewEncoder(rt.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
