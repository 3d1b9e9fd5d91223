package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/todo-service/internal/adapters/storage"
	"github.com/jsamuelsen11/todo-service/internal/app"
	"github.com/jsamuelsen11/todo-service/internal/platform/config"
	"github.com/jsamuelsen11/todo-service/internal/platform/logging"
	"github.com/jsamuelsen11/todo-service/internal/ports"
)

const defaultProfile = "local"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	profile   string
	configDir string
	driver    string
	dsn       string
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "todoctl",
		Short: "Administer the todo store",
		Long: `todoctl manages the todo store used by the todo service.

Configuration is loaded exactly like the server: built-in defaults, then
configs/base.yaml, then configs/{profile}.yaml, then APP_ environment
variables. --driver and --dsn override the database section last.

Examples:
  # Apply pending migrations to the local SQLite file
  todoctl migrate up

  # Insert 500 todos using 8 concurrent workers
  todoctl seed --count 500 --workers 8

  # Delete every todo in the prod database
  todoctl --profile prod purge --force
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		profile = defaultProfile
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.profile, "profile", profile, "configuration profile (defaults to $APP_PROFILE or local)")
	pf.StringVar(&opts.configDir, "config-dir", "configs", "directory holding base.yaml and the profile files")
	pf.StringVar(&opts.driver, "driver", "", "override database.driver (postgres or sqlite)")
	pf.StringVar(&opts.dsn, "dsn", "", "override database.dsn")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newPurgeCmd(opts),
	)
	return cmd
}

// session is an opened todo store and the dependency graph built on it.
type session struct {
	injector *do.RootScope
	backend  storage.Backend
	logger   *slog.Logger
}

// open loads configuration, opens the configured store and registers the
// todo service. The caller must Close the session.
func (o *globalOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(o.profile, config.WithConfigDir(o.configDir))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.driver != "" {
		cfg.Database.Driver = o.driver
	}
	if o.dsn != "" {
		cfg.Database.DSN = o.dsn
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	ctx := cmd.Context()

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)

	do.Provide(injector, func(_ do.Injector) (storage.Backend, error) {
		return storage.Open(ctx, cfg.Database)
	})

	do.Provide(injector, func(i do.Injector) (ports.TodoService, error) {
		backend := do.MustInvoke[storage.Backend](i)
		return app.NewTodoService(backend, logger), nil
	})

	backend, err := do.Invoke[storage.Backend](injector)
	if err != nil {
		return nil, err
	}

	logger.Debug("todo store opened", slog.String("driver", cfg.Database.Driver))
	return &session{injector: injector, backend: backend, logger: logger}, nil
}

// Service resolves the todo service from the session graph.
func (s *session) Service() (ports.TodoService, error) {
	return do.Invoke[ports.TodoService](s.injector)
}

// Close releases the store.
func (s *session) Close() error {
	if err := s.backend.Close(); err != nil {
		return fmt.Errorf("closing todo store: %w", err)
	}
	return nil
}

// withSession opens a session, runs fn and closes the session, joining any
// close error with fn's result.
func (o *globalOptions) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) (err error) {
	s, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()
	return fn(cmd.Context(), s)
}
