// Package cli is the terminal host of the session layer: it wires the configured
// storage backend, a terminal notifier and an in-memory router, then drives the
// login flow, the gateway, the oracle and the route guard from subcommands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/target/mmk-ui-session/config"
	"github.com/target/mmk-ui-session/internal/adapters/navigation"
	"github.com/target/mmk-ui-session/internal/adapters/notifier"
	"github.com/target/mmk-ui-session/internal/bootstrap"
	"github.com/target/mmk-ui-session/internal/ports"
)

// Options lets callers replace the process streams and the backend plumbing.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Store bypasses the configured storage backend.
	Store ports.KeyValueStore
	// Transport replaces the HTTP base transport.
	Transport http.RoundTripper
}

type app struct {
	opts Options
	// in is shared by prompts and the terminal notifier so neither buffers input away from the other.
	in *bufio.Reader

	flagAPIURL    string
	flagStorage   string
	flagLogLevel  string
	flagLogFormat string

	logger  *slog.Logger
	router  *navigation.Router
	svc     bootstrap.ServiceContainer
	closers []func() error
}

// Execute runs the CLI with args and releases storage and metrics connections
// whether or not the command succeeded.
func Execute(ctx context.Context, args []string, opts Options) error {
	root, a := newRootCmd(opts)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.teardown())
}

func newRootCmd(opts Options) (*cobra.Command, *app) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	a := &app{opts: opts, in: bufio.NewReader(opts.In)}

	root := &cobra.Command{
		Use:   "mmk-session",
		Short: "Manage the mmk client session",
		Long: "mmk-session signs in against the mmk API, keeps the session token and profile " +
			"in the configured storage and answers authorization questions from the stored session.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	root.PersistentFlags().StringVar(&a.flagAPIURL, "api-url", "", "API base URL (or API_BASE_URL env)")
	root.PersistentFlags().StringVar(&a.flagStorage, "storage", "",
		"Session storage backend: memory, file, redis, postgres, sqlite (or STORAGE_BACKEND env)")
	root.PersistentFlags().StringVar(&a.flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (or LOG_LEVEL env)")
	root.PersistentFlags().StringVar(&a.flagLogFormat, "log-format", "", "Log format: json, text (or LOG_FORMAT env)")

	root.AddCommand(
		a.newLoginCmd(),
		a.newLogoutCmd(),
		a.newWhoamiCmd(),
		a.newStatusCmd(),
		a.newCanCmd(),
		a.newOpenCmd(),
		a.newRequestCmd(),
	)
	return root, a
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	if err := a.applyFlags(cmd, &cfg); err != nil {
		return err
	}
	a.logger = bootstrap.InitLogger(cfg.Logging, a.opts.Err)
	ctx := cmd.Context()

	store := a.opts.Store
	if store == nil {
		built, closeStore, buildErr := bootstrap.BuildStore(ctx, bootstrap.StoreConfig{
			Storage:  cfg.Storage,
			Postgres: cfg.Postgres,
			Redis:    cfg.Redis,
			Logger:   a.logger,
		})
		if buildErr != nil {
			return fmt.Errorf("open session storage: %w", buildErr)
		}
		store = built
		a.closers = append(a.closers, closeStore)
	}

	a.router = navigation.NewRouter("/")
	a.router.OnChange(func(ctx context.Context, from, to string) {
		a.logger.DebugContext(ctx, "navigate", "from", from, "to", to)
	})

	a.svc, err = bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:    &cfg,
		Store:     store,
		Notifier:  notifier.NewTerminal(a.opts.Out, a.in),
		Navigator: a.router,
		Transport: a.opts.Transport,
		Logger:    a.logger,
	})
	if err != nil {
		return errors.Join(err, a.teardown())
	}
	a.closers = append(a.closers, a.svc.Close)
	return nil
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *config.AppConfig) error {
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.API.BaseURL = a.flagAPIURL
	}
	if flags.Changed("storage") {
		if err := cfg.Storage.Backend.UnmarshalText([]byte(a.flagStorage)); err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = a.flagLogFormat
	}
	cfg.Sanitize()
	return nil
}

func (a *app) teardown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.opts.Out, format, args...)
}
