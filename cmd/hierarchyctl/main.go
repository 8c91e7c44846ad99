package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacksonlee411/org-hierarchy/internal/config"
	"github.com/jacksonlee411/org-hierarchy/internal/server"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/ports"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	exitError = 1
	exitUsage = 2
	// exitInvalid marks a hierarchy rejected by validation.
	exitInvalid = 3
)

type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

func exitCode(err error) int {
	if ce, ok := errors.AsType[*codedError](err); ok {
		return ce.code
	}
	return exitError
}

type storeOpener func(ctx context.Context, cfg config.StoreConfig, logger *logrus.Entry) (ports.HierarchyStore, func(), error)

type app struct {
	configPath  string
	store       string
	databaseURL string
	badgerPath  string
	logLevel    string

	cfg       config.Config
	log       *logrus.Entry
	openStore storeOpener
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(server.OpenStore)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func newRootCmd(open storeOpener) *cobra.Command {
	a := &app{openStore: open}

	root := &cobra.Command{
		Use:           "hierarchyctl",
		Short:         "Solve, inspect and migrate the employee hierarchy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", os.Getenv("HIERARCHY_CONFIG"), "YAML config file")
	pf.StringVar(&a.store, "store", "", "Store backend: postgres, badger or memory")
	pf.StringVar(&a.databaseURL, "database-url", "", "Postgres DSN, overrides DATABASE_URL")
	pf.StringVar(&a.badgerPath, "badger-path", "", "Badger database directory")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	root.AddCommand(newSolveCmd(a), newShowCmd(a), newMigrateCmd(a))
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return withCode(exitUsage, err)
	}
	if a.store != "" {
		cfg.Store.Backend = a.store
	}
	if a.databaseURL != "" {
		cfg.Store.DatabaseURL = a.databaseURL
	}
	if a.badgerPath != "" {
		cfg.Store.BadgerPath = a.badgerPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return withCode(exitUsage, err)
	}

	logger, err := config.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return withCode(exitUsage, err)
	}
	a.cfg = cfg
	a.log = logrus.NewEntry(logger).WithField("command", cmd.Name())
	return nil
}
