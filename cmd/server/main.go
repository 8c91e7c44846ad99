package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacksonlee411/org-hierarchy/internal/config"
	"github.com/jacksonlee411/org-hierarchy/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

type options struct {
	ConfigPath string
	Addr       string
	Store      string
	LogLevel   string
	Migrate    bool
}

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func run() error {
	opt := &options{}
	pflag.StringVar(&opt.ConfigPath, "config", os.Getenv("HIERARCHY_CONFIG"), "YAML config file. Environment variables override file values.")
	pflag.StringVar(&opt.Addr, "addr", "", "Listen address, overrides server.addr.")
	pflag.StringVar(&opt.Store, "store", "", "Store backend: postgres, badger or memory.")
	pflag.StringVar(&opt.LogLevel, "log-level", "", "Log level, overrides log.level.")
	pflag.BoolVar(&opt.Migrate, "migrate", false, "Apply postgres migrations before serving.")
	pflag.Parse()

	cfg, err := config.Load(opt.ConfigPath)
	if err != nil {
		return err
	}
	if opt.Addr != "" {
		cfg.Server.Addr = opt.Addr
	}
	if opt.Store != "" {
		cfg.Store.Backend = opt.Store
	}
	if opt.LogLevel != "" {
		cfg.Log.Level = opt.LogLevel
	}
	if opt.Migrate {
		cfg.Store.MigrateOnStart = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	log := logrus.NewEntry(logger).WithField("service", "org-hierarchy")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := server.OpenStore(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer closeStore()

	handler, err := server.NewHandlerWithOptions(server.HandlerOptions{
		Config: cfg,
		Logger: log,
		Store:  store,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.Server.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
