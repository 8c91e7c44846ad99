package server

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jacksonlee411/org-hierarchy/internal/config"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/ports"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/infrastructure/persistence"
	"github.com/sirupsen/logrus"
)

// OpenStore builds the flat store selected by cfg.Backend. On success the
// returned close func releases the pool or database.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *logrus.Entry) (ports.HierarchyStore, func(), error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	log := logger.WithField("store", cfg.Backend)

	switch cfg.Backend {
	case config.StoreBackendPostgres:
		if cfg.MigrateOnStart {
			if err := migrateUp(ctx, cfg.DatabaseURL, log.WriterLevel(logrus.InfoLevel)); err != nil {
				return nil, nil, err
			}
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres pool: %w", err)
		}
		log.Info("hierarchy store ready")
		return persistence.NewHierarchyPGStore(pool), pool.Close, nil

	case config.StoreBackendBadger:
		db, err := persistence.OpenBadger(persistence.BadgerConfig{
			Path:       cfg.BadgerPath,
			InMemory:   cfg.BadgerInMemory,
			SyncWrites: true,
			Logger:     log.WithField("component", "badger"),
		})
		if err != nil {
			return nil, nil, err
		}
		log.WithField("path", cfg.BadgerPath).Info("hierarchy store ready")
		return persistence.NewHierarchyBadgerStore(db), func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Error("close badger")
			}
		}, nil

	case config.StoreBackendMemory:
		log.Info("hierarchy store ready")
		return persistence.NewHierarchyMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func migrateUp(ctx context.Context, dsn string, out io.WriteCloser) error {
	defer out.Close()

	db, err := persistence.OpenMigrationDB(dsn)
	if err != nil {
		return fmt.Errorf("open migration db: %w", err)
	}
	defer db.Close()

	if err := persistence.Migrate(ctx, db, "up", out); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
