package main

import (
	"fmt"

	"github.com/jacksonlee411/org-hierarchy/internal/config"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/infrastructure/persistence"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Run the postgres schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}
			if a.cfg.Store.Backend != config.StoreBackendPostgres {
				return withCode(exitUsage, fmt.Errorf("migrate needs the postgres store, got %q", a.cfg.Store.Backend))
			}

			db, err := persistence.OpenMigrationDB(a.cfg.Store.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			a.log.WithField("migrate", command).Info("running migrations")
			return persistence.Migrate(cmd.Context(), db, command, cmd.OutOrStdout())
		},
	}
}
