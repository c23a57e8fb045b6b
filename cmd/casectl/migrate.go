package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/medcase/internal/bootstrap"
	"github.com/bryanwahyu/medcase/internal/infra/db/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations for the configured SQL driver",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, dialect, err := bootstrap.OpenDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if db == nil {
			return fmt.Errorf("driver %q has no schema to migrate", dialect)
		}
		defer db.Close()

		if err := migrations.Up(db, dialect); err != nil {
			return err
		}
		v, dirty, err := migrations.Version(db, dialect)
		if err != nil {
			return err
		}
		log.Info().Str("dialect", dialect).Uint("version", v).Bool("dirty", dirty).Msg("schema up to date")
		fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d\n", dialect, v)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
