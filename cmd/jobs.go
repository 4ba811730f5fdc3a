package cmd

import (
	"fmt"

	"Gin_postgres_redis_lending/app"
	"Gin_postgres_redis_lending/db"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one overdue check-in scan and apply penalties",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Open(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		overdue := a.Engine.FindOverdueCheckins(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "%d overdue reservation(s)\n", len(overdue))
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete reservations whose pick-up deadline has passed",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Open(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Engine.PurgeNonPickedUpReservations(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d reservation(s)\n", n)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := db.Connect(cfg.Database)
		if err != nil {
			return err
		}
		if sqlDB, err := conn.DB(); err == nil {
			defer sqlDB.Close()
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}
