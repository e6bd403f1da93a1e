package main

import (
	"github.com/spf13/cobra"
	"github.com/yukikurage/taskboard-api/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			return database.Migrate(a.db, a.log)
		},
	}
}
