package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yukikurage/taskboard-api/internal/database"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/seed"
)

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo contacts and tasks",
		Long: `Load demo contacts and tasks. Task dates are relative to today.

Contacts that already exist (by email) are reused; tasks are always added.

Examples:
  taskboard seed
  taskboard seed --file ./fixtures.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(file)
			if err != nil {
				return err
			}

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := database.Migrate(a.db, a.log); err != nil {
				return err
			}

			svc := newServices(a)
			seeder := seed.New(repository.NewStore(a.db), svc.Contacts, svc.Tasks, a.log)
			result, err := seeder.Run(cmd.Context(), ds)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d contacts created (%d reused), %d tasks created\n",
				result.ContactsCreated, result.ContactsReused, result.TasksCreated)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML dataset to load instead of the built-in demo data")
	return cmd
}

func loadDataset(file string) (*seed.Dataset, error) {
	if file == "" {
		return seed.Demo()
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return seed.Parse(data)
}
