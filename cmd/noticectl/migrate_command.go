package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"noticeboard/internal/adapters/storage"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			before, err := storage.SchemaVersion(db)
			if err != nil {
				return err
			}
			if err := storage.MigrateDB(db); err != nil {
				return err
			}
			after, err := storage.SchemaVersion(db)
			if err != nil {
				return err
			}
			if before == after {
				fmt.Fprintf(cmd.OutOrStdout(), "Schema already at version %d\n", after)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated schema from version %d to %d\n", before, after)
			return nil
		},
	}
}
