package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/phrazzld/vocabflow/internal/platform/sqlstore"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|status|version]",
		Short: "Apply or inspect database migrations",
		Long: `Runs the embedded schema migrations for the configured driver.

  up      apply all pending migrations (default)
  down    roll back the most recent migration
  status  list migrations and whether they are applied
  version print the current schema version`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{sqlstore.MigrateUp, sqlstore.MigrateDown, sqlstore.MigrateStatus, sqlstore.MigrateVersion},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := sqlstore.MigrateUp
			if len(args) == 1 {
				command = args[0]
			}

			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			statuses, err := sqlstore.Migrate(cmd.Context(), e.db, command, e.logger)
			if err != nil {
				return err
			}

			if command == sqlstore.MigrateVersion {
				var version int64
				for _, s := range statuses {
					if s.Applied && s.Version > version {
						version = s.Version
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), version)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tSTATE\tSOURCE")
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, state, s.Source)
			}
			return w.Flush()
		},
	}
}
