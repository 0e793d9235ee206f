package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/solatis/strbounds/internal/core/db"
	"github.com/solatis/strbounds/internal/logging"
)

func newMigrateCmd(opts *options) *cobra.Command {
	var showStatus bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("migrate")
			database, err := opts.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			if showStatus {
				statuses, err := db.MigrateStatus(cmd.Context(), database)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "MIGRATION\tSTATUS\tAPPLIED AT")
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, state, s.AppliedAt)
				}
				return tw.Flush()
			}

			done := logging.LogOperationStart(logger, "migrate")
			applied, err := db.MigrateUp(cmd.Context(), database)
			done()
			for _, id := range applied {
				logger.Info().Str("migration", id).Msg("Migration applied")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(applied))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showStatus, "status", false, "show migration status without applying")
	return cmd
}
