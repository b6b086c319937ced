package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/bnema/arcprompt/internal/adapters/store/sqlite"
	"github.com/spf13/cobra"
)

func newSnapshotsCmd() *cobra.Command {
	var (
		dbPath string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List diagnostics snapshots exported by batch --export-db",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("diagnostics database %s: %w", dbPath, err)
			}

			store, err := sqlite.NewStore(dbPath, nil)
			if err != nil {
				return fmt.Errorf("open diagnostics database: %w", err)
			}
			defer store.Close()

			snapshots, err := store.ListSnapshots(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				if snapshots == nil {
					snapshots = []sqlite.Snapshot{}
				}
				return writeJSON(cmd.OutOrStdout(), snapshots)
			}

			if len(snapshots) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No diagnostics snapshots.")
				return err
			}
			for _, snapshot := range snapshots {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  records=%d occurrences=%d unique=%d\n",
					snapshot.ID, snapshot.TakenAt.Format(time.RFC3339), snapshot.Records, snapshot.Occurrences, snapshot.Unique)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Diagnostics SQLite database")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
