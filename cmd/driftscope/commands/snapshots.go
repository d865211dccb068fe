package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftscope/driftscope/pkg/types"
)

func newSnapshotsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Manage stored tenant snapshots",
	}
	cmd.AddCommand(newSnapshotsListCommand())
	cmd.AddCommand(newSnapshotsImportCommand())
	return cmd
}

func newSnapshotsListCommand() *cobra.Command {
	var tenantID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a tenant's stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, _, err := newService()
			if err != nil {
				return err
			}

			infos, err := service.Snapshots(types.TenantID(tenantID))
			if err != nil {
				return err
			}

			formatter, err := newFormatter()
			if err != nil {
				return err
			}
			rendered, err := formatter.FormatSnapshotList(infos)
			if err != nil {
				return err
			}
			cmd.OutOrStdout().Write(rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant identifier (required)")
	cmd.MarkFlagRequired("tenant")
	return cmd
}

func newSnapshotsImportCommand() *cobra.Command {
	var (
		tenantID string
		file     string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an externally captured snapshot from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, log, err := newService()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read snapshot file: %w", err)
			}

			var snapshot types.Snapshot
			if err := json.Unmarshal(data, &snapshot); err != nil {
				return fmt.Errorf("snapshot file is not valid JSON: %w", err)
			}

			if err := service.ImportSnapshot(types.TenantID(tenantID), &snapshot); err != nil {
				return err
			}

			log.WithFields(map[string]interface{}{
				"tenant":   tenantID,
				"snapshot": snapshot.ID,
				"objects":  snapshot.ObjectCount(),
			}).Info("snapshot imported")
			fmt.Fprintf(cmd.OutOrStdout(), "Imported snapshot %s (%d objects)\n", snapshot.ID, snapshot.ObjectCount())
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant identifier (required)")
	cmd.Flags().StringVar(&file, "file", "", "path to the snapshot JSON file (required)")
	cmd.MarkFlagRequired("tenant")
	cmd.MarkFlagRequired("file")
	return cmd
}
