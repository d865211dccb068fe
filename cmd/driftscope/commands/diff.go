package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/driftscope/driftscope/internal/drift"
	"github.com/driftscope/driftscope/internal/ordering"
	"github.com/driftscope/driftscope/pkg/types"
)

func newDiffCommand() *cobra.Command {
	var (
		tenantID       string
		fromID         string
		toID           string
		objectType     string
		classification string
		fromDate       string
		toDate         string
		page           int
		limit          int
		displayOrder   bool
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compute drift events between two stored snapshots",
		Long: `Compute the exact set of additions, removals, and modifications
between two snapshots of the same tenant, with classification and
completeness disclosure per event.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, _, err := newService()
			if err != nil {
				return err
			}

			filter := ordering.Filter{
				ObjectType:     types.ObjectType(objectType),
				Classification: types.Classification(classification),
			}
			if filter.FromDate, err = parseDateFlag("from-date", fromDate); err != nil {
				return err
			}
			if filter.ToDate, err = parseDateFlag("to-date", toDate); err != nil {
				return err
			}

			result, err := service.ListDrift(cmd.Context(), types.TenantID(tenantID), drift.Query{
				FromSnapshotID: fromID,
				ToSnapshotID:   toID,
				Filter:         filter,
				Page:           page,
				Limit:          limit,
				DisplayOrder:   displayOrder,
			})
			if err != nil {
				return err
			}

			formatter, err := newFormatter()
			if err != nil {
				return err
			}
			rendered, err := formatter.FormatDriftPage(result)
			if err != nil {
				return err
			}
			cmd.OutOrStdout().Write(rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant identifier (required)")
	cmd.Flags().StringVar(&fromID, "from", "", "earlier snapshot ID (required)")
	cmd.Flags().StringVar(&toID, "to", "", "later snapshot ID (required)")
	cmd.Flags().StringVar(&objectType, "object-type", "", "filter by object type")
	cmd.Flags().StringVar(&classification, "classification", "", "filter by classification")
	cmd.Flags().StringVar(&fromDate, "from-date", "", "filter by time window start (RFC 3339)")
	cmd.Flags().StringVar(&toDate, "to-date", "", "filter by time window end (RFC 3339)")
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&limit, "limit", 50, "events per page")
	cmd.Flags().BoolVar(&displayOrder, "newest-first", false, "order by time window, newest first")
	cmd.MarkFlagRequired("tenant")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	return cmd
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("--%s must be RFC 3339: %w", name, err)
	}
	return &parsed, nil
}
