package commands

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/driftscope/driftscope/pkg/types"
)

func newVerifyCommand() *cobra.Command {
	var (
		tenantID string
		fromID   string
		toID     string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a drift computation is deterministic",
		Long: `Compute the drift set for a snapshot pair twice, independently, and
compare the set-level canonical hashes. Identical inputs must produce an
identical hash; a mismatch indicates a reproducibility defect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, _, err := newService()
			if err != nil {
				return err
			}

			result, err := service.Verify(cmd.Context(), types.TenantID(tenantID), fromID, toID)
			if err != nil {
				return err
			}

			if asJSON {
				rendered, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(rendered))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Events:   %d\n", result.EventCount)
				fmt.Fprintf(cmd.OutOrStdout(), "Set hash: %s\n", result.SetHash)
				if result.Deterministic {
					fmt.Fprintf(cmd.OutOrStdout(), "Result:   %s\n", color.GreenString("deterministic"))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Recomputed: %s\n", result.RecomputedHash)
					fmt.Fprintf(cmd.OutOrStdout(), "Result:   %s\n", color.RedString("MISMATCH"))
				}
			}

			if !result.Deterministic {
				return fmt.Errorf("set hash mismatch for %s..%s", fromID, toID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant identifier (required)")
	cmd.Flags().StringVar(&fromID, "from", "", "earlier snapshot ID (required)")
	cmd.Flags().StringVar(&toID, "to", "", "later snapshot ID (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the verification result as JSON")
	cmd.MarkFlagRequired("tenant")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	return cmd
}
