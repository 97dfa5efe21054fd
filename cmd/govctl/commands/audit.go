package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"model-governance-service/internal/core/domain"

	"github.com/spf13/cobra"
)

func newAuditCmd(flags *storageFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Query and verify the audit trail",
	}
	cmd.AddCommand(newAuditListCmd(flags), newAuditVerifyCmd(flags))
	return cmd
}

func newAuditListCmd(flags *storageFlags) *cobra.Command {
	var filter domain.AuditFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit entries, newest first",
		Example: `  govctl audit list
  govctl audit list --model model_3f9a1c2b7d4e
  govctl audit list --action generate_evidence_pack --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeStore, err := openServices(ctx, flags)
			if err != nil {
				return err
			}
			defer closeStore()

			entries, err := svc.Audit.List(ctx, filter)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No audit entries found.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "INDEX\tTIME\tUSER\tACTION\tENTITY\tMODEL\n")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s/%s\t%s\n",
					e.Index, e.Timestamp.Format(time.RFC3339), e.UserID, e.ActionType, e.EntityType, e.EntityID, e.ModelID)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&filter.ModelID, "model", "", "filter by model id")
	cmd.Flags().StringVar(&filter.EntityType, "entity", "", "filter by entity type")
	cmd.Flags().StringVar(&filter.ActionType, "action", "", "filter by action tag")
	cmd.Flags().IntVar(&filter.Limit, "limit", domain.DefaultAuditLimit, "maximum entries to print")
	return cmd
}

func newAuditVerifyCmd(flags *storageFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the audit hash chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeStore, err := openServices(ctx, flags)
			if err != nil {
				return err
			}
			defer closeStore()

			result, err := svc.Audit.Verify(ctx)
			if err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("audit chain broken at index %d: %s", *result.BrokenAt, result.Reason)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "audit chain valid: %d entries\n", result.Entries)
			return nil
		},
	}
}
