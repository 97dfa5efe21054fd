package commands

import (
	"context"

	"model-governance-service/internal/core/domain"

	"github.com/spf13/cobra"
)

func newSummaryCmd(flags *storageFlags) *cobra.Command {
	var asOf int64

	cmd := &cobra.Command{
		Use:   "summary <model-id>",
		Short: "Print a model's governance summary as JSON",
		Example: `  govctl summary model_3f9a1c2b7d4e
  govctl summary model_3f9a1c2b7d4e --as-of 1200`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeStore, err := openServices(ctx, flags)
			if err != nil {
				return err
			}
			defer closeStore()

			summarize := svc.Summaries.Summarize
			if asOf > 0 {
				summarize = func(ctx context.Context, id string) (*domain.GovernanceSummary, error) {
					return svc.Summaries.SummarizeAt(ctx, id, asOf)
				}
			}
			summary, err := summarize(ctx, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().Int64Var(&asOf, "as-of", 0, "record sequence cutoff; 0 summarizes current state")
	return cmd
}
