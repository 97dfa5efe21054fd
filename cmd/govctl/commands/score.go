package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newScoreCmd(flags *storageFlags) *cobra.Command {
	var asJSON, record bool
	var mitigation string

	cmd := &cobra.Command{
		Use:   "score <model-id>",
		Short: "Compute a model's risk score",
		Example: `  govctl score model_3f9a1c2b7d4e
  govctl score model_3f9a1c2b7d4e --json
  govctl score model_3f9a1c2b7d4e --record --mitigation "Quarterly bias retest"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeStore, err := openServices(ctx, flags)
			if err != nil {
				return err
			}
			defer closeStore()

			if record {
				rec, err := svc.Risk.ComputeAndRecord(ctx, "govctl", args[0], mitigation)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recorded risk assessment: %.2f (%s)\n", rec.RiskScore, rec.RiskLevel)
				return nil
			}

			score, err := svc.Risk.Score(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), score)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Model:  %s\nScore:  %.2f\nLevel:  %s\n", score.ModelID, score.Score, score.Level)
			if len(score.Drivers) > 0 {
				fmt.Fprintf(out, "Drivers:\n  - %s\n", strings.Join(score.Drivers, "\n  - "))
			}
			fmt.Fprintln(out)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "COMPONENT\tSCORE\tWEIGHT\tCONTRIBUTION\n")
			for _, c := range score.Components {
				fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\n", c.Name, c.Score, c.Weight, c.Contribution)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full score as JSON")
	cmd.Flags().BoolVar(&record, "record", false, "append the computed score as a risk assessment record")
	cmd.Flags().StringVar(&mitigation, "mitigation", "", "mitigation plan stored with --record")
	return cmd
}
