package commands

import (
	"fmt"
	"io"
	"os"

	"model-governance-service/internal/core/domain"

	"github.com/spf13/cobra"
)

func newPackCmd(flags *storageFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Generate and list evidence packs",
	}
	cmd.AddCommand(newPackGenerateCmd(flags), newPackListCmd(flags))
	return cmd
}

func newPackGenerateCmd(flags *storageFlags) *cobra.Command {
	var createdBy, output string

	cmd := &cobra.Command{
		Use:   "generate <model-id>",
		Short: "Generate a new evidence pack for a model",
		Example: `  govctl pack generate model_3f9a1c2b7d4e --created-by examiner@doi.gov
  govctl pack generate model_3f9a1c2b7d4e -o pack.zip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeStore, err := openServices(ctx, flags)
			if err != nil {
				return err
			}
			defer closeStore()

			pack, err := svc.Packs.Generate(ctx, createdBy, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "evidence pack %s\n", pack.ID)
			fmt.Fprintf(out, "  sections: %v\n", pack.IncludedSections)
			fmt.Fprintf(out, "  archive:  %s\n", pack.ZipPath)

			if output == "" {
				return nil
			}
			rc, err := svc.Packs.OpenArtifact(ctx, pack.ID, domain.ArchiveFileName)
			if err != nil {
				return err
			}
			defer rc.Close()
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if _, err := io.Copy(f, rc); err != nil {
				_ = f.Close()
				return fmt.Errorf("write %s: %w", output, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(out, "  written:  %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&createdBy, "created-by", "", "actor recorded as the pack creator")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also copy the archive to this path")
	return cmd
}

func newPackListCmd(flags *storageFlags) *cobra.Command {
	var modelID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List evidence packs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeStore, err := openServices(ctx, flags)
			if err != nil {
				return err
			}
			defer closeStore()

			packs, err := svc.Packs.List(ctx, modelID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), packs)
		},
	}

	cmd.Flags().StringVar(&modelID, "model", "", "only packs for this model")
	return cmd
}
