package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"model-governance-service/internal/bootstrap"
	"model-governance-service/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// storageFlags override the storage settings loaded from the environment.
type storageFlags struct {
	configFile   string
	driver       string
	dataDir      string
	artifactsDir string
	sqlitePath   string
}

func NewRoot() *cobra.Command {
	var flags storageFlags

	root := &cobra.Command{
		Use:   "govctl",
		Short: "Offline governance tooling over the service's record store",
		Long: "govctl reads and writes the same record store as the governance service. " +
			"Storage settings come from the environment and can be overridden with flags. " +
			"The file driver's data directory is locked while a server has it open.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "path to config file (overrides CONFIG_FILE)")
	root.PersistentFlags().StringVar(&flags.driver, "driver", "", "storage driver: file, sqlite or postgres")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "file driver data directory")
	root.PersistentFlags().StringVar(&flags.artifactsDir, "artifacts-dir", "", "evidence pack artifacts directory")
	root.PersistentFlags().StringVar(&flags.sqlitePath, "sqlite-path", "", "sqlite database path")

	root.AddCommand(
		newScoreCmd(&flags),
		newSummaryCmd(&flags),
		newPackCmd(&flags),
		newAuditCmd(&flags),
	)

	return root
}

// openServices loads config, applies flag overrides and wires the services.
// The returned function closes the store.
func openServices(ctx context.Context, flags *storageFlags) (*bootstrap.Services, func(), error) {
	if flags.configFile != "" {
		if err := os.Setenv("CONFIG_FILE", flags.configFile); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if flags.driver != "" {
		cfg.Storage.Driver = flags.driver
	}
	if flags.dataDir != "" {
		cfg.Storage.DataDir = flags.dataDir
	}
	if flags.artifactsDir != "" {
		cfg.Storage.ArtifactsDir = flags.artifactsDir
	}
	if flags.sqlitePath != "" {
		cfg.SQLite.Path = flags.sqlitePath
	}
	if cfg.Storage.Driver == config.DriverMemory {
		return nil, nil, fmt.Errorf("the memory driver holds no records outside the server process")
	}

	// keep CLI output clean; adapters log at info
	log.SetLevel(log.WarnLevel)

	store, err := bootstrap.OpenStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc, err := bootstrap.NewServices(store, cfg, nil)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return svc, func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("close storage failed")
		}
	}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
