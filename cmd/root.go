// cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dev-mohitbeniwal/blobsas/config"
	logger "github.com/dev-mohitbeniwal/blobsas/logging"
)

// ConfigPathEnv names the directory holding config.yaml.
const ConfigPathEnv = "BLOBSAS_CONFIG_PATH"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blobsas",
		Short: "Shared access signatures for a container/blob store",
		Long: `Issue and exercise capability-scoped shared access signatures.

serve runs the storage backend that validates every signed request,
generate issues container, blob and stored-policy tokens against it, and
consume exercises signed URIs with Write, List, Read and Delete.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		generateCmd(),
		consumeCmd(),
	)
	return rootCmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration once and initialises logging from it.
func setup() (*config.Configuration, error) {
	path := os.Getenv(ConfigPathEnv)
	if path == "" {
		path = "config"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
