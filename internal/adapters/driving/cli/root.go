// Package cli implements the opsintel command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/opsintel-labs/opsintel/internal/config"
	"github.com/opsintel-labs/opsintel/internal/logger"
)

var (
	version = "dev"

	cfgFile string
	verbose bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "opsintel",
	Short: "Ingest, index and query heterogeneous operations documents",
	Long: `opsintel ingests operations documents (markdown, CSV exports,
chat transcripts, emails, PDFs) into a vector index and answers
questions against them with cited evidence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)

		// A local .env may carry OPENAI_API_KEY; absence is fine.
		if err := godotenv.Load(); err == nil {
			logger.Debug("loaded .env")
		}

		if cfgFile != "" {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = loaded
			return nil
		}

		// Without --config, a file at the default location is used if
		// present; otherwise everything runs on defaults.
		path := defaultConfigPath()
		if _, err := os.Stat(path); err == nil {
			loaded, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = loaded
			return nil
		}
		cfg = config.Default(filepath.Join(filepath.Dir(path), "data"))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.opsintel/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".opsintel", "config.toml")
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}
