package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion pass over the staging directory",
	Long: `Scans the staging directory for new artifacts, chunks and embeds
pending documents, adds them to the vector index and archives the
processed artifacts.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	tracker, err := openTracker()
	if err != nil {
		return fmt.Errorf("opening tracker: %w", err)
	}
	defer tracker.Close()

	index, err := openIndex()
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}

	embedder, err := newEmbedder()
	if err != nil {
		return err
	}
	defer embedder.Close()

	if err := embedder.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("embedding provider unreachable: %w", err)
	}

	pipeline, err := newPipeline(tracker, index, embedder)
	if err != nil {
		return err
	}

	report, err := pipeline.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}
