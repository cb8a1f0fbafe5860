package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show tracker and index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	tracker, err := openTracker()
	if err != nil {
		return fmt.Errorf("opening tracker: %w", err)
	}
	defer tracker.Close()

	tracking, err := tracker.GetStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading tracker stats: %w", err)
	}

	cmd.Println("Documents:")
	cmd.Printf("  Total:      %d\n", tracking.Total)
	cmd.Printf("  Pending:    %d\n", tracking.Pending)
	cmd.Printf("  Processing: %d\n", tracking.Processing)
	cmd.Printf("  Completed:  %d\n", tracking.Completed)
	cmd.Printf("  Failed:     %d\n", tracking.Failed)

	index, err := openIndex()
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	stats := index.Stats()

	cmd.Println("\nIndex:")
	cmd.Printf("  Chunks:     %d\n", stats.TotalChunks)
	cmd.Printf("  Dimensions: %d\n", stats.Dimensions)

	if len(stats.ByDocType) > 0 {
		cmd.Println("  By type:")
		for _, key := range sortedKeys(stats.ByDocType) {
			cmd.Printf("    %-10s %d\n", key, stats.ByDocType[key])
		}
	}
	if len(stats.BySource) > 0 {
		cmd.Println("  By source:")
		for _, key := range sortedKeys(stats.BySource) {
			cmd.Printf("    %-30s %d\n", key, stats.BySource[key])
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
