package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/opsintel-labs/opsintel/internal/core/ports/driving"
)

func printReport(cmd *cobra.Command, report *driving.RunReport) {
	cmd.Printf("Run %s finished in %s\n", report.RunID, report.Duration().Round(time.Millisecond))
	cmd.Printf("  Registered: %d\n", report.Registered)
	cmd.Printf("  Skipped:    %d\n", report.Skipped)
	cmd.Printf("  Completed:  %d\n", report.Completed)
	cmd.Printf("  Failed:     %d\n", report.Failed)
	cmd.Printf("  Chunks:     %d\n", report.ChunksIndexed)
}
