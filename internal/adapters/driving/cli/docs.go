package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Inspect and manage tracked documents",
}

var docsPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List documents waiting to be processed",
	RunE:  runDocsPending,
}

var docsFailedCmd = &cobra.Command{
	Use:   "failed",
	Short: "List failed documents with their errors",
	RunE:  runDocsFailed,
}

var docsRetryCmd = &cobra.Command{
	Use:   "retry [id]",
	Short: "Requeue a failed document for the next run",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsRetry,
}

func init() {
	docsCmd.AddCommand(docsPendingCmd)
	docsCmd.AddCommand(docsFailedCmd)
	docsCmd.AddCommand(docsRetryCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsPending(cmd *cobra.Command, _ []string) error {
	tracker, err := openTracker()
	if err != nil {
		return fmt.Errorf("opening tracker: %w", err)
	}
	defer tracker.Close()

	docs, err := tracker.GetPendingDocuments(cmd.Context(), 0)
	if err != nil {
		return fmt.Errorf("listing pending documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No pending documents.")
		return nil
	}
	printDocs(cmd, docs)
	return nil
}

func runDocsFailed(cmd *cobra.Command, _ []string) error {
	tracker, err := openTracker()
	if err != nil {
		return fmt.Errorf("opening tracker: %w", err)
	}
	defer tracker.Close()

	docs, err := tracker.GetFailedDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing failed documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No failed documents.")
		return nil
	}
	for _, doc := range docs {
		cmd.Printf("  [%d] %s (%s)\n", doc.ID, doc.SourcePath, doc.DocType)
		cmd.Printf("      %s\n", doc.ErrorMessage)
	}
	return nil
}

func runDocsRetry(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid document id %q", args[0])
	}

	tracker, err := openTracker()
	if err != nil {
		return fmt.Errorf("opening tracker: %w", err)
	}
	defer tracker.Close()

	if err := tracker.Requeue(cmd.Context(), id); err != nil {
		return fmt.Errorf("requeueing document %d: %w", id, err)
	}
	cmd.Printf("Document %d requeued.\n", id)
	return nil
}

func printDocs(cmd *cobra.Command, docs []domain.TrackedDocument) {
	for _, doc := range docs {
		cmd.Printf("  [%d] %s (%s, %s)\n", doc.ID, doc.SourcePath, doc.DocType, doc.Status)
	}
}
