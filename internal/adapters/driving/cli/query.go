package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
)

var (
	queryLimit   int
	queryDocType string
	querySource  string
	queryJSON    bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Retrieve the most similar indexed chunks",
	Long: `Embeds the query text and returns the nearest chunks from the
vector index, optionally filtered by document type or source.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "number of chunks to retrieve (default from config)")
	queryCmd.Flags().StringVar(&queryDocType, "type", "", "only chunks of this document type")
	queryCmd.Flags().StringVar(&querySource, "source", "", "only chunks from this source")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func queryFilters() map[string]any {
	filters := map[string]any{}
	if queryDocType != "" {
		filters[domain.MetaDocType] = queryDocType
	}
	if querySource != "" {
		filters[domain.MetaSource] = querySource
	}
	return filters
}

func runQuery(cmd *cobra.Command, args []string) error {
	retriever, cleanup, err := newRetriever(false)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := retriever.Retrieve(cmd.Context(), args[0], queryLimit, queryFilters())
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printScoredChunks(cmd, results)
	return nil
}

func printScoredChunks(cmd *cobra.Command, results []domain.ScoredChunk) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	for _, scored := range results {
		cmd.Printf("  [%d] %s (%s, distance %.4f)\n",
			scored.Rank, scored.Chunk.SourceTag(), scored.Chunk.DocTypeTag(), scored.Distance)

		text := scored.Chunk.Text
		if len(text) > 200 {
			text = text[:200] + "..."
		}
		cmd.Printf("      %s\n\n", text)
	}
}
