package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsintel-labs/opsintel/internal/core/domain"
)

var (
	askLimit int
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Generate a structured answer with cited evidence",
	Long: `Retrieves relevant chunks for the question and generates a
decision-support answer: options with trade-offs, a recommendation,
evidence citations and known conflicts or gaps.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "number of context chunks (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the raw answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	retriever, cleanup, err := newRetriever(true)
	if err != nil {
		return err
	}
	defer cleanup()

	answer, chunks, err := retriever.Ask(cmd.Context(), args[0], askLimit, nil)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printAnswer(cmd, answer, len(chunks))
	return nil
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer, contextCount int) {
	cmd.Printf("Summary: %s\n\n", answer.Summary)

	if len(answer.Options) > 0 {
		cmd.Printf("Options (%d):\n", len(answer.Options))
		for i, option := range answer.Options {
			cmd.Printf("  %d. %s\n", i+1, option.Name)
			printList(cmd, "Pros", option.Pros)
			printList(cmd, "Cons", option.Cons)
			printList(cmd, "Risks", option.Risks)
			if option.Cost != "" {
				cmd.Printf("     Cost: %s\n", option.Cost)
			}
		}
		cmd.Println()
	}

	cmd.Printf("Recommendation (%s confidence): %s\n\n", answer.Confidence, answer.Recommendation)
	if answer.Reasoning != "" {
		cmd.Printf("Reasoning: %s\n\n", answer.Reasoning)
	}

	if len(answer.Evidence) > 0 {
		cmd.Println("Evidence:")
		for _, ev := range answer.Evidence {
			location := ev.Location
			if location != "" {
				location = " (" + location + ")"
			}
			cmd.Printf("  - %s [%s%s]\n", ev.Claim, ev.Source, location)
		}
		cmd.Println()
	}

	if len(answer.ConflictsOrGaps) > 0 {
		cmd.Println("Conflicts or gaps:")
		for _, item := range answer.ConflictsOrGaps {
			cmd.Printf("  - %s\n", item)
		}
		cmd.Println()
	}

	cmd.Printf("(answered from %d retrieved chunks)\n", contextCount)
}

func printList(cmd *cobra.Command, label string, items []string) {
	if len(items) == 0 {
		return
	}
	cmd.Printf("     %s: %s\n", label, strings.Join(items, "; "))
}
