package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show system statistics",
	Long:  `Shows document, chunk, and ontology counts plus the active embedding model.`,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	ctx := context.Background()

	st, err := statsService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to gather stats: %w", err)
	}

	if statsJSON {
		return outputJSON(cmd, st)
	}

	cmd.Println("System statistics:")
	cmd.Println()
	cmd.Printf("  Documents:  %d\n", st.Documents)
	cmd.Printf("  Chunks:     %d\n", st.Chunks)
	cmd.Printf("  Embedding:  %s (%d dimensions)\n", st.EmbeddingModel, st.Dimensions)
	cmd.Printf("  Ontologies: %d documents, %d keywords\n",
		st.Ontology.DocumentRecords, st.Ontology.KeywordRecords)

	return nil
}
