package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
)

var (
	searchMode      string
	searchTopK      int
	searchMinScore  float64
	searchLang      string
	searchSource    string
	searchFileType  string
	searchSimilarTo string
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Searches the chunk index with the selected ranking mode.

Modes:
  vector - pure vector similarity (default)
  hybrid - vector score boosted by lexical and language signals
  rerank - wider candidate pool rescored by keyword, language, and length

With --similar-to, the query argument is ignored and results are the
chunks nearest to the given stored chunk.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "vector", "ranking mode: vector, hybrid, rerank")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 5, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "minimum relevance score (0 = mode default)")
	searchCmd.Flags().StringVarP(&searchLang, "lang", "l", "auto", "language filter: ko, en, auto")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "restrict results to one source filename")
	searchCmd.Flags().StringVar(&searchFileType, "file-type", "", "restrict results to one file type")
	searchCmd.Flags().StringVar(&searchSimilarTo, "similar-to", "", "find chunks similar to this chunk id")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()

	if searchSimilarTo != "" {
		hits, err := searchService.SearchSimilarChunks(ctx, searchSimilarTo, searchTopK)
		if err != nil {
			return fmt.Errorf("similar search failed: %w", err)
		}
		return outputSearchResults(cmd, hits)
	}

	if len(args) == 0 {
		return errors.New("query argument required unless --similar-to is set")
	}
	query := args[0]

	// The flag wins; otherwise a persisted search.mode applies.
	if !cmd.Flags().Changed("mode") && configStore != nil {
		if m := configStore.GetString("search.mode"); m != "" {
			searchMode = m
		}
	}

	opts := domain.SearchOptions{
		Mode:         domain.SearchMode(searchMode),
		TopK:         searchTopK,
		LanguageHint: searchLang,
		MinScore:     searchMinScore,
		Source:       searchSource,
		FileType:     searchFileType,
	}

	hits, err := searchService.Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return outputSearchResults(cmd, hits)
}

func outputSearchResults(cmd *cobra.Command, hits []domain.SearchHit) error {
	if searchJSON {
		return outputSearchJSON(cmd, hits)
	}
	return outputSearchTable(cmd, hits)
}

func outputSearchJSON(cmd *cobra.Command, hits []domain.SearchHit) error {
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, hits []domain.SearchHit) error {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range hits {
		chunk := hits[i].Chunk
		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, chunk.Source, chunk.Index+1, hits[i].Score)
		cmd.Printf("      %s\n", snippet(chunk.Content, 160))
		cmd.Println()
	}

	return nil
}

// snippet collapses whitespace and truncates s to max runes.
func snippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
