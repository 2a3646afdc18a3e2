package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var (
	ontologyMethods []string
	ontologyForce   bool
	ontologyAll     bool
	ontologyTopK    int
	ontologyLimit   int
	ontologyYes     bool
	ontologyJSON    bool
)

var ontologyCmd = &cobra.Command{
	Use:   "ontology",
	Short: "Extract and query document ontologies",
	Long: `Extracts per-document ontologies (keywords, metadata, topics) and
queries the resulting collections.`,
}

var ontologyExtractCmd = &cobra.Command{
	Use:   "extract [doc-id]",
	Short: "Extract a document's ontology",
	Long: `Extracts keywords, metadata, and context from a document's stored
chunks and persists the result, replacing any earlier extraction.`,
	Args: cobra.ExactArgs(1),
	RunE: runOntologyExtract,
}

var ontologyBatchCmd = &cobra.Command{
	Use:   "batch [doc-id...]",
	Short: "Extract ontologies for many documents",
	Long: `Extracts ontologies for the given documents, or for every registered
document with --all. Documents that already have an ontology are
skipped unless --force is set. Per-document failures do not stop the
batch.`,
	Args: cobra.ArbitraryArgs,
	RunE: runOntologyBatch,
}

var ontologyShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show a document's stored ontology",
	Args:  cobra.ExactArgs(1),
	RunE:  runOntologyShow,
}

var ontologyKeywordsCmd = &cobra.Command{
	Use:   "keywords [term]",
	Short: "Search keywords semantically",
	Long: `Searches stored keywords by embedding similarity, so near-synonyms
match without exact spelling.`,
	Args: cobra.ExactArgs(1),
	RunE: runOntologyKeywords,
}

var ontologySimilarCmd = &cobra.Command{
	Use:   "similar [doc-id]",
	Short: "Find documents similar to a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runOntologySimilar,
}

var ontologyTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the most frequent keywords",
	RunE:  runOntologyTop,
}

var ontologyDomainCmd = &cobra.Command{
	Use:   "domain [name]",
	Short: "List documents in an estimated domain",
	Args:  cobra.ExactArgs(1),
	RunE:  runOntologyDomain,
}

var ontologyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ontology collection statistics",
	RunE:  runOntologyStats,
}

var ontologyDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document's ontology",
	Args:  cobra.ExactArgs(1),
	RunE:  runOntologyDelete,
}

var ontologyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all ontology records",
	RunE:  runOntologyClear,
}

func init() {
	ontologyCmd.PersistentFlags().BoolVar(&ontologyJSON, "json", false, "output as JSON")

	ontologyExtractCmd.Flags().StringSliceVar(&ontologyMethods, "methods", nil, "keyword methods: embedding, llm, statistical")
	ontologyBatchCmd.Flags().StringSliceVar(&ontologyMethods, "methods", nil, "keyword methods: embedding, llm, statistical")
	ontologyBatchCmd.Flags().BoolVar(&ontologyAll, "all", false, "process every registered document")
	ontologyBatchCmd.Flags().BoolVarP(&ontologyForce, "force", "f", false, "re-extract documents that already have an ontology")
	ontologyKeywordsCmd.Flags().IntVarP(&ontologyTopK, "top-k", "n", 10, "maximum number of matches")
	ontologySimilarCmd.Flags().IntVarP(&ontologyTopK, "top-k", "n", 10, "maximum number of documents")
	ontologyDomainCmd.Flags().IntVarP(&ontologyTopK, "top-k", "n", 10, "maximum number of documents")
	ontologyTopCmd.Flags().IntVar(&ontologyLimit, "limit", 10, "maximum number of keywords")
	ontologyClearCmd.Flags().BoolVarP(&ontologyYes, "yes", "y", false, "skip the confirmation check")

	ontologyCmd.AddCommand(ontologyExtractCmd)
	ontologyCmd.AddCommand(ontologyBatchCmd)
	ontologyCmd.AddCommand(ontologyShowCmd)
	ontologyCmd.AddCommand(ontologyKeywordsCmd)
	ontologyCmd.AddCommand(ontologySimilarCmd)
	ontologyCmd.AddCommand(ontologyTopCmd)
	ontologyCmd.AddCommand(ontologyDomainCmd)
	ontologyCmd.AddCommand(ontologyStatsCmd)
	ontologyCmd.AddCommand(ontologyDeleteCmd)
	ontologyCmd.AddCommand(ontologyClearCmd)
	rootCmd.AddCommand(ontologyCmd)
}

func runOntologyExtract(cmd *cobra.Command, args []string) error {
	if ontologyService == nil {
		return errors.New("ontology service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	res, err := ontologyService.ExtractAndStore(ctx, docID, ontologyMethods)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if ontologyJSON {
		return outputJSON(cmd, res)
	}

	cmd.Printf("Ontology for %s (%s)\n\n", res.Source, res.DocID)
	cmd.Printf("  Type:     %s\n", res.Metadata.DocumentType)
	cmd.Printf("  Domain:   %s\n", res.Metadata.EstimatedDomain)
	cmd.Printf("  Language: %s\n", res.Metadata.Language)
	cmd.Printf("  Took:     %s\n", res.Stats.TotalTime.Round(time.Millisecond))

	if len(res.Keywords) > 0 {
		cmd.Println("\n  Keywords:")
		for _, kw := range res.Keywords {
			cmd.Printf("    %s (%.2f, %s, %s)\n", kw.Term, kw.Score, kw.Category, kw.Method)
		}
	}
	if len(res.Context.MainTopics) > 0 {
		cmd.Println("\n  Topics:")
		for _, topic := range res.Context.MainTopics {
			cmd.Printf("    %s\n", topic)
		}
	}
	if len(res.Metadata.Entities) > 0 {
		cmd.Println("\n  Entities:")
		for _, e := range res.Metadata.Entities {
			cmd.Printf("    %s (%s)\n", e.Text, e.Label)
		}
	}

	return nil
}

func runOntologyBatch(cmd *cobra.Command, args []string) error {
	if ontologyService == nil {
		return errors.New("ontology service not configured")
	}

	ctx := context.Background()

	docIDs := args
	if ontologyAll {
		if ingestService == nil {
			return errors.New("ingest service not configured")
		}
		docs, err := ingestService.ListDocuments(ctx)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		docIDs = make([]string, len(docs))
		for i := range docs {
			docIDs[i] = docs[i].ID
		}
	}
	if len(docIDs) == 0 {
		return errors.New("no documents to process; pass doc ids or --all")
	}

	cmd.Printf("Extracting ontologies for %d documents...\n", len(docIDs))

	res, err := ontologyService.ExtractBatch(ctx, docIDs, ontologyMethods, ontologyForce)
	if err != nil {
		return fmt.Errorf("batch extraction failed: %w", err)
	}

	cmd.Printf("Done in %s: %d extracted, %d skipped, %d failed.\n",
		res.ProcessingTime.Round(time.Millisecond), res.Successful, res.Skipped, res.Failed)
	for _, id := range res.FailedDocIDs {
		cmd.Printf("  FAILED %s\n", id)
	}

	return nil
}

func runOntologyShow(cmd *cobra.Command, args []string) error {
	if ontologyService == nil {
		return errors.New("ontology service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	rec, err := ontologyService.GetDocumentOntology(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get ontology: %w", err)
	}

	if ontologyJSON {
		return outputJSON(cmd, rec)
	}

	cmd.Printf("Ontology: %s\n\n", rec.DocID)
	cmd.Printf("  Source:    %s\n", rec.Source)
	cmd.Printf("  Type:      %s\n", rec.DocumentType)
	cmd.Printf("  Domain:    %s\n", rec.EstimatedDomain)
	cmd.Printf("  Language:  %s\n", rec.Language)
	cmd.Printf("  Extracted: %s\n", rec.ExtractedAt.Format("2006-01-02 15:04:05"))

	if len(rec.TopKeywords) > 0 {
		cmd.Println("\n  Keywords:")
		for _, kw := range rec.TopKeywords {
			cmd.Printf("    %s (%.2f, %s)\n", kw.Term, kw.Score, kw.Category)
		}
	}
	if len(rec.MainTopics) > 0 {
		cmd.Println("\n  Topics:")
		for _, topic := range rec.MainTopics {
			cmd.Printf("    %s\n", topic)
		}
	}
	if len(rec.Entities) > 0 {
		cmd.Println("\n  Entities:")
		for _, e := range rec.Entities {
			cmd.Printf("    %s (%s)\n", e.Text, e.Label)
		}
	}

	return nil
}

func runOntologyKeywords(cmd *cobra.Command, args []string) error {
	if ontologyService == nil {
		return errors.New("ontology service not configured")
	}

	term := args[0]
	ctx := context.Background()

	hits, err := ontologyService.SearchByKeyword(ctx, term, ontologyTopK)
	if err != nil {
		return fmt.Errorf("keyword search failed: %w", err)
	}

	if ontologyJSON {
		return outputJSON(cmd, hits)
	}

	if len(hits) == 0 {
		cmd.Println("No matching keywords.")
		return nil
	}

	cmd.Println("Matches:")
	cmd.Println()
	for i := range hits {
		rec := hits[i].Record
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, rec.Term, hits[i].Score)
		cmd.Printf("      %s, %s\n", rec.Source, rec.DocID)
	}

	return nil
}

func runOntologySimilar(cmd *cobra.Command, args []string) error {
	if ontologyService == nil {
		return errors.New("ontology service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	hits, err := ontologyService.GetSimilarDocuments(ctx, docID, ontologyTopK)
	if err != nil {
		return fmt.Errorf("similar documents lookup failed: %w", err)
	}

	if ontologyJSON {
		return outputJSON(cmd, hits)
	}

	if len(hits) == 0 {
		cmd.Println("No similar documents found.")
		return nil
	}

	cmd.Println("Similar documents:")
	cmd.Println()
	for i := range hits {
		rec := hits[i].Record
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, rec.Source, hits[i].Score)
		cmd.Printf("      %s, domain %s\n", rec.DocID, rec.EstimatedDomain)
	}

	return nil
}

func runOntologyTop(cmd *cobra.Command, _ []string) error {
	if ontologyService == nil {
		return errors.New("ontology service not configured")
	}

	ctx := context.Background()

	rows, err := ontologyService.GetTopKeywords(ctx, ontologyLimit)
	if err != nil {
		return fmt.Errorf("top keywords failed: %w", err)
	}

	if ontologyJSON {
		return outputJSON(cmd, rows)
	}

	if len(rows) == 0 {
		cmd.Println("No keywords extracted yet.")
		return nil
	}

	cmd.Println("Top keywords:")
	cmd.Println()
	for i := range rows {
		cmd.Printf("  [%d] %s: %d docs, %d occurrences, avg score %.2f\n",
			i+1, rows[i].Term, rows[i].DocumentCount, rows[i].TotalFrequency, rows[i].AvgScore)
	}

	return nil
}

func runOntologyDomain(cmd *cobra.Command, args []string) error {
	if ontologyService == nil {
		return errors.New("ontology service not configured")
	}

	name := args[0]
	ctx := context.Background()

	recs, err := ontologyService.SearchByDomain(ctx, name, ontologyTopK)
	if err != nil {
		return fmt.Errorf("domain lookup failed: %w", err)
	}

	if ontologyJSON {
		return outputJSON(cmd, recs)
	}

	if len(recs) == 0 {
		cmd.Printf("No documents in domain %s.\n", name)
		return nil
	}

	cmd.Printf("Documents in domain %s:\n\n", name)
	for i := range recs {
		cmd.Printf("  [%d] %s (%s)\n", i+1, recs[i].Source, recs[i].DocID)
	}

	return nil
}

func runOntologyStats(cmd *cobra.Command, _ []string) error {
	if ontologyService == nil {
		return errors.New("ontology service not configured")
	}

	ctx := context.Background()

	st, err := ontologyService.Statistics(ctx)
	if err != nil {
		return fmt.Errorf("statistics failed: %w", err)
	}

	if ontologyJSON {
		return outputJSON(cmd, st)
	}

	cmd.Println("Ontology statistics:")
	cmd.Println()
	cmd.Printf("  Documents: %d\n", st.DocumentRecords)
	cmd.Printf("  Keywords:  %d\n", st.KeywordRecords)

	if len(st.ByDomain) > 0 {
		cmd.Println("\n  By domain:")
		for _, k := range sortedKeys(st.ByDomain) {
			cmd.Printf("    %s: %d\n", k, st.ByDomain[k])
		}
	}
	if len(st.ByLanguage) > 0 {
		cmd.Println("\n  By language:")
		for _, k := range sortedKeys(st.ByLanguage) {
			cmd.Printf("    %s: %d\n", k, st.ByLanguage[k])
		}
	}
	if len(st.ByCategory) > 0 {
		cmd.Println("\n  By category:")
		for _, k := range sortedKeys(st.ByCategory) {
			cmd.Printf("    %s: %d\n", k, st.ByCategory[k])
		}
	}

	return nil
}

func runOntologyDelete(cmd *cobra.Command, args []string) error {
	if ontologyService == nil {
		return errors.New("ontology service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	if err := ontologyService.DeleteDocumentOntology(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete ontology: %w", err)
	}

	cmd.Printf("Ontology for %s deleted.\n", docID)
	return nil
}

func runOntologyClear(cmd *cobra.Command, _ []string) error {
	if ontologyService == nil {
		return errors.New("ontology service not configured")
	}

	if !ontologyYes {
		return errors.New("clearing drops every ontology record; re-run with --yes to confirm")
	}

	ctx := context.Background()

	if err := ontologyService.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear ontologies: %w", err)
	}

	cmd.Println("All ontology records cleared.")
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
