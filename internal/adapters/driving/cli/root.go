package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driving"
)

// version is overwritten at build time via ldflags.
var version = "dev"

// Injected services. Commands guard against nil so a partially wired
// binary still runs the commands it can.
var (
	searchService   driving.SearchService
	ingestService   driving.IngestService
	ontologyService driving.OntologyService
	statsService    driving.StatsService
	configStore     driven.ConfigStore
)

var rootCmd = &cobra.Command{
	Use:   "hanrag",
	Short: "Korean-optimized local RAG backend",
	Long: `hanrag ingests documents into embedded chunks and serves vector,
hybrid, and reranked retrieval tuned for Korean text.

Extracted document ontologies (keywords, metadata, topics) power
keyword search, similar-document lookup, and collection analytics.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

// Services bundles the implementations the CLI commands depend on.
type Services struct {
	Search   driving.SearchService
	Ingest   driving.IngestService
	Ontology driving.OntologyService
	Stats    driving.StatsService
	Config   driven.ConfigStore
}

// SetServices injects service implementations into the CLI commands.
func SetServices(s Services) {
	searchService = s.Search
	ingestService = s.Ingest
	ontologyService = s.Ontology
	statsService = s.Stats
	configStore = s.Config
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. The command context is cancelled on
// SIGINT/SIGTERM so long-running commands shut down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
