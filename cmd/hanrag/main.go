package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hanmaru-labs/hanrag/internal/adapters/driven/ai"
	fileconfig "github.com/hanmaru-labs/hanrag/internal/adapters/driven/config/file"
	storagememory "github.com/hanmaru-labs/hanrag/internal/adapters/driven/storage/memory"
	"github.com/hanmaru-labs/hanrag/internal/adapters/driven/storage/sqlite"
	"github.com/hanmaru-labs/hanrag/internal/adapters/driving/cli"
	"github.com/hanmaru-labs/hanrag/internal/analyze"
	"github.com/hanmaru-labs/hanrag/internal/config"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
	"github.com/hanmaru-labs/hanrag/internal/core/services"
	"github.com/hanmaru-labs/hanrag/internal/keywords"
	"github.com/hanmaru-labs/hanrag/internal/logger"
	"github.com/hanmaru-labs/hanrag/internal/parsers"
	"github.com/hanmaru-labs/hanrag/internal/postprocessors"
)

// version is overwritten at build time via ldflags.
var version = "dev"

func main() {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	// Flags are parsed inside Execute, but the logger has to exist
	// before the adapters are built, so verbosity is pre-scanned.
	verbose := false
	for _, arg := range os.Args[1:] {
		if arg == "--verbose" || arg == "-v" {
			verbose = true
		}
	}

	log, err := logger.New(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	store, err := fileconfig.NewConfigStore("")
	if err != nil {
		log.Warn("config store unavailable, using environment only", zap.Error(err))
		store = nil
	}
	cfg := config.FromStore(store)
	for _, warning := range ai.ValidateConfig(cfg) {
		log.Warn("configuration", zap.String("problem", warning))
	}

	components, err := ai.Init(cfg, log)
	if err != nil {
		log.Fatal("init providers", zap.Error(err))
	}
	defer components.Close()

	registry, err := buildRegistry(cfg)
	if err != nil {
		log.Fatal("open document registry", zap.Error(err))
	}
	defer registry.Close() //nolint:errcheck

	parser := parsers.NewRegistry(log, []driven.ParseStrategy{
		parsers.NewText(),
		parsers.NewTextCatchAll(),
		parsers.NewPDFRows(),
		parsers.NewPDFContent(),
		parsers.NewPDFPlain(),
		parsers.NewDocx(),
	})

	pipeline, err := buildPipeline(cfg)
	if err != nil {
		log.Fatal("build ingestion pipeline", zap.Error(err))
	}

	extractors := buildExtractors(components, log)
	metadata := analyze.NewMetadata(nil, log)
	contextExtractor := analyze.NewContextExtractor(components.Embedder, log)

	searchService := services.NewSearchService(components.Embedder, components.Chunks, services.SearchConfig{
		TopK:           cfg.Search.TopK,
		MinScore:       cfg.Search.MinScore,
		RerankMinScore: cfg.Search.RerankMinScore,
	}, log)
	ingestService := services.NewIngestService(
		parser, pipeline, components.Embedder, components.Chunks, registry, components.Ontology, log)
	ontologyService := services.NewOntologyService(
		extractors, metadata, contextExtractor,
		components.Embedder, components.Ontology, components.Chunks, registry,
		services.OntologyConfig{
			TopK:    cfg.Ontology.MaxKeywords,
			Methods: ontologyMethods(cfg),
		}, log)
	statsService := services.NewStatsService(
		components.Embedder, components.Chunks, registry, components.Generator, ontologyService, log)

	cli.SetServices(cli.Services{
		Search:   searchService,
		Ingest:   ingestService,
		Ontology: ontologyService,
		Stats:    statsService,
		Config:   store,
	})
	cli.SetTUIConfig(&cli.TUIConfig{
		SearchService:   searchService,
		IngestService:   ingestService,
		OntologyService: ontologyService,
		StatsService:    statsService,
	})
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildRegistry opens the document registry. The literal path
// ":memory:" selects the ephemeral in-memory registry.
func buildRegistry(cfg *config.Config) (driven.DocumentRegistry, error) {
	if cfg.SQLite.Path == ":memory:" {
		return storagememory.NewRegistry(), nil
	}
	return sqlite.NewRegistry(cfg.SQLite.Path)
}

// buildPipeline assembles the post-processing stages through the stage
// registry so chunker tunables flow in from config.
func buildPipeline(cfg *config.Config) (driven.PostProcessorPipeline, error) {
	reg := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(reg)

	cleaner, err := reg.Build("cleaner", nil)
	if err != nil {
		return nil, err
	}

	chunkerCfg := map[string]any{}
	if cfg.Chunker.ChunkSize > 0 {
		chunkerCfg["chunk_size"] = cfg.Chunker.ChunkSize
	}
	if cfg.Chunker.ChunkOverlap > 0 {
		chunkerCfg["overlap"] = cfg.Chunker.ChunkOverlap
	}
	chunker, err := reg.Build("chunker", chunkerCfg)
	if err != nil {
		return nil, err
	}

	return postprocessors.NewPipeline(cleaner, chunker), nil
}

// buildExtractors registers the keyword strategies the configuration
// enables. The embedding and statistical strategies are always on; the
// LLM strategy joins when a generator exists.
func buildExtractors(components *ai.Components, log *zap.Logger) *keywords.Registry {
	extractors := []driven.KeywordExtractor{
		keywords.NewEmbedding(components.Embedder),
		keywords.NewStatistical(0),
	}
	if components.Generator != nil {
		extractors = append(extractors, keywords.NewLLM(components.Generator, log))
	}
	return keywords.NewRegistry(extractors...)
}

// ontologyMethods resolves the default strategy set for extraction.
// An explicit ontology.methods wins; otherwise use_llm widens the
// built-in default.
func ontologyMethods(cfg *config.Config) []string {
	if len(cfg.Ontology.Methods) > 0 {
		return cfg.Ontology.Methods
	}
	if cfg.Ontology.UseLLM {
		return []string{"embedding", "statistical", "llm"}
	}
	return nil
}
