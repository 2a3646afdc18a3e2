package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driving"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Search tuning defaults.
const (
	// DefaultTopK is the result count when the caller passes none.
	DefaultTopK = 5

	// DefaultMinScore is the vector and hybrid score floor.
	DefaultMinScore = 0.3

	// DefaultRerankMinScore is the wider candidate floor for rerank mode.
	// Earlier deployments used 0.2; the lower floor keeps more candidates
	// alive for rescoring.
	DefaultRerankMinScore = 0.15
)

// Boost weights for hybrid and rerank scoring.
const (
	// keywordBoost is added per distinct query token found in the content.
	keywordBoost = 0.05

	// koreanMatchBoost rewards Korean queries hitting Korean-flagged chunks.
	koreanMatchBoost = 0.10

	// exactKeywordBoost is the rerank reward for a case-sensitive token match.
	exactKeywordBoost = 0.10

	// partialKeywordBoost is the rerank reward for a match found only
	// case-insensitively.
	partialKeywordBoost = 0.05

	// englishMatchBoost rewards non-Korean queries hitting English-flagged
	// chunks.
	englishMatchBoost = 0.05
)

// Content length bands for the rerank length bonus, in runes.
const (
	idealLengthMin = 100
	idealLengthMax = 1000
	okLengthMin    = 50
	okLengthMax    = 2000

	idealLengthBonus = 0.05
	okLengthBonus    = 0.02
)

// SearchConfig tunes the retrieval engine. Zero values take defaults.
type SearchConfig struct {
	// TopK is the default result count when SearchOptions carries none.
	TopK int

	// MinScore is the score floor for vector and hybrid searches.
	MinScore float64

	// RerankMinScore is the candidate-pool floor for rerank searches.
	RerankMinScore float64
}

// SearchService retrieves chunks by embedding similarity with optional
// lexical and language boosting.
type SearchService struct {
	embedder driven.Embedder
	chunks   driven.ChunkIndex
	cfg      SearchConfig
	log      *zap.Logger
}

// NewSearchService creates the retrieval service.
func NewSearchService(embedder driven.Embedder, chunks driven.ChunkIndex, cfg SearchConfig, log *zap.Logger) *SearchService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = DefaultMinScore
	}
	if cfg.RerankMinScore <= 0 {
		cfg.RerankMinScore = DefaultRerankMinScore
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SearchService{
		embedder: embedder,
		chunks:   chunks,
		cfg:      cfg,
		log:      log,
	}
}

// Search embeds the query and ranks results according to opts.Mode.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchHit{}, nil
	}
	if opts.TopK <= 0 {
		opts.TopK = s.cfg.TopK
	}

	vectors, err := s.embedder.Embed(ctx, []string{query}, driven.PrefixQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: %w", domain.ErrEmbeddingUnavailable)
	}
	vector := vectors[0]

	s.log.Debug("search",
		zap.String("mode", string(opts.Mode)),
		zap.Int("top_k", opts.TopK),
		zap.String("language_hint", opts.LanguageHint))

	var hits []domain.SearchHit
	switch opts.Mode {
	case "", domain.SearchModeVector:
		hits, err = s.vectorSearch(ctx, vector, opts)
	case domain.SearchModeHybrid:
		hits, err = s.hybridSearch(ctx, query, vector, opts)
	case domain.SearchModeRerank:
		hits, err = s.rerank(ctx, query, vector, opts)
	default:
		return nil, fmt.Errorf("search mode %q: %w", opts.Mode, domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []domain.SearchHit{}
	}
	return hits, nil
}

// SearchSimilarChunks returns the chunks nearest to a stored chunk,
// excluding the chunk itself. No score floor applies.
func (s *SearchService) SearchSimilarChunks(ctx context.Context, chunkID string, topK int) ([]domain.SearchHit, error) {
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	point, err := s.chunks.Retrieve(ctx, chunkID)
	if err != nil {
		return nil, fmt.Errorf("retrieve chunk %s: %w", chunkID, err)
	}
	hits, err := s.chunks.Search(ctx, point.Vector, driven.ChunkQuery{
		Filter: driven.ChunkFilter{ExcludeIDs: []string{chunkID}},
		Limit:  topK,
	})
	if err != nil {
		return nil, fmt.Errorf("similar chunks: %w", err)
	}
	if hits == nil {
		hits = []domain.SearchHit{}
	}
	return hits, nil
}

// vectorSearch fetches twice the requested hits above the score floor and
// keeps the best topK.
func (s *SearchService) vectorSearch(ctx context.Context, vector []float32, opts domain.SearchOptions) ([]domain.SearchHit, error) {
	hits, err := s.chunks.Search(ctx, vector, driven.ChunkQuery{
		Filter:         buildFilter(opts),
		Limit:          opts.TopK * 2,
		ScoreThreshold: s.scoreFloor(opts, s.cfg.MinScore),
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return topN(hits, opts.TopK), nil
}

// hybridSearch boosts vector candidates with lexical and language signals.
// When the wider candidate fetch fails it degrades to a plain vector search.
func (s *SearchService) hybridSearch(ctx context.Context, query string, vector []float32, opts domain.SearchOptions) ([]domain.SearchHit, error) {
	hits, err := s.chunks.Search(ctx, vector, driven.ChunkQuery{
		Filter:         buildFilter(opts),
		Limit:          opts.TopK * 2,
		ScoreThreshold: s.scoreFloor(opts, s.cfg.MinScore),
	})
	if err != nil {
		s.log.Warn("hybrid candidate fetch failed, degrading to vector search", zap.Error(err))
		return s.vectorSearch(ctx, vector, opts)
	}

	tokens := queryTokens(query)
	koreanQuery := domain.HasHangul(query)
	for i := range hits {
		content := strings.ToLower(hits[i].Chunk.Content)
		boost := 0.0
		for _, tok := range tokens {
			if strings.Contains(content, strings.ToLower(tok)) {
				boost += keywordBoost
			}
		}
		if koreanQuery && hits[i].Chunk.HasKorean {
			boost += koreanMatchBoost
		}
		hits[i].Score = clampScore(hits[i].Score + boost)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return topN(hits, opts.TopK), nil
}

// rerank rescores a three-times-wider candidate pool with keyword,
// language, and length signals.
func (s *SearchService) rerank(ctx context.Context, query string, vector []float32, opts domain.SearchOptions) ([]domain.SearchHit, error) {
	hits, err := s.chunks.Search(ctx, vector, driven.ChunkQuery{
		Filter:         buildFilter(opts),
		Limit:          opts.TopK * 3,
		ScoreThreshold: s.scoreFloor(opts, s.cfg.RerankMinScore),
	})
	if err != nil {
		return nil, fmt.Errorf("rerank candidates: %w", err)
	}

	tokens := queryTokens(query)
	koreanQuery := domain.HasHangul(query)
	for i := range hits {
		hits[i].Score = clampScore(hits[i].Score + rerankBoost(hits[i].Chunk, tokens, koreanQuery))
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return topN(hits, opts.TopK), nil
}

// rerankBoost sums the keyword, language, and length bonuses for one chunk.
func rerankBoost(chunk domain.Chunk, tokens []string, koreanQuery bool) float64 {
	content := chunk.Content
	contentLower := strings.ToLower(content)

	boost := 0.0
	for _, tok := range tokens {
		switch {
		case strings.Contains(content, tok):
			boost += exactKeywordBoost
		case strings.Contains(contentLower, strings.ToLower(tok)):
			boost += partialKeywordBoost
		}
	}

	if koreanQuery && chunk.HasKorean {
		boost += koreanMatchBoost
	} else if !koreanQuery && chunk.HasEnglish {
		boost += englishMatchBoost
	}

	runes := utf8.RuneCountInString(content)
	switch {
	case runes >= idealLengthMin && runes <= idealLengthMax:
		boost += idealLengthBonus
	case runes >= okLengthMin && runes <= okLengthMax:
		boost += okLengthBonus
	}
	return boost
}

// scoreFloor picks the caller's floor when set, the mode default otherwise.
func (s *SearchService) scoreFloor(opts domain.SearchOptions, def float64) float64 {
	if opts.MinScore > 0 {
		return opts.MinScore
	}
	return def
}

// buildFilter translates search options into a chunk filter.
func buildFilter(opts domain.SearchOptions) driven.ChunkFilter {
	f := driven.ChunkFilter{
		Source:   opts.Source,
		FileType: opts.FileType,
		DateFrom: opts.DateFrom,
	}
	switch opts.LanguageHint {
	case domain.LangKorean:
		t := true
		f.HasKorean = &t
	case domain.LangEnglish:
		t := true
		f.HasEnglish = &t
	}
	return f
}

// queryTokens splits a query into distinct match tokens. Tokens keep
// their original case so rerank can prefer exact matches; deduplication
// is case-insensitive, first occurrence wins. Single-rune tokens survive
// only when they contain Hangul, where one syllable already carries
// meaning.
func queryTokens(query string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, tok := range strings.Fields(query) {
		if utf8.RuneCountInString(tok) < 2 && !domain.HasHangul(tok) {
			continue
		}
		key := strings.ToLower(tok)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

// clampScore caps boosted scores at 1.0.
func clampScore(score float64) float64 {
	if score > 1 {
		return 1
	}
	return score
}

// topN truncates hits to at most n entries.
func topN(hits []domain.SearchHit, n int) []domain.SearchHit {
	if len(hits) > n {
		hits = hits[:n]
	}
	return hits
}
