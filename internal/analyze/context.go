// Package analyze infers document metadata and topical context from
// raw text: statistics and language, document type and domain,
// structure heuristics, TF-IDF topics, embedding clusters, and
// recurring phrases.
package analyze

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hanmaru-labs/hanrag/internal/core/domain"
	"github.com/hanmaru-labs/hanrag/internal/core/ports/driven"
)

// Chunking defaults for text arriving without stored chunks.
const (
	chunkWords    = 300
	minChunkRunes = 50
)

// Topic and cluster bounds.
const (
	maxClusters         = 5
	topicLabelTerms     = 3
	representativeRunes = 200
)

// Related-concept and indicator bounds.
const (
	relatedWindow        = 10
	relatedMinFreq       = 2
	maxRelatedConcepts   = 8
	indicatorsPerPattern = 2
	maxDomainIndicators  = 10
)

// phraseRe matches two-to-four-word phrases for related concepts.
var phraseRe = regexp.MustCompile(`[가-힣a-zA-Z]+(?:\s+[가-힣a-zA-Z]+){1,3}`)

// domainPatterns tag domain-indicative terms. Slice order fixes the
// indicator order.
var domainPatterns = []struct {
	name     string
	patterns []*regexp.Regexp
}{
	{"technical", compilePatterns(`\b\w*api\w*\b`, `\b\w*system\w*\b`, `\b\w*data\w*\b`)},
	{"business", compilePatterns(`\b\w*business\w*\b`, `\b\w*market\w*\b`, `\b\w*strategy\w*\b`)},
	{"legal", compilePatterns(`\b\w*law\w*\b`, `\b\w*regulation\w*\b`, `\b\w*contract\w*\b`)},
	{"academic", compilePatterns(`\b\w*research\w*\b`, `\b\w*study\w*\b`, `\b\w*analysis\w*\b`)},
}

// ContextExtractor derives document-level topical context. TF-IDF
// topics need no embedder; semantic clusters do, and clustering
// failures degrade to an empty cluster list.
type ContextExtractor struct {
	embedder driven.Embedder
	log      *zap.Logger
}

// NewContextExtractor creates the context extractor.
func NewContextExtractor(embedder driven.Embedder, log *zap.Logger) *ContextExtractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContextExtractor{embedder: embedder, log: log}
}

// Extract builds the context info for text. When no chunks are
// supplied the text is split into word-count pieces first.
func (c *ContextExtractor) Extract(ctx context.Context, text string, chunks []string) domain.ContextInfo {
	working := chunks
	if len(working) == 0 {
		working = splitIntoChunks(text, chunkWords)
	}

	info := domain.ContextInfo{
		MainTopics:       ExtractTopics(working, maxClusters),
		RelatedConcepts:  RelatedConcepts(text),
		DomainIndicators: DomainIndicators(text),
	}

	clusters, err := c.clusterChunks(ctx, working)
	if err != nil {
		c.log.Warn("semantic clustering failed", zap.Error(err))
	} else {
		info.Clusters = clusters
	}
	return info
}

// ExtractTopics labels chunk clusters with their top TF-IDF terms.
// Fewer than two chunks yield no topics.
func ExtractTopics(chunks []string, maxTopics int) []string {
	if len(chunks) < 2 || maxTopics <= 0 {
		return nil
	}

	vectors, terms := tfidfVectors(chunks, tfidfMaxFeatures)
	if len(terms) == 0 {
		return nil
	}

	k := maxTopics
	if len(chunks) < k {
		k = len(chunks)
	}
	_, centroids := kmeans(vectors, k, kmeansMaxIter)

	topics := make([]string, 0, k)
	for _, centroid := range centroids {
		if label := topTerms(centroid, terms, topicLabelTerms); label != "" {
			topics = append(topics, label)
		}
	}
	return topics
}

// topTerms joins the highest-weighted vocabulary terms of a centroid.
func topTerms(centroid []float64, terms []string, n int) string {
	idx := make([]int, len(centroid))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return centroid[idx[a]] > centroid[idx[b]]
	})

	var picked []string
	for _, i := range idx {
		if len(picked) == n || centroid[i] <= 0 {
			break
		}
		picked = append(picked, terms[i])
	}
	return strings.Join(picked, " ")
}

// clusterChunks embeds the chunks and groups them by k-means over the
// embedding space.
func (c *ContextExtractor) clusterChunks(ctx context.Context, chunks []string) ([]domain.SemanticCluster, error) {
	if len(chunks) < 2 {
		return nil, nil
	}

	embedded, err := c.embedder.Embed(ctx, chunks, driven.PrefixPassage)
	if err != nil {
		return nil, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(embedded) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(embedded), len(chunks))
	}

	vectors := make([][]float64, len(embedded))
	for i, v := range embedded {
		vectors[i] = toFloat64(v)
	}

	k := maxClusters
	if len(chunks) < k {
		k = len(chunks)
	}
	assignments, centroids := kmeans(vectors, k, kmeansMaxIter)

	clusters := make([]domain.SemanticCluster, 0, k)
	for clusterID := 0; clusterID < k; clusterID++ {
		var members []int
		for i, a := range assignments {
			if a == clusterID {
				members = append(members, i)
			}
		}
		if len(members) == 0 {
			continue
		}

		bestIdx := members[0]
		bestSim := math.Inf(-1)
		totalSim := 0.0
		for _, i := range members {
			sim := cosine64(vectors[i], centroids[clusterID])
			totalSim += sim
			if sim > bestSim {
				bestSim = sim
				bestIdx = i
			}
		}

		clusters = append(clusters, domain.SemanticCluster{
			ID:             clusterID,
			Size:           len(members),
			Representative: preview(chunks[bestIdx], representativeRunes),
			AvgSimilarity:  totalSim / float64(len(members)),
			ChunkIndices:   members,
		})
	}
	return clusters, nil
}

// RelatedConcepts returns recurring multi-word phrases: the ten most
// frequent with at least two occurrences, capped at eight.
func RelatedConcepts(text string) []string {
	matches := phraseRe.FindAllString(text, -1)

	freq := make(map[string]int, len(matches))
	firstSeen := make(map[string]int, len(matches))
	for i, m := range matches {
		if _, ok := freq[m]; !ok {
			firstSeen[m] = i
		}
		freq[m]++
	}

	phrases := make([]string, 0, len(freq))
	for p := range freq {
		phrases = append(phrases, p)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if freq[phrases[i]] != freq[phrases[j]] {
			return freq[phrases[i]] > freq[phrases[j]]
		}
		return firstSeen[phrases[i]] < firstSeen[phrases[j]]
	})
	if len(phrases) > relatedWindow {
		phrases = phrases[:relatedWindow]
	}

	var concepts []string
	for _, p := range phrases {
		if freq[p] < relatedMinFreq {
			continue
		}
		concepts = append(concepts, p)
		if len(concepts) == maxRelatedConcepts {
			break
		}
	}
	return concepts
}

// DomainIndicators tags domain-indicative terms as "domain:term", two
// unique terms per pattern, capped at ten.
func DomainIndicators(text string) []string {
	textLower := strings.ToLower(text)

	var indicators []string
	for _, dp := range domainPatterns {
		for _, re := range dp.patterns {
			matches := re.FindAllString(textLower, -1)
			seen := make(map[string]struct{}, len(matches))
			unique := 0
			for _, m := range matches {
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				indicators = append(indicators, dp.name+":"+m)
				if len(indicators) == maxDomainIndicators {
					return indicators
				}
				unique++
				if unique == indicatorsPerPattern {
					break
				}
			}
		}
	}
	return indicators
}

// splitIntoChunks batches whitespace-separated words into pieces of
// roughly the given word count, dropping pieces at or under
// minChunkRunes runes.
func splitIntoChunks(text string, words int) []string {
	fields := strings.Fields(text)

	var chunks []string
	for i := 0; i < len(fields); i += words {
		end := i + words
		if end > len(fields) {
			end = len(fields)
		}
		piece := strings.Join(fields[i:end], " ")
		if utf8.RuneCountInString(piece) > minChunkRunes {
			chunks = append(chunks, piece)
		}
	}
	return chunks
}

// preview truncates text to n runes, marking the cut.
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		res[i] = regexp.MustCompile(expr)
	}
	return res
}
