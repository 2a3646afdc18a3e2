package analyze

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tfidfMaxFeatures caps the TF-IDF vocabulary size.
const tfidfMaxFeatures = 100

// tfidfTokenRe matches vocabulary tokens: two or more word characters
// in any script.
var tfidfTokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// englishStopWords are dropped from the TF-IDF vocabulary. Korean
// function words need no list of their own because particles attach to
// the preceding noun and disappear with it.
var englishStopWords = makeStopSet(
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for",
	"from", "has", "have", "in", "is", "it", "its", "of", "on", "or",
	"that", "the", "this", "to", "was", "were", "will", "with",
)

func makeStopSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// tfidfVectors builds L2-normalised TF-IDF vectors for the chunks over
// a shared vocabulary of at most maxFeatures terms, selected by corpus
// frequency. The returned terms are the vocabulary in column order.
func tfidfVectors(chunks []string, maxFeatures int) ([][]float64, []string) {
	counts := make([]map[string]int, len(chunks))
	corpus := make(map[string]int)
	df := make(map[string]int)
	for i, chunk := range chunks {
		counts[i] = make(map[string]int)
		for _, tok := range tfidfTokenRe.FindAllString(strings.ToLower(chunk), -1) {
			if _, stop := englishStopWords[tok]; stop {
				continue
			}
			if counts[i][tok] == 0 {
				df[tok]++
			}
			counts[i][tok]++
			corpus[tok]++
		}
	}
	if len(corpus) == 0 {
		return make([][]float64, len(chunks)), nil
	}

	// Keep the most frequent terms, alphabetical within equal counts,
	// then order the vocabulary alphabetically for stable columns.
	terms := make([]string, 0, len(corpus))
	for t := range corpus {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if corpus[terms[i]] != corpus[terms[j]] {
			return corpus[terms[i]] > corpus[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(chunks))
	idf := make([]float64, len(terms))
	for j, t := range terms {
		idf[j] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	vectors := make([][]float64, len(chunks))
	for i := range chunks {
		vec := make([]float64, len(terms))
		var norm float64
		for j, t := range terms {
			v := float64(counts[i][t]) * idf[j]
			vec[j] = v
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range vec {
				vec[j] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors, terms
}
