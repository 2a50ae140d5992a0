package relevance

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/haawall/haawall-go/internal/knowledge"
	"github.com/haawall/haawall-go/internal/logger"
	"github.com/haawall/haawall-go/internal/metrics"
)

// Embedder produces fixed-dimension vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// stopWords are filtered from the query before embedding; function words
// add noise to short-query vectors.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "do": true, "does": true,
	"what": true, "which": true, "who": true, "how": true, "when": true,
	"where": true, "why": true, "can": true, "could": true, "i": true,
	"you": true, "my": true, "me": true, "of": true, "for": true,
	"to": true, "in": true, "on": true, "at": true, "about": true,
	"and": true, "or": true, "please": true, "tell": true,
	// Kurdish Sorani function words
	"لە": true, "بۆ": true, "و": true, "کە": true, "ئایا": true,
	"چی": true, "چۆن": true, "من": true, "تۆ": true,
}

// SemanticRanker orders knowledge fragments by embedding similarity to the
// query. Embedding failures degrade to zero similarity instead of erroring.
type SemanticRanker struct {
	embedder Embedder
	cache    *EmbedCache
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewSemanticRanker creates a ranker. cache may be nil to disable caching.
func NewSemanticRanker(embedder Embedder, cache *EmbedCache, log *logger.Logger, m *metrics.Metrics) *SemanticRanker {
	return &SemanticRanker{
		embedder: embedder,
		cache:    cache,
		log:      log.WithModule("relevance"),
		metrics:  m,
	}
}

// Rank scores every fragment's "key: value" projection against the query
// and returns those at or above minSimilarity, best first, capped at limit.
// Ties keep the original fragment order, so the same inputs always produce
// the same ranking.
func (r *SemanticRanker) Rank(ctx context.Context, query string, fragments []knowledge.Fragment, minSimilarity float64, limit int) []knowledge.Fragment {
	if len(fragments) == 0 || limit <= 0 {
		return nil
	}

	queryVec := r.embed(ctx, filterStopWords(query))
	if len(queryVec) == 0 {
		return nil
	}

	type scored struct {
		fragment knowledge.Fragment
		score    float64
		index    int
	}

	var kept []scored
	for i, fragment := range fragments {
		vec := r.embed(ctx, fragment.Key+": "+fragment.Value)
		score := cosineSimilarity(queryVec, vec)
		if score >= minSimilarity {
			kept = append(kept, scored{fragment: fragment, score: score, index: i})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].index < kept[j].index
	})

	if len(kept) > limit {
		kept = kept[:limit]
	}

	result := make([]knowledge.Fragment, len(kept))
	for i, s := range kept {
		result[i] = s.fragment
	}
	return result
}

// embed fetches a vector through the cache. Any failure yields nil, which
// scores as zero similarity downstream.
func (r *SemanticRanker) embed(ctx context.Context, text string) []float32 {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if r.cache != nil {
		if vec, ok := r.cache.Get(text); ok {
			r.metrics.RecordCacheHit("embedding")
			return vec
		}
		r.metrics.RecordCacheMiss("embedding")
	}

	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		r.metrics.RecordEmbedding("error")
		r.log.WithError(err).Warn("embedding failed, treating as zero similarity")
		return nil
	}
	r.metrics.RecordEmbedding("success")

	if r.cache != nil {
		r.cache.Add(text, vec)
	}
	return vec
}

// filterStopWords removes function words from the query.
func filterStopWords(query string) string {
	words := strings.Fields(query)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		if !stopWords[strings.ToLower(word)] {
			kept = append(kept, word)
		}
	}
	if len(kept) == 0 {
		return query
	}
	return strings.Join(kept, " ")
}

// cosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched or empty vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
