package relevance

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/crawlab-team/bm25"

	"github.com/haawall/haawall-go/internal/knowledge"
	"github.com/haawall/haawall-go/internal/logger"
)

// BM25Ranker scores knowledge fragments against a query with BM25 Okapi.
// It is an alternative to the embedding ranker that needs no provider call.
type BM25Ranker struct {
	okapi     *bm25.BM25Okapi
	fragments []knowledge.Fragment
	log       *logger.Logger
	mu        sync.RWMutex
}

// NewBM25Ranker creates an empty ranker; call Index before Rank.
func NewBM25Ranker(log *logger.Logger) *BM25Ranker {
	return &BM25Ranker{log: log.WithModule("relevance")}
}

// Index (re)builds the BM25 corpus from the fragments' "key: value"
// projections.
func (r *BM25Ranker) Index(fragments []knowledge.Fragment) error {
	if len(fragments) == 0 {
		r.mu.Lock()
		r.okapi = nil
		r.fragments = nil
		r.mu.Unlock()
		return nil
	}

	corpus := make([]string, len(fragments))
	for i, fragment := range fragments {
		corpus[i] = fragment.Key + ": " + fragment.Value
	}

	okapi, err := bm25.NewBM25Okapi(corpus, tokenize, 1.5, 0.75, nil)
	if err != nil {
		return fmt.Errorf("failed to build BM25 index: %w", err)
	}

	r.mu.Lock()
	r.okapi = okapi
	r.fragments = append([]knowledge.Fragment(nil), fragments...)
	r.mu.Unlock()

	r.log.Debug("BM25 index built", "fragments", len(fragments))
	return nil
}

// Rank returns up to limit fragments with positive BM25 scores, best first.
// Ties keep the original fragment order.
func (r *BM25Ranker) Rank(query string, limit int) []knowledge.Fragment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.okapi == nil || limit <= 0 {
		return nil
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	scores, err := r.okapi.GetScores(tokens)
	if err != nil {
		r.log.WithError(err).Warn("BM25 scoring failed")
		return nil
	}

	type scored struct {
		index int
		score float64
	}
	var kept []scored
	for i, score := range scores {
		if score > 0 && i < len(r.fragments) {
			kept = append(kept, scored{index: i, score: score})
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
		result[i] = r.fragments[s.index]
	}
	return result
}

// tokenize splits text into lowercased letter/digit words. Works for both
// Latin and Arabic-script text since both use space-separated words.
func tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var word strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			word.WriteRune(r)
			continue
		}
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	if word.Len() > 0 {
		tokens = append(tokens, word.String())
	}
	return tokens
}
