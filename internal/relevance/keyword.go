// Package relevance decides which knowledge categories and fragments apply
// to a query: keyword trigger matching against the rule set, plus optional
// embedding-similarity and BM25 ranking over candidate fragments.
package relevance

import (
	"strings"

	"github.com/haawall/haawall-go/internal/knowledge"
)

// KeywordSelector maps query text to knowledge categories via trigger terms.
type KeywordSelector struct {
	rules *knowledge.Rules
}

// NewKeywordSelector creates a selector over the given rule set.
func NewKeywordSelector(rules *knowledge.Rules) *KeywordSelector {
	return &KeywordSelector{rules: rules}
}

// SelectCategories returns the union of categories whose trigger terms
// appear as substrings of the lowercased query, in rule order. When no
// trigger matches but the query mentions the institution generically, the
// default category is returned alone. Otherwise the result is empty and
// the prompt stays minimal.
func (s *KeywordSelector) SelectCategories(query string) []string {
	lowered := strings.ToLower(query)
	rs := s.rules.Get()

	var categories []string
	seen := make(map[string]bool)
	for _, rule := range rs.Rules {
		if seen[rule.Category] {
			continue
		}
		for _, trigger := range rule.Triggers {
			if strings.Contains(lowered, strings.ToLower(trigger)) {
				categories = append(categories, rule.Category)
				seen[rule.Category] = true
				break
			}
		}
	}

	if len(categories) > 0 {
		return categories
	}

	for _, term := range rs.GenericTerms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			return []string{rs.DefaultCategory}
		}
	}

	return nil
}
