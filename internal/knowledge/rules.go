package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	apperrors "github.com/haawall/haawall-go/internal/errors"
)

// Rule maps trigger terms to one knowledge category.
type Rule struct {
	Category string   `yaml:"category" json:"category"`
	Triggers []string `yaml:"triggers" json:"triggers"`
}

// RuleSet is the trigger-rule configuration file contents.
type RuleSet struct {
	DefaultCategory string   `yaml:"default_category" json:"default_category"`
	GenericTerms    []string `yaml:"generic_terms" json:"generic_terms"`
	Rules           []Rule   `yaml:"rules" json:"rules"`
}

// Validate checks schema constraints: a default category, no duplicate
// category names, and at least one trigger per rule.
func (rs *RuleSet) Validate() error {
	if rs.DefaultCategory == "" {
		return &apperrors.ValidationError{Field: "default_category", Message: "must not be empty"}
	}

	seen := make(map[string]bool, len(rs.Rules))
	for _, rule := range rs.Rules {
		if rule.Category == "" {
			return &apperrors.ValidationError{Field: "rules", Message: "rule category must not be empty"}
		}
		if seen[rule.Category] {
			return &apperrors.ValidationError{
				Field:   "rules",
				Message: fmt.Sprintf("duplicate rule category %q", rule.Category),
			}
		}
		seen[rule.Category] = true
		if len(rule.Triggers) == 0 {
			return &apperrors.ValidationError{
				Field:   "rules",
				Message: fmt.Sprintf("rule %q has no triggers", rule.Category),
			}
		}
		for _, trigger := range rule.Triggers {
			if strings.TrimSpace(trigger) == "" {
				return &apperrors.ValidationError{
					Field:   "rules",
					Message: fmt.Sprintf("rule %q has an empty trigger", rule.Category),
				}
			}
		}
	}

	return nil
}

// Rules manages the trigger-rule file: hot-reloadable reads through an
// atomic pointer, mutations written back in full.
type Rules struct {
	path    string
	current atomic.Pointer[RuleSet]
	mu      sync.Mutex // serializes mutations and file writes
}

// LoadRules reads and validates the rule file at path. A missing file
// yields an empty rule set with a default category so the service can
// start before any rules are configured.
func LoadRules(path string) (*Rules, error) {
	r := &Rules{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.current.Store(&RuleSet{DefaultCategory: "general"})
			return r, nil
		}
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule file: %w", err)
	}

	r.current.Store(&rs)
	return r, nil
}

// Get returns the current rule set. Callers must not mutate it.
func (r *Rules) Get() *RuleSet {
	return r.current.Load()
}

// Reload re-reads the rule file, replacing the in-memory set on success.
func (r *Rules) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to read rule file: %w", err)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return fmt.Errorf("failed to parse rule file: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return fmt.Errorf("invalid rule file: %w", err)
	}

	r.current.Store(&rs)
	return nil
}

// Upsert adds or replaces the rule for one category and writes the whole
// file back.
func (r *Rules) Upsert(category string, triggers []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.copyCurrent()
	replaced := false
	for i := range next.Rules {
		if next.Rules[i].Category == category {
			next.Rules[i].Triggers = triggers
			replaced = true
			break
		}
	}
	if !replaced {
		next.Rules = append(next.Rules, Rule{Category: category, Triggers: triggers})
		sort.Slice(next.Rules, func(i, j int) bool {
			return next.Rules[i].Category < next.Rules[j].Category
		})
	}

	return r.commit(next)
}

// Delete removes the rule for one category and writes the whole file back.
func (r *Rules) Delete(category string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.copyCurrent()
	kept := next.Rules[:0]
	found := false
	for _, rule := range next.Rules {
		if rule.Category == category {
			found = true
			continue
		}
		kept = append(kept, rule)
	}
	if !found {
		return apperrors.ErrNotFound
	}
	next.Rules = kept

	return r.commit(next)
}

// copyCurrent deep-copies the live set so mutations never touch a snapshot
// a reader may hold.
func (r *Rules) copyCurrent() *RuleSet {
	cur := r.current.Load()
	next := &RuleSet{
		DefaultCategory: cur.DefaultCategory,
		GenericTerms:    append([]string(nil), cur.GenericTerms...),
		Rules:           make([]Rule, len(cur.Rules)),
	}
	for i, rule := range cur.Rules {
		next.Rules[i] = Rule{
			Category: rule.Category,
			Triggers: append([]string(nil), rule.Triggers...),
		}
	}
	return next
}

// commit validates, writes the file atomically, then publishes the new set.
func (r *Rules) commit(next *RuleSet) error {
	if err := next.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal rule file: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create rule directory: %w", err)
		}
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write rule file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace rule file: %w", err)
	}

	r.current.Store(next)
	return nil
}
