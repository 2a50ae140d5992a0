// Package classify determines the language and complexity tier of an
// incoming chat query. Classification is a pure function of the query text:
// no network calls, no shared state. The tier drives how much knowledge
// context is loaded and how large the generation budget is.
package classify

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/haawall/haawall-go/internal/stringutil"
)

// Language identifies the detected query locale.
type Language string

const (
	// LanguageEnglish is the primary locale.
	LanguageEnglish Language = "en"
	// LanguageKurdish is the secondary locale (Sorani, Arabic script).
	LanguageKurdish Language = "ckb"
)

// Tier is the complexity classification of a query.
type Tier string

const (
	// TierSimple covers greetings and identity questions; minimal prompt, small budget.
	TierSimple Tier = "simple"
	// TierMedium is the default tier.
	TierMedium Tier = "medium"
	// TierDetailed covers how-to, comparison, and multi-topic questions.
	TierDetailed Tier = "detailed"
)

// Params holds the generation and prompt-shaping parameters for a tier.
type Params struct {
	MaxFragments  int     // knowledge fragments included in the prompt
	TruncateLimit int     // per-fragment character limit
	MaxTokens     int     // generation output token budget
	Temperature   float32 // sampling temperature
	MinSimilarity float32 // semantic relevance threshold (semantic mode only)
}

// tierParams follows the parameters observed in production: the small tier
// matches the terse fallback provider defaults, the detailed tier matches
// the primary provider's generous budget.
var tierParams = map[Tier]Params{
	TierSimple:   {MaxFragments: 0, TruncateLimit: 120, MaxTokens: 150, Temperature: 0.5, MinSimilarity: 1.0},
	TierMedium:   {MaxFragments: 3, TruncateLimit: 300, MaxTokens: 400, Temperature: 0.7, MinSimilarity: 0.45},
	TierDetailed: {MaxFragments: 5, TruncateLimit: 600, MaxTokens: 1000, Temperature: 1.0, MinSimilarity: 0.35},
}

// Params returns the parameter set for the tier. Unknown tiers get medium.
func (t Tier) Params() Params {
	if p, ok := tierParams[t]; ok {
		return p
	}
	return tierParams[TierMedium]
}

// detailedWordThreshold: queries longer than this many words are classified
// detailed even when no pattern matches.
const detailedWordThreshold = 12

// Pattern groups are checked in order: simple first, then detailed.
// Kurdish triggers are included alongside English ones so greetings in
// either locale hit the simple tier.
var (
	simplePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(hi|hello|hey|yo|good (morning|afternoon|evening))\b`),
		regexp.MustCompile(`^(thanks|thank you|bye|goodbye)\b`),
		regexp.MustCompile(`^(who are you|what are you|what is your name|who made you)\b`),
		regexp.MustCompile(`^(سڵاو|سلاو|چۆنی|بەخێربێن)`),
		regexp.MustCompile(`^(تۆ کێیت|ناوت چییە)`),
	}

	detailedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bhow (do|can|to|does|should)\b`),
		regexp.MustCompile(`\b(compare|difference between|versus|vs\.?)\b`),
		regexp.MustCompile(`\b(explain|describe|list all|tell me about|what are the)\b`),
		regexp.MustCompile(`\b(requirements?|procedures?|steps?|process)\b`),
		regexp.MustCompile(`(چۆن دەتوانم|جیاوازی نێوان|ڕوونی بکەرەوە|هەموو)`),
	}
)

// Result is the outcome of classification.
type Result struct {
	Language Language
	Tier     Tier
}

// Classifier classifies queries by language and complexity tier.
// The zero value is not usable; use New.
type Classifier struct{}

// New creates a Classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify returns the language and tier for the query.
func (c *Classifier) Classify(query string) Result {
	normalized := stringutil.Normalize(query)
	return Result{
		Language: DetectLanguage(normalized),
		Tier:     DetectTier(normalized),
	}
}

// DetectLanguage counts Arabic-script runes against ASCII letters.
// Ties favor the primary locale.
func DetectLanguage(query string) Language {
	var arabic, ascii int
	for _, r := range query {
		switch {
		case unicode.Is(unicode.Arabic, r):
			arabic++
		case r < 128 && unicode.IsLetter(r):
			ascii++
		}
	}
	if arabic > ascii {
		return LanguageKurdish
	}
	return LanguageEnglish
}

// DetectTier tests the lower-cased query against the simple pattern group,
// then the detailed group, then falls back to a word-count threshold.
func DetectTier(query string) Tier {
	lowered := strings.ToLower(strings.TrimSpace(query))
	if lowered == "" {
		return TierMedium
	}

	for _, p := range simplePatterns {
		if p.MatchString(lowered) {
			return TierSimple
		}
	}
	for _, p := range detailedPatterns {
		if p.MatchString(lowered) {
			return TierDetailed
		}
	}
	if stringutil.WordCount(lowered) > detailedWordThreshold {
		return TierDetailed
	}
	return TierMedium
}
