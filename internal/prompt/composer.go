// Package prompt assembles the system instruction text sent to generation
// providers: a tier-appropriate base block plus relevance-ranked knowledge
// fragments with per-tier truncation.
package prompt

import (
	"strings"

	"github.com/haawall/haawall-go/internal/classify"
	"github.com/haawall/haawall-go/internal/knowledge"
	"github.com/haawall/haawall-go/internal/stringutil"
)

// Base instruction blocks. Simple queries get the short conversational
// block; medium and detailed queries get the full assistant block.
const (
	simpleBase = `You are Haawall, the friendly assistant of the University of Sulaimani. ` +
		`Answer briefly and warmly. Reply in the same language the user writes in ` +
		`(English or Kurdish Sorani).`

	standardBase = `You are Haawall, the official assistant of the University of Sulaimani. ` +
		`Answer questions about the university accurately and helpfully. ` +
		`Reply in the same language the user writes in (English or Kurdish Sorani). ` +
		`If you are not sure about something, say so instead of guessing.`

	detailedLeadIn = "Use the information below to answer comprehensively:"
	mediumLeadIn   = "Relevant information:"
)

// Composer builds system prompts.
type Composer struct{}

// NewComposer creates a prompt composer.
func NewComposer() *Composer {
	return &Composer{}
}

// BaseBlock returns the tier-appropriate base instruction block.
func (c *Composer) BaseBlock(tier classify.Tier) string {
	if tier == classify.TierSimple {
		return simpleBase
	}
	return standardBase
}

// Compose builds the full system prompt. With no fragments the base block
// is returned unchanged. Fragment order is preserved (highest relevance
// first) and the count is capped by the tier's fragment limit; each value
// is truncated to the tier's character limit.
func (c *Composer) Compose(tier classify.Tier, fragments []knowledge.Fragment) string {
	base := c.BaseBlock(tier)
	params := tier.Params()

	if len(fragments) == 0 || params.MaxFragments == 0 {
		return base
	}
	if len(fragments) > params.MaxFragments {
		fragments = fragments[:params.MaxFragments]
	}

	leadIn := mediumLeadIn
	if tier == classify.TierDetailed {
		leadIn = detailedLeadIn
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\n")
	b.WriteString(leadIn)
	for _, fragment := range fragments {
		b.WriteString("\n• ")
		b.WriteString(fragment.Key)
		b.WriteString(": ")
		b.WriteString(stringutil.Truncate(fragment.Value, params.TruncateLimit))
	}

	return b.String()
}
