package genai

import (
	"unicode"
	"unicode/utf8"

	"github.com/haawall/haawall-go/internal/logger"
	"github.com/haawall/haawall-go/internal/metrics"
)

// Token budget parameters.
const (
	// TotalTokenBudget is the combined prompt + output budget per request.
	TotalTokenBudget = 8000

	// promptBudgetRatio is the prompt share that triggers output reduction.
	promptBudgetRatio = 0.7

	// MinOutputTokens is the floor the output budget never drops below.
	MinOutputTokens = 64

	// Approximate characters per token by script. Arabic script tokenizes
	// less predictably, so its ratio is more conservative and gets an
	// additional safety margin.
	charsPerTokenLatin  = 4.0
	charsPerTokenArabic = 2.5
	arabicSafetyMargin  = 1.2
)

// EstimateTokens approximates the token count of text using a
// characters-per-token heuristic chosen by the dominant script.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	arabic := 0
	for _, r := range text {
		if unicode.Is(unicode.Arabic, r) {
			arabic++
		}
	}
	runes := utf8.RuneCountInString(text)

	if arabic > runes/2 {
		return int(float64(runes) / charsPerTokenArabic * arabicSafetyMargin)
	}
	return int(float64(runes) / charsPerTokenLatin)
}

// AdjustOutputBudget reduces the requested output-token budget when the
// estimated prompt size crowds the total budget. Never fails; the tightest
// outcome is the minimum floor.
func AdjustOutputBudget(maxTokens int, systemPrompt, userMessage string, log *logger.Logger, m *metrics.Metrics) int {
	promptTokens := EstimateTokens(systemPrompt) + EstimateTokens(userMessage)
	if float64(promptTokens) <= promptBudgetRatio*TotalTokenBudget {
		return maxTokens
	}

	remaining := TotalTokenBudget - promptTokens
	if remaining < MinOutputTokens {
		remaining = MinOutputTokens
	}
	if remaining >= maxTokens {
		return maxTokens
	}

	m.RecordTokenBudgetReduction()
	log.Warn("prompt crowds token budget, reducing output tokens",
		"prompt_tokens", promptTokens,
		"requested_max_tokens", maxTokens,
		"adjusted_max_tokens", remaining)
	return remaining
}
