package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/haawall/haawall-go/internal/logger"
)

// GeminiGenerator implements Generator using the official Gemini SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

// NewGeminiGenerator creates a Gemini-backed generator.
// Returns nil if apiKey is empty (provider disabled).
func NewGeminiGenerator(ctx context.Context, apiKey, model string, log *logger.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // provider disabled when no API key
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
		log:    log.WithModule("genai.gemini"),
	}, nil
}

// Generate produces an answer for the user message.
func (g *GeminiGenerator) Generate(ctx context.Context, systemPrompt, userMessage string, params GenerationParams) (string, error) {
	if g == nil || g.client == nil {
		return "", WrapError(errors.New("gemini generator not configured"), ProviderGemini, 0)
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(params.Temperature)),
		MaxOutputTokens: int32(params.MaxTokens),
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userMessage), config)
	duration := time.Since(start)

	if err != nil {
		g.log.WithError(err).Warn("generation failed",
			"model", g.model,
			"duration_ms", duration.Milliseconds())
		return "", WrapError(fmt.Errorf("generate content failed: %w", err), ProviderGemini, 0)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", WrapError(errors.New("empty generation response"), ProviderGemini, 0)
	}

	var answer strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			answer.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(answer.String())
	if result == "" {
		return "", WrapError(errors.New("generation response contained no text"), ProviderGemini, 0)
	}

	if resp.UsageMetadata != nil {
		g.log.Debug("generation completed",
			"model", g.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"duration_ms", duration.Milliseconds())
	}

	return result, nil
}

// Provider returns the provider type.
func (g *GeminiGenerator) Provider() Provider {
	return ProviderGemini
}

// Close releases resources. Safe to call on nil receiver.
func (g *GeminiGenerator) Close() error {
	return nil
}
