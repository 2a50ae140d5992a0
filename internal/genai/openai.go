package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/haawall/haawall-go/internal/logger"
)

// OpenAIGenerator implements Generator using the OpenAI chat completions API.
type OpenAIGenerator struct {
	client openai.Client
	model  string
	log    *logger.Logger
}

// NewOpenAIGenerator creates an OpenAI-backed generator.
// Returns nil if apiKey is empty (provider disabled).
func NewOpenAIGenerator(apiKey, model string, log *logger.Logger) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // provider disabled when no API key
	}

	if model == "" {
		model = DefaultOpenAIModel
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &OpenAIGenerator{
		client: client,
		model:  model,
		log:    log.WithModule("genai.openai"),
	}, nil
}

// Generate produces an answer for the user message.
func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userMessage string, params GenerationParams) (string, error) {
	if g == nil {
		return "", WrapError(errors.New("openai generator not configured"), ProviderOpenAI, 0)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userMessage))

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(g.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(params.MaxTokens)),
		Temperature:         openai.Float(params.Temperature),
	})
	duration := time.Since(start)

	if err != nil {
		g.log.WithError(err).Warn("generation failed",
			"model", g.model,
			"duration_ms", duration.Milliseconds())
		return "", WrapError(fmt.Errorf("chat completion failed: %w", err), ProviderOpenAI, 0)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", WrapError(errors.New("empty generation response"), ProviderOpenAI, 0)
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	if result == "" {
		return "", WrapError(errors.New("generation response contained no text"), ProviderOpenAI, 0)
	}

	g.log.Debug("generation completed",
		"model", g.model,
		"input_tokens", resp.Usage.PromptTokens,
		"output_tokens", resp.Usage.CompletionTokens,
		"duration_ms", duration.Milliseconds())

	return result, nil
}

// Provider returns the provider type.
func (g *OpenAIGenerator) Provider() Provider {
	return ProviderOpenAI
}

// Close releases resources. Safe to call on nil receiver.
func (g *OpenAIGenerator) Close() error {
	return nil
}
