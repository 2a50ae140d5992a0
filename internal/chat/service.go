// Package chat implements the request pipeline: validation, rate limiting,
// response-cache lookup, classification, relevance selection, prompt
// composition, provider generation with fallback, and history persistence.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/haawall/haawall-go/internal/cache"
	"github.com/haawall/haawall-go/internal/classify"
	apperrors "github.com/haawall/haawall-go/internal/errors"
	"github.com/haawall/haawall-go/internal/genai"
	"github.com/haawall/haawall-go/internal/knowledge"
	"github.com/haawall/haawall-go/internal/logger"
	"github.com/haawall/haawall-go/internal/metrics"
	"github.com/haawall/haawall-go/internal/prompt"
	"github.com/haawall/haawall-go/internal/ratelimit"
	"github.com/haawall/haawall-go/internal/relevance"
	"github.com/haawall/haawall-go/internal/storage"
	"github.com/haawall/haawall-go/internal/stringutil"
)

// SourceCache tags answers served from the response cache.
const SourceCache = "cache"

// Gateway generates an answer and reports which provider produced it.
type Gateway interface {
	Generate(ctx context.Context, systemPrompt, userMessage string, params genai.GenerationParams) (string, genai.Provider, error)
}

// History persists conversation turns. Implemented by storage.DB.
type History interface {
	GetChatSession(ctx context.Context, id string) (*storage.ChatSession, error)
	CreateChatSession(ctx context.Context, id string, userID *int64) (*storage.ChatSession, error)
	SaveChatMessage(ctx context.Context, msg *storage.ChatMessage) error
}

// Request is one inbound chat message.
type Request struct {
	Message   string
	ClientKey string
	SessionID string
	UserID    *int64
}

// Response is the pipeline outcome.
type Response struct {
	Answer   string `json:"answer"`
	Source   string `json:"source"`
	Tier     string `json:"tier"`
	Language string `json:"language"`
	Cached   bool   `json:"cached"`
}

// Config wires the pipeline collaborators.
type Config struct {
	MaxMessageLength int
	Limiter          *ratelimit.KeyedLimiter
	Cache            *cache.ResponseCache
	Classifier       *classify.Classifier
	Selector         *relevance.KeywordSelector
	Semantic         *relevance.SemanticRanker // nil disables semantic ranking
	Lexical          bool                      // BM25 re-ranking when semantic is off or silent
	Store            *knowledge.Store
	Composer         *prompt.Composer
	Gateway          Gateway
	History          History // nil disables persistence
	Rules            *knowledge.Rules
	Logger           *logger.Logger
	Metrics          *metrics.Metrics
}

// Service runs the chat pipeline.
type Service struct {
	cfg   Config
	log   *logger.Logger
	group singleflight.Group
}

// NewService validates the wiring and creates the service.
func NewService(cfg Config) (*Service, error) {
	switch {
	case cfg.Cache == nil:
		return nil, errors.New("chat: response cache is required")
	case cfg.Classifier == nil:
		return nil, errors.New("chat: classifier is required")
	case cfg.Selector == nil:
		return nil, errors.New("chat: relevance selector is required")
	case cfg.Store == nil:
		return nil, errors.New("chat: knowledge store is required")
	case cfg.Composer == nil:
		return nil, errors.New("chat: prompt composer is required")
	case cfg.Gateway == nil:
		return nil, errors.New("chat: provider gateway is required")
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = 2000
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.New("info")
	}
	return &Service{
		cfg: cfg,
		log: cfg.Logger.WithModule("chat"),
	}, nil
}

// Handle answers one chat message. Outcomes are exactly one of: an answer
// with a source tag, a validation error, a rate-limit rejection, or a
// providers-unavailable rejection.
func (s *Service) Handle(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &apperrors.ValidationError{Field: "message", Message: "must not be empty"}
	}
	if len([]rune(message)) > s.cfg.MaxMessageLength {
		return nil, &apperrors.ValidationError{
			Field:   "message",
			Message: fmt.Sprintf("must not exceed %d characters", s.cfg.MaxMessageLength),
		}
	}

	if s.cfg.Limiter != nil && !s.cfg.Limiter.Allow(req.ClientKey) {
		return nil, apperrors.ErrRateLimitExceeded
	}

	result := s.cfg.Classifier.Classify(message)

	// Exact-match cache short-circuit: keyed by the raw message, shared
	// across tiers for the same literal query.
	if answer, ok := s.cfg.Cache.Get(req.Message); ok {
		s.cfg.Metrics.RecordChat(string(result.Tier), string(result.Language), "cached", time.Since(start))
		resp := &Response{
			Answer:   answer,
			Source:   SourceCache,
			Tier:     string(result.Tier),
			Language: string(result.Language),
			Cached:   true,
		}
		s.persist(ctx, req, resp)
		return resp, nil
	}

	// Identical concurrent misses share one generation.
	value, err, _ := s.group.Do(cache.Key(req.Message), func() (any, error) {
		return s.generate(ctx, req.Message, message, result)
	})
	if err != nil {
		s.cfg.Metrics.RecordChat(string(result.Tier), string(result.Language), "error", time.Since(start))
		return nil, err
	}

	resp := value.(*Response)
	s.cfg.Metrics.RecordChat(resp.Tier, resp.Language, "success", time.Since(start))
	s.persist(ctx, req, resp)
	return resp, nil
}

// generate runs the uncached tail of the pipeline.
func (s *Service) generate(ctx context.Context, rawMessage, message string, result classify.Result) (*Response, error) {
	if _, err := s.cfg.Store.RefreshIfStale(ctx); err != nil {
		s.log.WithError(err).Warn("knowledge staleness check failed")
	}

	params := result.Tier.Params()
	fragments := s.collectFragments(ctx, message, result.Tier, params)

	systemPrompt := s.cfg.Composer.Compose(result.Tier, fragments)
	maxTokens := genai.AdjustOutputBudget(params.MaxTokens, systemPrompt, message, s.log, s.cfg.Metrics)

	answer, source, err := s.cfg.Gateway.Generate(ctx, systemPrompt, message, genai.GenerationParams{
		MaxTokens:   maxTokens,
		Temperature: float64(params.Temperature),
	})
	if err != nil {
		// Nothing is cached on failure.
		return nil, err
	}

	s.cfg.Cache.Put(rawMessage, answer)

	s.log.Info("chat answered",
		"tier", string(result.Tier),
		"language", string(result.Language),
		"source", source.String(),
		"fragments", len(fragments))

	return &Response{
		Answer:   answer,
		Source:   source.String(),
		Tier:     string(result.Tier),
		Language: string(result.Language),
	}, nil
}

// collectFragments selects categories by trigger terms, loads their
// fragments, and optionally re-ranks them by embedding similarity.
// Simple-tier queries carry no fragments at all.
func (s *Service) collectFragments(ctx context.Context, message string, tier classify.Tier, params classify.Params) []knowledge.Fragment {
	if params.MaxFragments == 0 {
		return nil
	}

	categories := s.cfg.Selector.SelectCategories(message)
	if len(categories) == 0 {
		return nil
	}

	var fragments []knowledge.Fragment
	for _, category := range categories {
		loaded, err := s.cfg.Store.Fragments(category)
		if err != nil {
			// A single unavailable category degrades, never fails the chat.
			if !errors.Is(err, apperrors.ErrCategoryUnavailable) {
				s.log.WithError(err).Warn("failed to load category", "category", category)
			}
			continue
		}
		fragments = append(fragments, loaded...)
	}
	if len(fragments) == 0 {
		return nil
	}

	if s.cfg.Semantic != nil && params.MinSimilarity > 0 {
		if ranked := s.cfg.Semantic.Rank(ctx, message, fragments, float64(params.MinSimilarity), params.MaxFragments); len(ranked) > 0 {
			return ranked
		}
		// Zero semantic signal falls through to the next strategy.
	}

	if s.cfg.Lexical {
		ranker := relevance.NewBM25Ranker(s.log)
		if err := ranker.Index(fragments); err != nil {
			s.log.WithError(err).Warn("lexical ranking unavailable")
		} else if ranked := ranker.Rank(message, params.MaxFragments); len(ranked) > 0 {
			return ranked
		}
		// No positive lexical score keeps keyword order.
	}

	if len(fragments) > params.MaxFragments {
		fragments = fragments[:params.MaxFragments]
	}
	return fragments
}

// persist appends the turn to the session history, best effort.
func (s *Service) persist(ctx context.Context, req Request, resp *Response) {
	if s.cfg.History == nil || req.SessionID == "" {
		return
	}

	if _, err := s.cfg.History.GetChatSession(ctx, req.SessionID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.log.WithError(err).Warn("failed to load chat session")
			return
		}
		if _, err := s.cfg.History.CreateChatSession(ctx, req.SessionID, req.UserID); err != nil {
			s.log.WithError(err).Warn("failed to create chat session")
			return
		}
	}

	userMsg := &storage.ChatMessage{
		SessionID: req.SessionID,
		Role:      storage.RoleUser,
		Content:   stringutil.Normalize(req.Message),
		Tier:      resp.Tier,
		Language:  resp.Language,
	}
	if err := s.cfg.History.SaveChatMessage(ctx, userMsg); err != nil {
		s.log.WithError(err).Warn("failed to save user message")
		return
	}

	assistantMsg := &storage.ChatMessage{
		SessionID: req.SessionID,
		Role:      storage.RoleAssistant,
		Content:   resp.Answer,
		Tier:      resp.Tier,
		Language:  resp.Language,
		Source:    resp.Source,
	}
	if err := s.cfg.History.SaveChatMessage(ctx, assistantMsg); err != nil {
		s.log.WithError(err).Warn("failed to save assistant message")
	}
}
