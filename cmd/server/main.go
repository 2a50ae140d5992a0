// Package main provides the Haawall assistant server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/haawall/haawall-go/internal/auth"
	"github.com/haawall/haawall-go/internal/backup"
	"github.com/haawall/haawall-go/internal/cache"
	"github.com/haawall/haawall-go/internal/chat"
	"github.com/haawall/haawall-go/internal/classify"
	"github.com/haawall/haawall-go/internal/config"
	"github.com/haawall/haawall-go/internal/genai"
	"github.com/haawall/haawall-go/internal/knowledge"
	"github.com/haawall/haawall-go/internal/logger"
	"github.com/haawall/haawall-go/internal/mail"
	"github.com/haawall/haawall-go/internal/metrics"
	"github.com/haawall/haawall-go/internal/prompt"
	"github.com/haawall/haawall-go/internal/ratelimit"
	"github.com/haawall/haawall-go/internal/relevance"
	"github.com/haawall/haawall-go/internal/sentry"
	"github.com/haawall/haawall-go/internal/storage"
	"github.com/haawall/haawall-go/internal/web"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting Haawall assistant server")

	if enabled, err := sentry.Init(cfg.SentryToken, cfg.SentryHost, cfg.Environment); err != nil {
		log.WithError(err).Warn("Sentry initialization failed")
	} else if enabled {
		defer sentry.Flush(2 * time.Second)
		log.Info("Sentry error tracking enabled")
	}

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	// Knowledge: file snapshot plus the admin-editable info table, and the
	// trigger rules driving category selection.
	store := knowledge.NewStore(cfg.KnowledgeDir, db, log, m)
	if err := store.Reload(context.Background(), "startup"); err != nil {
		log.WithError(err).Warn("Initial knowledge load failed, starting empty")
	}
	rules, err := knowledge.LoadRules(cfg.RulesPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load trigger rules")
	}
	log.WithField("categories", len(store.Categories())).Info("Knowledge loaded")

	responseCache := cache.NewResponseCache(cfg.ResponseCacheMax, m)

	// Optional semantic relevance ranking over Gemini embeddings.
	var semantic *relevance.SemanticRanker
	if cfg.SemanticRelevance && cfg.GeminiAPIKey != "" {
		embedCache := relevance.NewEmbedCache(cfg.EmbeddingCacheSize, cfg.EmbeddingCacheTTL)
		responseCache.OnClear(embedCache.Purge)
		semantic = relevance.NewSemanticRanker(genai.NewEmbeddingClient(cfg.GeminiAPIKey), embedCache, log, m)
		log.Info("Semantic relevance ranking enabled")
	}

	gateway := buildGateway(cfg, log, m)
	defer func() { _ = gateway.Close() }()

	chatLimiter := ratelimit.NewKeyed(ratelimit.KeyedConfig{
		Name:          "chat",
		Limit:         cfg.ChatRateLimit,
		Window:        cfg.ChatRateWindow,
		CleanupPeriod: 5 * time.Minute,
		Metrics:       m,
	})
	defer chatLimiter.Stop()
	feedbackLimiter := ratelimit.NewKeyed(ratelimit.KeyedConfig{
		Name:          "feedback",
		Limit:         cfg.FeedbackRateLimit,
		Window:        cfg.FeedbackRateWindow,
		CleanupPeriod: 5 * time.Minute,
		Metrics:       m,
	})
	defer feedbackLimiter.Stop()

	chatService, err := chat.NewService(chat.Config{
		MaxMessageLength: cfg.MaxMessageLength,
		Limiter:          chatLimiter,
		Cache:            responseCache,
		Classifier:       classify.New(),
		Selector:         relevance.NewKeywordSelector(rules),
		Semantic:         semantic,
		Lexical:          cfg.LexicalRelevance,
		Store:            store,
		Composer:         prompt.NewComposer(),
		Gateway:          gateway,
		History:          db,
		Rules:            rules,
		Logger:           log,
		Metrics:          m,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create chat service")
	}

	var snapshotter *backup.Snapshotter
	if cfg.BackupConfigured() {
		objStore, err := backup.NewObjectStore(context.Background(), backup.StoreConfig{
			Endpoint:    cfg.BackupEndpoint,
			AccessKeyID: cfg.BackupAccessKey,
			SecretKey:   cfg.BackupSecretKey,
			BucketName:  cfg.BackupBucket,
		})
		if err != nil {
			log.WithError(err).Warn("Backup storage unavailable")
		} else {
			snapshotter = backup.NewSnapshotter(objStore, cfg.KnowledgeDir, cfg.RulesPath, log)
			log.Info("Knowledge backup enabled")
		}
	}

	admin := chat.NewAdmin(chatService, db, snapshotter)

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.WithError(err).Fatal("Failed to create token manager")
	}

	if err := bootstrapAdmin(context.Background(), db, cfg, log); err != nil {
		log.WithError(err).Warn("Admin account bootstrap failed")
	}

	var feedbackService *mail.FeedbackService
	if cfg.MailConfigured() {
		mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SenderEmail, cfg.SenderPassword, log)
		feedbackService = mail.NewFeedbackService(mailer, cfg.TeamEmail)
		log.Info("Feedback email enabled")
	} else {
		feedbackService = mail.NewFeedbackService(nil, "")
		log.Info("Feedback email not configured")
	}

	handler, err := web.NewHandler(web.Config{
		Chat:            chatService,
		Admin:           admin,
		Tokens:          tokens,
		DB:              db,
		Feedback:        feedbackService,
		FeedbackLimiter: feedbackLimiter,
		Logger:          log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create HTTP handlers")
	}

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.Enabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))

	setupRoutes(router, handler, db, store, registry, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.ProviderTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		cleanupExpiredSessions(ctx, db, log)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		updateCacheMetrics(ctx, responseCache, chatLimiter, m)
	}()

	if snapshotter.Enabled() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dailyBackup(ctx, snapshotter, log)
		}()
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for background jobs to stop")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}

// buildGateway assembles the provider chain: Gemini primary, OpenAI
// secondary, whichever keys are configured.
func buildGateway(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) *genai.FallbackGenerator {
	var primary, secondary genai.Generator

	if cfg.GeminiAPIKey != "" {
		gen, err := genai.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			log.WithError(err).Warn("Gemini provider unavailable")
		} else {
			primary = gen
		}
	}
	if cfg.OpenAIAPIKey != "" {
		gen, err := genai.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, log)
		if err != nil {
			log.WithError(err).Warn("OpenAI provider unavailable")
		} else {
			secondary = gen
		}
	}

	gateway, err := genai.NewFallbackGenerator(primary, secondary, genai.DefaultRetryConfig(), log, m)
	if err != nil {
		log.WithError(err).Fatal("No generation provider available")
	}
	return gateway
}

// bootstrapAdmin creates the configured admin account on first start.
func bootstrapAdmin(ctx context.Context, db *storage.DB, cfg *config.Config, log *logger.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	if _, err := db.GetUserByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	}

	hashed, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	if _, err := db.CreateUser(ctx, cfg.AdminEmail, hashed, "Administrator", storage.UserTypeAdmin); err != nil {
		return err
	}
	log.WithField("email", cfg.AdminEmail).Info("Admin account created")
	return nil
}
