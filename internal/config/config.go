// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, provider keys, rate limits, and cache settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Provider Configuration
	GeminiAPIKey     string // Gemini API key (primary generation provider + embeddings)
	OpenAIAPIKey     string // OpenAI API key (fallback generation provider)
	GeminiModel      string // Gemini model for generation (default applies if empty)
	OpenAIModel      string // OpenAI model for generation (default applies if empty)
	SemanticRelevance bool  // Enable embedding-based relevance ranking
	LexicalRelevance  bool  // Enable BM25 re-ranking (no provider calls)

	// Auth Configuration
	JWTSecret      string        // HS256 signing secret for access tokens
	TokenTTL       time.Duration // Access token lifetime (default: 30m)
	AdminEmail     string        // Bootstrap admin account email (optional)
	AdminPassword  string        // Bootstrap admin account password (optional)

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir      string // Data directory for SQLite database and knowledge files
	KnowledgeDir string // Directory of per-category knowledge files
	RulesPath    string // Trigger-rule configuration file (YAML)

	// Chat Pipeline Configuration
	MaxMessageLength   int           // Maximum chat message length (default: 2000)
	ResponseCacheMax   int           // Response cache entry ceiling (default: 1000)
	EmbeddingCacheSize int           // Embedding LRU capacity (default: 512)
	EmbeddingCacheTTL  time.Duration // Embedding LRU entry TTL (default: 24h)
	ProviderTimeout    time.Duration // Per-provider generation call timeout (default: 30s)

	// Rate Limits (requests per window, per client key)
	ChatRateLimit      int
	ChatRateWindow     time.Duration
	FeedbackRateLimit  int
	FeedbackRateWindow time.Duration

	// Feedback Email Configuration
	SMTPHost       string
	SMTPPort       string
	SenderEmail    string
	SenderPassword string
	TeamEmail      string

	// Knowledge Backup Configuration (R2-compatible object storage, optional)
	BackupEndpoint  string
	BackupAccessKey string
	BackupSecretKey string
	BackupBucket    string

	// Sentry Configuration
	SentryToken string
	SentryHost  string
	Environment string
}

// Load reads configuration from environment variables.
// Callers that want .env support should call godotenv.Load first (see cmd/server).
func Load() (*Config, error) {
	cfg := &Config{
		// Provider Configuration
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", ""),
		SemanticRelevance: getBoolEnv("SEMANTIC_RELEVANCE", false),
		LexicalRelevance:  getBoolEnv("LEXICAL_RELEVANCE", true),

		// Auth Configuration
		JWTSecret:     getEnv("JWT_SECRET_KEY", ""),
		TokenTTL:      getDurationEnv("TOKEN_TTL", 30*time.Minute),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		// Metrics Authentication
		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		// Server Configuration
		Port:            getEnv("PORT", "8000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		// Data Configuration
		DataDir:      getEnv("DATA_DIR", "./data"),
		KnowledgeDir: getEnv("KNOWLEDGE_DIR", ""),
		RulesPath:    getEnv("RULES_PATH", ""),

		// Chat Pipeline Configuration
		MaxMessageLength:   getIntEnv("MAX_MESSAGE_LENGTH", 2000),
		ResponseCacheMax:   getIntEnv("RESPONSE_CACHE_MAX", 1000),
		EmbeddingCacheSize: getIntEnv("EMBEDDING_CACHE_SIZE", 512),
		EmbeddingCacheTTL:  getDurationEnv("EMBEDDING_CACHE_TTL", 24*time.Hour),
		ProviderTimeout:    getDurationEnv("PROVIDER_TIMEOUT", 30*time.Second),

		// Rate Limits
		ChatRateLimit:      getIntEnv("CHAT_RATE_LIMIT", 20),
		ChatRateWindow:     getDurationEnv("CHAT_RATE_WINDOW", time.Minute),
		FeedbackRateLimit:  getIntEnv("FEEDBACK_RATE_LIMIT", 3),
		FeedbackRateWindow: getDurationEnv("FEEDBACK_RATE_WINDOW", 10*time.Minute),

		// Feedback Email Configuration
		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SenderEmail:    getEnv("SENDER_EMAIL", ""),
		SenderPassword: getEnv("SENDER_PASSWORD", ""),
		TeamEmail:      getEnv("TEAM_EMAIL", ""),

		// Knowledge Backup Configuration
		BackupEndpoint:  getEnv("BACKUP_ENDPOINT", ""),
		BackupAccessKey: getEnv("BACKUP_ACCESS_KEY_ID", ""),
		BackupSecretKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
		BackupBucket:    getEnv("BACKUP_BUCKET", ""),

		// Sentry Configuration
		SentryToken: getEnv("SENTRY_TOKEN", ""),
		SentryHost:  getEnv("SENTRY_HOST", ""),
		Environment: getEnv("ENVIRONMENT", "production"),
	}

	// Derived defaults under the data directory.
	if cfg.KnowledgeDir == "" {
		cfg.KnowledgeDir = filepath.Join(cfg.DataDir, "knowledge")
	}
	if cfg.RulesPath == "" {
		cfg.RulesPath = filepath.Join(cfg.DataDir, "trigger_rules.yaml")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.GeminiAPIKey == "" && c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("at least one of GEMINI_API_KEY or OPENAI_API_KEY is required"))
	}
	if c.ChatRateLimit <= 0 {
		errs = append(errs, errors.New("CHAT_RATE_LIMIT must be positive"))
	}
	if c.FeedbackRateLimit <= 0 {
		errs = append(errs, errors.New("FEEDBACK_RATE_LIMIT must be positive"))
	}
	if c.MaxMessageLength <= 0 {
		errs = append(errs, errors.New("MAX_MESSAGE_LENGTH must be positive"))
	}

	return errors.Join(errs...)
}

// SQLitePath returns the SQLite database file path under the data directory.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "haawall.db")
}

// BackupConfigured returns true when all object-storage settings are present.
func (c *Config) BackupConfigured() bool {
	return c.BackupEndpoint != "" && c.BackupAccessKey != "" &&
		c.BackupSecretKey != "" && c.BackupBucket != ""
}

// MailConfigured returns true when outbound email can be sent.
func (c *Config) MailConfigured() bool {
	return c.SenderEmail != "" && c.SenderPassword != "" && c.TeamEmail != ""
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv returns the environment variable as int or a default.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getBoolEnv returns the environment variable as bool or a default.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv returns the environment variable as duration or a default.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
