package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"career-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string

	// KVBackend selects where the workspace snapshots live.
	KVBackend     string
	DatabaseURL   string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KVPrefix      string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	LLMProvider     string
	LLMModel        string
	LLMBaseURL      string
	LLMTimeout      time.Duration
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	JWTSecret          string
	TokenLifespan      time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string

	InterviewSessionTTL time.Duration
	MaxUploadBytes      int64

	RateLimitDefaultRate  float64
	RateLimitDefaultBurst int
	RateLimitAIRate       float64
	RateLimitAIBurst      int
}

// Load reads configuration from .env files, an optional config.yaml and
// environment variables, in increasing order of precedence.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			telemetry.Warn("config.read_failed", map[string]any{"file": "config.yaml", "err": err})
		}
	}
	return fromViper(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("env", "dev")
	v.SetDefault("cors_allow_origins", "http://localhost:5173")
	v.SetDefault("kv_backend", "")
	v.SetDefault("sqlite_path", "./data/career.db")
	v.SetDefault("redis_db", 0)
	v.SetDefault("kv_prefix", "career:")
	v.SetDefault("object_store", "local")
	v.SetDefault("local_store_dir", "./data")
	v.SetDefault("llm_provider", "gemini")
	v.SetDefault("llm_timeout_seconds", 120)
	v.SetDefault("token_lifespan", "24h")
	v.SetDefault("interview_session_ttl", "2h")
	v.SetDefault("max_upload_bytes", 10<<20)
	v.SetDefault("rate_limit_default_rate", 5)
	v.SetDefault("rate_limit_default_burst", 20)
	v.SetDefault("rate_limit_ai_rate", 0.5)
	v.SetDefault("rate_limit_ai_burst", 5)
	return v
}

func fromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("env"))
	dbURL := strings.TrimSpace(v.GetString("database_url"))
	kvBackend := normalizeKVBackend(v.GetString("kv_backend"), dbURL)

	if env == "production" && kvBackend == "memory" {
		telemetry.Warn("config.memory_kv_in_production", map[string]any{
			"kv_backend": kvBackend,
			"message":    "workspace will not survive restarts",
		})
	}

	timeout := time.Duration(v.GetInt("llm_timeout_seconds")) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	provider := normalizeProvider(v.GetString("llm_provider"))

	return Config{
		Port:            v.GetString("port"),
		CORSAllowOrigin: splitAndTrim(v.GetString("cors_allow_origins")),
		Env:             env,

		KVBackend:     kvBackend,
		DatabaseURL:   dbURL,
		SQLitePath:    v.GetString("sqlite_path"),
		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		KVPrefix:      v.GetString("kv_prefix"),

		ObjectStoreType: normalizeStoreType(v.GetString("object_store")),
		LocalStoreDir:   v.GetString("local_store_dir"),
		AWSRegion:       v.GetString("aws_region"),
		S3Bucket:        v.GetString("s3_bucket"),
		S3Prefix:        v.GetString("s3_prefix"),
		SSEKMSKeyID:     v.GetString("sse_kms_key_id"),

		LLMProvider:     provider,
		LLMModel:        defaultModel(provider, v.GetString("llm_model")),
		LLMBaseURL:      v.GetString("llm_base_url"),
		LLMTimeout:      timeout,
		GeminiAPIKey:    firstNonEmpty(v.GetString("gemini_api_key"), v.GetString("api_key")),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),

		JWTSecret:          v.GetString("jwt_secret"),
		TokenLifespan:      v.GetDuration("token_lifespan"),
		GoogleClientID:     v.GetString("google_client_id"),
		GoogleClientSecret: v.GetString("google_client_secret"),
		GoogleRedirectURL:  v.GetString("google_redirect_url"),
		UIRedirectURL:      v.GetString("ui_redirect_url"),

		InterviewSessionTTL: v.GetDuration("interview_session_ttl"),
		MaxUploadBytes:      v.GetInt64("max_upload_bytes"),

		RateLimitDefaultRate:  v.GetFloat64("rate_limit_default_rate"),
		RateLimitDefaultBurst: v.GetInt("rate_limit_default_burst"),
		RateLimitAIRate:       v.GetFloat64("rate_limit_ai_rate"),
		RateLimitAIBurst:      v.GetInt("rate_limit_ai_burst"),
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

// normalizeKVBackend falls back to postgres when only DATABASE_URL is set.
func normalizeKVBackend(raw, dbURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "memory", "mem":
		return "memory"
	case "file", "local":
		return "file"
	case "s3":
		return "s3"
	case "redis":
		return "redis"
	case "postgres", "pg", "postgresql":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "":
		if dbURL != "" {
			return "postgres"
		}
		return "memory"
	default:
		return "memory"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	case "openai", "ollama":
		return "openai"
	case "anthropic", "claude":
		return "anthropic"
	case "none", "off", "disabled":
		return "none"
	default:
		return "gemini"
	}
}

func defaultModel(provider, model string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "anthropic":
		return "claude-3-7-sonnet-latest"
	default:
		return "gemini-2.5-flash"
	}
}
