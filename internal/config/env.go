package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Port          string
	LogMode       string
	StorageDriver string
	DatabaseURL   string
	SeedOnStartup bool
	CORSOrigins   []string
	StaticDir     string

	HuggingFaceAPIKey        string
	HuggingFaceBaseURL       string
	HuggingFaceChatModel     string
	HuggingFaceContentModels []string

	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string

	PerplexityAPIKey  string
	PerplexityBaseURL string
	PerplexityModel   string

	AIAPIKey string
	GenModel string

	ContentProviders []string
	AITimeout        time.Duration
	ChatHistoryLimit int

	JWTSecret        string
	RequireAdminAuth bool
	TokenTTL         time.Duration

	AwsAccessKey      string
	AwsSecretKey      string
	AwsRegion         string
	BucketName        string
	LogoMirrorWorkers int
}

// LoadConfig loads .env (if present) and the process environment into a Config.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		LogMode:       getEnv("LOG_MODE", "development"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SeedOnStartup: getEnvBool("SEED_ON_STARTUP", true),
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		StaticDir:     getEnv("STATIC_DIR", "./web"),

		HuggingFaceAPIKey:    getEnv("HUGGINGFACE_API_KEY", ""),
		HuggingFaceBaseURL:   getEnv("HUGGINGFACE_BASE_URL", "https://api-inference.huggingface.co"),
		HuggingFaceChatModel: getEnv("HUGGINGFACE_CHAT_MODEL", "gpt2"),
		HuggingFaceContentModels: getEnvList("HUGGINGFACE_CONTENT_MODELS", []string{
			"meta-llama/Llama-2-70b-chat-hf",
			"tiiuae/falcon-180B",
			"bigscience/bloom",
			"google/gemma-7b",
			"mistralai/Mistral-7B-Instruct-v0.2",
			"meta-llama/Llama-2-7b-chat-hf",
		}),

		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-7-sonnet-20250219"),

		PerplexityAPIKey:  getEnv("PERPLEXITY_API_KEY", ""),
		PerplexityBaseURL: getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		PerplexityModel:   getEnv("PERPLEXITY_MODEL", "llama-3.1-sonar-small-128k-online"),

		AIAPIKey: getEnv("GEMINI_API_KEY", ""),
		GenModel: getEnv("GEN_MODEL", "gemini-1.5-flash"),

		ContentProviders: getEnvList("CONTENT_PROVIDERS", []string{"anthropic", "perplexity", "huggingface", "gemini"}),
		AITimeout:        time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 60)) * time.Second,
		ChatHistoryLimit: getEnvInt("CHAT_HISTORY_LIMIT", 20),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		RequireAdminAuth: getEnvBool("REQUIRE_ADMIN_AUTH", false),
		TokenTTL:         time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,

		AwsAccessKey:      getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:      getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:         getEnv("AWS_REGION", "us-east-2"),
		BucketName:        getEnv("BUCKET_NAME", ""),
		LogoMirrorWorkers: getEnvInt("LOGO_MIRROR_WORKERS", 2),
	}

	defaultDriver := StorageMemory
	if cfg.DatabaseURL != "" {
		defaultDriver = StoragePostgres
	}
	cfg.StorageDriver = strings.ToLower(getEnv("STORAGE_DRIVER", defaultDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the app cannot start with.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORAGE_DRIVER=postgres but DATABASE_URL not set")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.RequireAdminAuth && c.JWTSecret == "" {
		return fmt.Errorf("REQUIRE_ADMIN_AUTH is set but JWT_SECRET is empty")
	}
	if c.ChatHistoryLimit < 0 {
		return fmt.Errorf("CHAT_HISTORY_LIMIT must be >= 0")
	}
	return nil
}

// ObjectStorageEnabled reports whether S3 credentials and a bucket are configured.
func (c *Config) ObjectStorageEnabled() bool {
	return c.AwsAccessKey != "" && c.AwsSecretKey != "" && c.BucketName != ""
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a bool, using default %t", key, v, def)
		return def
	}
	return b
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
