package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Candidate pool sources.
const (
	SourceEmbedded = "embedded"
	SourcePostgres = "postgres"
	SourceS3       = "s3"
)

// LLM providers.
const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

const defaultGeminiModel = "gemini-3-flash-preview"

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	CandidateSource string
	DatabaseURL     string
	AWSRegion       string
	S3Bucket        string
	S3Key           string

	LLMProvider         string
	LLMModel            string
	LLMTimeout          time.Duration
	GeminiAPIKey        string
	GoogleCloudProject  string
	GoogleCloudLocation string
	OpenAIAPIKey        string

	SessionIdleTTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	source := normalizeSource(getEnv("CANDIDATE_SOURCE", SourceEmbedded))
	dbURL := os.Getenv("DATABASE_URL")

	if source == SourcePostgres && dbURL == "" {
		log.Printf("DATABASE_URL is required when CANDIDATE_SOURCE=postgres")
	}

	provider := normalizeProvider(getEnv("LLM_PROVIDER", ProviderGemini))

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		CandidateSource: source,
		DatabaseURL:     dbURL,
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("CANDIDATE_S3_BUCKET", ""),
		S3Key:           getEnv("CANDIDATE_S3_KEY", "candidates.json"),

		LLMProvider:         provider,
		LLMModel:            getEnv("LLM_MODEL", defaultModel(provider)),
		LLMTimeout:          time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		GeminiAPIKey:        firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"),
		GoogleCloudProject:  getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation: getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),

		SessionIdleTTL: getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid, using %d", key, def)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid, using %s", key, def)
		return def
	}
	return val
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

func normalizeSource(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg", "db":
		return SourcePostgres
	case "s3":
		return SourceS3
	default:
		return SourceEmbedded
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "vertex", "vertexai":
		return ProviderVertex
	case "openai":
		return ProviderOpenAI
	case "none", "off", "disabled":
		return ProviderNone
	default:
		return ProviderGemini
	}
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-5-mini"
	default:
		return defaultGeminiModel
	}
}
