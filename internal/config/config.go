package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Storage   StorageConfig
	RAG       RAGConfig
	RateLimit RateLimitConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LLMConfig struct {
	OpenAIKey        string
	OpenAIBaseURL    string
	AnthropicKey     string
	OllamaURL        string
	DefaultProvider  string
	DefaultModel     string
	FallbackProvider string
	MaxRetries       int
}

type EmbeddingConfig struct {
	Provider string
	Model    string
}

type StorageConfig struct {
	Backend     string // "local" or "supabase"
	LibraryPath string
	SupabaseURL string
	SupabaseKey string
	Bucket      string
}

type RAGConfig struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	Hybrid       bool
	MinScore     float64
	Collection   string
	// ChunkStrategy is "recursive" or "fixed".
	ChunkStrategy string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type WorkerConfig struct {
	Concurrency int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; variables already set win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	chunkSize, err := getEnvInt("CHUNK_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("invalid CHUNK_SIZE: %w", err)
	}

	chunkOverlap, err := getEnvInt("CHUNK_OVERLAP", 200)
	if err != nil {
		return nil, fmt.Errorf("invalid CHUNK_OVERLAP: %w", err)
	}

	topK, err := getEnvInt("RETRIEVAL_TOP_K", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRIEVAL_TOP_K: %w", err)
	}

	hybrid, err := getEnvBool("RETRIEVAL_HYBRID", false)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRIEVAL_HYBRID: %w", err)
	}

	minScore, err := getEnvFloat("RETRIEVAL_MIN_SCORE", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRIEVAL_MIN_SCORE: %w", err)
	}

	rps, err := getEnvFloat("RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := getEnvInt("RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	concurrency, err := getEnvInt("WORKER_CONCURRENCY", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        port,
			CORSOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		LLM: LLMConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:        getEnv("OLLAMA_URL", ""),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			DefaultModel:     getEnv("LLM_DEFAULT_MODEL", "gpt-4.1-nano"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			MaxRetries:       maxRetries,
		},
		Embedding: EmbeddingConfig{
			Provider: getEnv("EMBEDDING_PROVIDER", "openai"),
			Model:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Storage: StorageConfig{
			Backend:     getEnv("BLOB_BACKEND", "local"),
			LibraryPath: getEnv("LIBRARY_PATH", "library"),
			SupabaseURL: getEnv("SUPABASE_URL", ""),
			SupabaseKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:      getEnv("STORAGE_BUCKET", "library"),
		},
		RAG: RAGConfig{
			ChunkSize:     chunkSize,
			ChunkOverlap:  chunkOverlap,
			TopK:          topK,
			Hybrid:        hybrid,
			MinScore:      minScore,
			Collection:    getEnv("VECTOR_COLLECTION", "document_context"),
			ChunkStrategy: getEnv("CHUNK_STRATEGY", "recursive"),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
		Worker: WorkerConfig{
			Concurrency: concurrency,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Embedding.Provider == "openai" && c.LLM.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.Storage.Backend == "supabase" && (c.Storage.SupabaseURL == "" || c.Storage.SupabaseKey == "") {
		missing = append(missing, "SUPABASE_URL", "SUPABASE_SERVICE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.RAG.ChunkOverlap, c.RAG.ChunkSize)
	}
	if c.RAG.ChunkStrategy != "recursive" && c.RAG.ChunkStrategy != "fixed" {
		return fmt.Errorf("CHUNK_STRATEGY must be recursive or fixed, got %q", c.RAG.ChunkStrategy)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
