package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Settings holds the values that differ between deployments. Everything else
// stays a constant in environmentVariables.go.
type Settings struct {
	EmbeddingModel     string
	EmbeddingModelName string
	EmbeddingDimension int
	EmbeddingBaseURL   string

	GoogleAPIKey string
	OpenAIAPIKey string
	JinaAPIKey   string

	SentenceTransformerURL string
	SentenceTransformerKey string
	BGEM3URL               string

	VectorDB       string
	QdrantHost     string
	QdrantPort     int
	QdrantAPIKey   string
	LocalStorePath string

	RedisAddr     string
	RedisPassword string

	AuthToken      string
	AllowAnonymous bool //serve the API without AUTH_TOKEN, local use only
	ListenAddr     string
}

// Load reads .env files (missing files are fine) and then the process
// environment. Explicit environment variables win over .env values.
func Load(envFiles ...string) (Settings, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	s := Settings{
		EmbeddingModel:         getEnv("EMBEDDING_MODEL", DefaultEmbeddingModel),
		EmbeddingModelName:     os.Getenv("EMBEDDING_MODEL_NAME"),
		EmbeddingBaseURL:       os.Getenv("EMBEDDING_BASE_URL"),
		GoogleAPIKey:           firstEnv("GOOGLE_API_KEY", "GEMINI_API_KEY"),
		OpenAIAPIKey:           os.Getenv("OPENAI_API_KEY"),
		JinaAPIKey:             os.Getenv("JINAAI_API_KEY"),
		SentenceTransformerURL: getEnv("SENTENCE_TRANSFORMER_URL", SentenceTransformerBaseURL),
		SentenceTransformerKey: os.Getenv("SENTENCE_TRANSFORMER_API_KEY"),
		BGEM3URL:               getEnv("BGE_M3_URL", BGEM3BaseURL),
		VectorDB:               strings.ToLower(getEnv("VECTOR_DB", VectorDBQdrant)),
		QdrantHost:             getEnv("QDRANT_HOST", QdrantHost),
		QdrantAPIKey:           os.Getenv("QDRANT_API_KEY"),
		LocalStorePath:         getEnv("LOCAL_STORE_PATH", LocalStorePath),
		RedisAddr:              getEnv("REDIS_ADDR", RedisAddr),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		AuthToken:              os.Getenv("AUTH_TOKEN"),
		ListenAddr:             getEnv("LISTEN_ADDR", ServerListenAddr),
	}

	var err error
	if s.EmbeddingDimension, err = getEnvInt("EMBEDDING_DIMENSION", 0); err != nil {
		return Settings{}, err
	}
	if s.QdrantPort, err = getEnvInt("QDRANT_PORT", QdrantGrpcPort); err != nil {
		return Settings{}, err
	}
	if s.AllowAnonymous, err = getEnvBool("ALLOW_ANONYMOUS", false); err != nil {
		return Settings{}, err
	}
	return s, s.Validate()
}

func (s Settings) Validate() error {
	switch s.VectorDB {
	case VectorDBQdrant, VectorDBLocal:
	default:
		return fmt.Errorf("VECTOR_DB must be %q or %q, got %q", VectorDBQdrant, VectorDBLocal, s.VectorDB)
	}
	if s.EmbeddingDimension < 0 {
		return fmt.Errorf("EMBEDDING_DIMENSION must not be negative, got %d", s.EmbeddingDimension)
	}
	return nil
}

// ValidateServer holds the API to a bearer token unless anonymous access was
// asked for explicitly.
func (s Settings) ValidateServer() error {
	if s.AuthToken == "" && !s.AllowAnonymous {
		return errors.New("AUTH_TOKEN is required, set ALLOW_ANONYMOUS=true to serve without it")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
