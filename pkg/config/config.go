// Package config loads process configuration once at startup. Values come
// from an optional .env file, then the environment, then command-line
// flags in the binaries.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is passed explicitly to every component constructor. It is not
// reloaded while the process runs.
type Config struct {
	ProjectName      string
	ModelName        string
	EmbedBackend     string
	EmbedDims        int
	OllamaURL        string
	GeminiAPIKey     string
	VectorStore      string
	JobCollection    string
	ResumeCollection string
	ResumeDir        string
	NATSURL          string
	MetricsPort      int
	Port             string
	LogLevel         slog.Level
	AdzunaAppID      string
	AdzunaAppKey     string
}

// Load reads .env files (missing files are fine) and the environment.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		ProjectName:      envOr("PROJECT_NAME", "Hot Job Recommender"),
		ModelName:        envOr("MODEL_NAME", "all-minilm"),
		EmbedBackend:     strings.ToLower(envOr("EMBED_BACKEND", "ollama")),
		EmbedDims:        envInt("EMBED_DIMS", 384),
		OllamaURL:        envOr("OLLAMA_URL", "http://localhost:11434"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		VectorStore:      envOr("VECTOR_STORE", "qdrant://localhost:6334"),
		JobCollection:    envOr("JOB_COLLECTION", "jobs"),
		ResumeCollection: envOr("RESUME_COLLECTION", "resumes"),
		ResumeDir:        envOr("RESUME_DIR", "resumes"),
		NATSURL:          envOr("NATS_URL", "nats://localhost:4222"),
		MetricsPort:      envInt("METRICS_PORT", 9091),
		Port:             envOr("PORT", "8080"),
		LogLevel:         envLevel("LOG_LEVEL", slog.LevelInfo),
		AdzunaAppID:      os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:     os.Getenv("ADZUNA_APP_KEY"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func envLevel(key string, fallback slog.Level) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(os.Getenv(key))); err != nil {
		return fallback
	}
	return l
}

// Logger returns the JSON logger the binaries write to stdout.
func (c Config) Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.LogLevel}))
}
