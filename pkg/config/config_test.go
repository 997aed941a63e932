package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MODEL_NAME", "EMBED_DIMS", "VECTOR_STORE", "JOB_COLLECTION", "EMBED_BACKEND", "LOG_LEVEL", "RESUME_COLLECTION", "RESUME_DIR"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.ModelName != "all-minilm" || c.EmbedDims != 384 {
		t.Fatalf("model=%s dims=%d", c.ModelName, c.EmbedDims)
	}
	if c.VectorStore != "qdrant://localhost:6334" || c.JobCollection != "jobs" || c.ResumeCollection != "resumes" {
		t.Fatalf("store=%s jobs=%s resumes=%s", c.VectorStore, c.JobCollection, c.ResumeCollection)
	}
	if c.ResumeDir != "resumes" {
		t.Fatalf("resume dir=%s", c.ResumeDir)
	}
	if c.EmbedBackend != "ollama" || c.LogLevel != slog.LevelInfo {
		t.Fatalf("backend=%s level=%s", c.EmbedBackend, c.LogLevel)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("EMBED_DIMS", "768")
	t.Setenv("EMBED_BACKEND", "Gemini")
	t.Setenv("VECTOR_STORE", "memory://")
	t.Setenv("LOG_LEVEL", "debug")
	c := FromEnv()
	if c.EmbedDims != 768 || c.EmbedBackend != "gemini" || c.VectorStore != "memory://" || c.LogLevel != slog.LevelDebug {
		t.Fatalf("config = %+v", c)
	}
}

func TestBadIntFallsBack(t *testing.T) {
	t.Setenv("METRICS_PORT", "nine")
	if FromEnv().MetricsPort != 9091 {
		t.Fatal("expected default port")
	}
}

func TestLoadDotEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(p, []byte("JOB_COLLECTION=postings\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JOB_COLLECTION", "")
	os.Unsetenv("JOB_COLLECTION")
	c := Load(p)
	t.Cleanup(func() { os.Unsetenv("JOB_COLLECTION") })
	if c.JobCollection != "postings" {
		t.Fatalf("collection = %s", c.JobCollection)
	}
}

func TestLoadMissingFile(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "absent.env"))
	if c.ProjectName == "" {
		t.Fatal("defaults missing")
	}
}
