// Package main implements the HTTP ingestion API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hotjob/indexer/engine/ingest"
	"github.com/hotjob/indexer/pkg/config"
	"github.com/hotjob/indexer/pkg/metrics"
	"github.com/hotjob/indexer/pkg/mid"
)

const maxBody = 8 << 20

func main() {
	cfg := config.Load()
	logger := cfg.Logger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()
	ix, closeStores, err := ingest.Open(ctx, cfg, logger, reg)
	if err != nil {
		return fmt.Errorf("open indexer: %w", err)
	}
	defer closeStores()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newHandler(ix, reg, logger, cfg.ResumeDir),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port, "project", cfg.ProjectName)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func newHandler(ix *ingest.Indexer, reg *metrics.Registry, logger *slog.Logger, resumeDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", reg.Handler())
	mux.HandleFunc("POST /v1/jobs", handleJobs(ix))
	mux.HandleFunc("POST /v1/resumes", handleResume(ix, resumeDir, logger))

	return mid.Chain(mux,
		mid.Recover(logger),
		mid.OTel("indexer-api"),
		mid.Logger(logger),
		mid.Metrics(reg),
		mid.MaxBody(maxBody),
	)
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// JobsResponse is the JSON response for POST /v1/jobs.
type JobsResponse struct {
	Persisted int              `json:"persisted"`
	Rejected  int              `json:"rejected"`
	Failed    int              `json:"failed"`
	Outcomes  []ingest.Outcome `json:"outcomes"`
}

// handleJobs indexes a JSON array of raw job records. Any backend failure
// turns the status into 502; the body still lists every outcome.
func handleJobs(ix *ingest.Indexer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raws []ingest.Raw
		if err := json.NewDecoder(r.Body).Decode(&raws); err != nil {
			writeError(w, http.StatusBadRequest, "body must be a JSON array of job objects")
			return
		}

		report := ix.Run(r.Context(), raws)
		status := http.StatusOK
		if report.Failed() > 0 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, JobsResponse{
			Persisted: report.Persisted(),
			Rejected:  report.Rejected(),
			Failed:    report.Failed(),
			Outcomes:  report.Outcomes,
		})
	}
}

// ResumeRequest is the JSON body for POST /v1/resumes. Path is relative to
// the server's resume directory.
type ResumeRequest struct {
	Path string `json:"path"`
}

var errOutsideResumeDir = errors.New("path escapes the resume directory")

// resolveResume joins rel onto root and refuses anything that leaves root,
// lexically or through a symlink. A path that does not exist yet is
// returned as is so admission can report it as missing.
func resolveResume(root, rel string) (string, error) {
	if !filepath.IsLocal(rel) {
		return "", errOutsideResumeDir
	}
	full := filepath.Join(root, rel)
	real, err := filepath.EvalSymlinks(full)
	if err != nil {
		return full, nil
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resume dir: %w", err)
	}
	if within, err := filepath.Rel(realRoot, real); err != nil || !filepath.IsLocal(within) {
		return "", errOutsideResumeDir
	}
	return full, nil
}

func handleResume(ix *ingest.Indexer, root string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResumeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
			writeError(w, http.StatusBadRequest, "path is required")
			return
		}
		path, err := resolveResume(root, req.Path)
		if err != nil {
			logger.Warn("resume path refused", "path", req.Path, "err", err)
			writeError(w, http.StatusBadRequest, errOutsideResumeDir.Error())
			return
		}

		err = ix.IndexResume(r.Context(), path)
		if err == nil {
			writeJSON(w, http.StatusCreated, map[string]string{"status": "indexed", "path": req.Path})
			return
		}

		var se *ingest.StageError
		if errors.As(err, &se) && (se.Stage == ingest.StageValidate || se.Stage == ingest.StageExtract || errors.Is(err, ingest.ErrDegenerateEmbedding)) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.Error("resume indexing failed", "path", req.Path, "err", err)
		writeError(w, http.StatusBadGateway, "resume could not be stored")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
