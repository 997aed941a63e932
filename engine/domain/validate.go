package domain

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AllowedResumeExtensions enumerates resume formats admitted for processing.
var AllowedResumeExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".rtf":  true,
}

// Validator is the gatekeeper between raw input and the rest of the pipeline.
// Rejections are logged and never returned as panics.
type Validator struct {
	log *slog.Logger
	now func() time.Time
}

// NewValidator creates a Validator. A nil logger falls back to slog.Default.
func NewValidator(log *slog.Logger) *Validator {
	if log == nil {
		log = slog.Default()
	}
	return &Validator{log: log, now: time.Now}
}

// WithClock returns a copy of v that stamps absent timestamps using now.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	return &Validator{log: v.log, now: now}
}

// ParseJob validates raw and returns the record or a Violations error.
func (v *Validator) ParseJob(raw map[string]any) (JobRecord, error) {
	return ParseJob(raw, v.now())
}

// Admit validates raw like ParseJob and logs a rejection with every
// failing field. It is the entry gate used by the pipeline stages.
func (v *Validator) Admit(raw map[string]any) (JobRecord, error) {
	job, err := v.ParseJob(raw)
	if err != nil {
		var violations Violations
		if errors.As(err, &violations) {
			v.log.Error("validate: job rejected",
				"id", raw["id"],
				"fields", violations.Fields(),
				"errors", violations.Reasons(),
			)
		} else {
			v.log.Error("validate: job rejected", "id", raw["id"], "error", err)
		}
		return JobRecord{}, err
	}
	v.log.Info("validate: job accepted", "id", job.ID, "title", job.Title, "company", job.Company)
	return job, nil
}

// ValidateAndParseJob converts a raw mapping into a JobRecord. A record that
// violates the schema is logged and ok is false.
func (v *Validator) ValidateAndParseJob(raw map[string]any) (JobRecord, bool) {
	job, err := v.Admit(raw)
	return job, err == nil
}

// IsValidResume reports whether path exists and has an allowed extension.
func (v *Validator) IsValidResume(path string) bool {
	if _, err := os.Stat(path); err != nil {
		v.log.Error("validate: resume not found", "path", path, "error", err)
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !AllowedResumeExtensions[ext] {
		v.log.Warn("validate: unsupported resume format", "path", path, "ext", ext)
		return false
	}
	return true
}
