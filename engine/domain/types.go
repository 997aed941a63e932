// Package domain defines the job and resume records of the indexing pipeline
// together with the schema that gates raw input before it is embedded or
// stored. It acts as the validation gate at pipeline entry points.
package domain

import (
	"strings"
	"time"
)

// DefaultLocation is used when a job posting does not name a location.
const DefaultLocation = "Remote"

// TimestampLayout is the string form timestamps take at the storage boundary.
const TimestampLayout = time.RFC3339Nano

// JobRecord is one validated job posting. ID is the upsert key: two records
// with the same ID are the same logical job.
type JobRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Description string    `json:"description"`
	URL         string    `json:"url,omitempty"`
	Location    string    `json:"location"`
	Tags        []string  `json:"tags"`
	PostedAt    time.Time `json:"posted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Metadata flattens the record into the scalar payload stored next to its
// vector. Timestamps become RFC 3339 strings and tags a comma-joined string.
// The tag join is lossy: a tag that itself contains a comma comes back as
// two tags when the payload is split.
func (j JobRecord) Metadata() map[string]any {
	return map[string]any{
		"kind":        "job",
		"job_id":      j.ID,
		"title":       j.Title,
		"company":     j.Company,
		"description": j.Description,
		"url":         j.URL,
		"location":    j.Location,
		"tags":        strings.Join(j.Tags, ","),
		"posted_at":   FormatTimestamp(j.PostedAt),
		"updated_at":  FormatTimestamp(j.UpdatedAt),
	}
}

// ResumeRecord is the raw text extracted from one resume file.
type ResumeRecord struct {
	Filename string `json:"filename"`
	RawText  string `json:"raw_text"`
}

// Metadata returns the scalar payload stored for a resume.
func (r ResumeRecord) Metadata() map[string]any {
	return map[string]any{
		"kind":     "resume",
		"filename": r.Filename,
		"raw_text": r.RawText,
	}
}

// FormatTimestamp serializes t for storage.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// timestampLayouts are tried in order when a timestamp arrives as a string.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp accepts the ISO-8601 forms produced by upstream scrapers.
// Values without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
