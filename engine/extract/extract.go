// Package extract turns resume and job documents into plain text. Each
// supported format has exactly one handler; anything else maps to
// FormatUnknown and yields empty text.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"
)

// Format is the closed set of document formats the extractor understands.
type Format int

const (
	FormatUnknown Format = iota
	FormatTXT
	FormatPDF
	FormatDOCX
)

func (f Format) String() string {
	switch f {
	case FormatTXT:
		return "txt"
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	default:
		return "unknown"
	}
}

// ErrUnsupportedFormat is logged for paths whose extension has no handler.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrInvalidUTF8 is returned by the txt handler for undecodable content.
var ErrInvalidUTF8 = errors.New("invalid utf-8")

// Extension returns the lowercased substring after the last '.' of path,
// or the whole lowercased path when it has no dot.
func Extension(path string) string {
	lower := strings.ToLower(path)
	if i := strings.LastIndexByte(lower, '.'); i >= 0 {
		return lower[i+1:]
	}
	return lower
}

// FormatOf maps a path to its Format by extension, case-insensitively.
func FormatOf(path string) Format {
	switch Extension(path) {
	case "txt":
		return FormatTXT
	case "pdf":
		return FormatPDF
	case "docx":
		return FormatDOCX
	default:
		return FormatUnknown
	}
}

// Handler reads the text out of one document.
type Handler func(path string) (string, error)

// Extractor dispatches paths to the handler for their format.
type Extractor struct {
	log      *slog.Logger
	handlers map[Format]Handler
}

// New creates an Extractor with the built-in txt, pdf and docx handlers.
func New(log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{
		log: log,
		handlers: map[Format]Handler{
			FormatTXT:  readText,
			FormatPDF:  pdfText,
			FormatDOCX: docxText,
		},
	}
}

// WithHandler returns a copy of e that uses h for format f.
func (e *Extractor) WithHandler(f Format, h Handler) *Extractor {
	handlers := make(map[Format]Handler, len(e.handlers))
	for k, v := range e.handlers {
		handlers[k] = v
	}
	handlers[f] = h
	return &Extractor{log: e.log, handlers: handlers}
}

// ExtractText returns the text of the document at path. It never fails:
// every error is logged and reported as empty text, which callers must
// treat as terminal for that document.
func (e *Extractor) ExtractText(path string) string {
	text, err := e.Extract(path)
	if err != nil {
		e.log.Error("extract: failed", "path", path, "format", FormatOf(path).String(), "error", err)
		return ""
	}
	return text
}

// Extract is ExtractText with the failure reason returned instead of logged.
func (e *Extractor) Extract(path string) (string, error) {
	f := FormatOf(path)
	h, ok := e.handlers[f]
	if !ok {
		return "", fmt.Errorf("extract: %w: %q", ErrUnsupportedFormat, Extension(path))
	}
	text, err := h(path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", f, err)
	}
	return text, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}
