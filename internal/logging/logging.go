// Package logging builds the application slog loggers.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// New creates a logger writing to w (stdout when nil) in the given format.
// Unknown formats fall back to JSON.
func New(level slog.Level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, FormatText) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
