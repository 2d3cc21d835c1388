// Package logging builds the process-wide slog logger.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/xrasdas/sharelink/internal/config"
)

// New returns a slog.Logger configured from the log section (JSON
// handler by default, text on request).
func New(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel(), AddSource: cfg.AddSource}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
