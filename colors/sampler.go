package colors

import (
	"context"
	_ "embed"
	"log/slog"

	"github.com/hazyhaar/tracer/browser"
)

//go:embed sample_colors.js
var samplerJS string

// Extract samples the live page and returns its ranked palette. It never
// fails: a sampler error (detached page, CSP eval block) degrades to an
// empty palette with a logged warning.
func Extract(ctx context.Context, tab *browser.Tab, logger *slog.Logger) []ColorInfo {
	if logger == nil {
		logger = slog.Default()
	}

	var observations []Observation
	if err := tab.EvalJSON(ctx, samplerJS, &observations); err != nil {
		logger.Warn("colors: sampling failed", "url", tab.PageURL, "error", err)
		return nil
	}

	palette := Rank(observations)
	logger.Debug("colors: extracted",
		"url", tab.PageURL,
		"observations", len(observations),
		"palette", len(palette))
	return palette
}
