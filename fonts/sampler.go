package fonts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/hazyhaar/tracer/browser"
)

//go:embed sample_fonts.js
var samplerJS string

//go:embed render_preview.js
var renderJS string

// Extract samples the live page and runs the full font pipeline. It never
// fails: sampler errors degrade to an empty result with a logged warning.
func Extract(ctx context.Context, tab *browser.Tab, cfg Config) []FontInfo {
	cfg.defaults()

	var h Harvest
	if err := tab.EvalJSON(ctx, samplerJS, &h); err != nil {
		cfg.Logger.Warn("fonts: sampling failed", "url", tab.PageURL, "error", err)
		return nil
	}

	pl := NewPipeline(cfg, &tabRenderer{tab: tab})
	out := pl.Run(ctx, &h)

	cfg.Logger.Debug("fonts: extracted",
		"url", tab.PageURL,
		"samples", len(h.Primary)+len(h.Extended),
		"families", len(out))
	return out
}

// tabRenderer renders preview bitmaps in the live page context.
type tabRenderer struct {
	tab *browser.Tab
}

func (r *tabRenderer) RenderBitmap(ctx context.Context, family string, weight int, text string) (string, error) {
	img, err := r.tab.Eval(ctx, renderJS, family, weight, text)
	if err != nil {
		return "", fmt.Errorf("fonts: render bitmap: %w", err)
	}
	return img, nil
}
