// Package fonts identifies the typefaces a page actually renders with.
// An injected sampler harvests raw computed-style, @font-face and
// document.fonts data; a phased pipeline reconciles obfuscated family
// tokens to human-readable names, classifies fonts (mono, serif, icon),
// normalizes variable-font weight sets and produces renderable previews.
// Every phase is independently guarded: a failing phase is logged and
// skipped, and total failure yields an empty result, never an error.
package fonts

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// Sample is one element's computed font observation.
type Sample struct {
	Family        string `json:"family"` // first token of the font-family stack
	Stack         string `json:"stack"`  // full font-family value
	Weight        string `json:"weight"`
	Style         string `json:"style"`
	LetterSpacing string `json:"letterSpacing"`
	LineHeight    string `json:"lineHeight"`
	Size          string `json:"size"`
}

// FontFace is a parsed @font-face rule.
type FontFace struct {
	Family  string   `json:"family"`
	Locals  []string `json:"locals"`  // local() fallback names
	Sources []string `json:"sources"` // url() sources, absolute
}

// LoadedFace is one entry from document.fonts.
type LoadedFace struct {
	Family string `json:"family"`
	Weight string `json:"weight"`
	Style  string `json:"style"`
}

// IconCandidate is an element using icon-class naming conventions, or
// rendering a lone pictographic character.
type IconCandidate struct {
	Family  string   `json:"family"`
	Classes string   `json:"classes"`
	Attrs   []string `json:"attrs"`
	Before  string   `json:"before"` // ::before content, raw CSS string
	After   string   `json:"after"`
	Text    string   `json:"text"`
}

// PageText carries the page copy the preview-text policy chooses from.
type PageText struct {
	Title           string `json:"title"`
	OGDescription   string `json:"ogDescription"`
	MetaDescription string `json:"metaDescription"`
	FirstParagraph  string `json:"firstParagraph"`
}

// Harvest is the raw sampler output for one page.
type Harvest struct {
	Primary  []Sample        `json:"primary"`  // first ~300 elements
	Extended []Sample        `json:"extended"` // elements 300-800
	Faces    []FontFace      `json:"faces"`
	Loaded   []LoadedFace    `json:"loaded"`
	Links    []string        `json:"links"` // stylesheet link hrefs
	Icons    []IconCandidate `json:"icons"`
	Text     PageText        `json:"text"`
}

// Source classifies where a font comes from.
const (
	SourceGoogle = "google"
	SourceAdobe  = "adobe"
	SourceCustom = "custom"
	SourceSystem = "system"
)

// FontInfo is one rendered font family in the final output.
type FontInfo struct {
	Family         string   `json:"family"`    // resolved display name
	CSSFamily      string   `json:"cssFamily"` // token as the page's CSS uses it
	Weights        []int    `json:"weights"`
	Styles         []string `json:"styles"`
	LetterSpacings []string `json:"letterSpacings"`
	LineHeights    []string `json:"lineHeights"`
	Sizes          []string `json:"sizes"`
	Source         string   `json:"source"`
	IsMono         bool     `json:"isMono"`
	IsSerif        bool     `json:"isSerif"`
	IsIconFont     bool     `json:"isIconFont"`
	IconSamples    []string `json:"iconSamples,omitempty"`
	Preview        *Preview `json:"preview,omitempty"`
}

// Config controls extraction.
type Config struct {
	// PreviewSource selects the preview text policy:
	// pangram, og-description, or page-content.
	PreviewSource string

	// HTTPClient fetches font files for embedded previews.
	HTTPClient *http.Client

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.PreviewSource == "" {
		c.PreviewSource = "pangram"
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Pipeline turns a harvest into FontInfo records. Split from the sampler so
// the full phase sequence runs against fixtures without a browser.
type Pipeline struct {
	cfg      Config
	renderer BitmapRenderer
}

// BitmapRenderer renders a preview bitmap in the live page context, used
// when a font file cannot be fetched (CORS). Nil disables the fallback.
type BitmapRenderer interface {
	RenderBitmap(ctx context.Context, family string, weight int, text string) (string, error)
}

// NewPipeline creates a font pipeline.
func NewPipeline(cfg Config, renderer BitmapRenderer) *Pipeline {
	cfg.defaults()
	return &Pipeline{cfg: cfg, renderer: renderer}
}

// Run executes the phased pipeline over one harvest.
func (pl *Pipeline) Run(ctx context.Context, h *Harvest) []FontInfo {
	log := pl.cfg.Logger

	byToken := make(map[string]*details)
	var order []string

	phase := func(name string, fn func() error) {
		defer func() {
			if r := recover(); r != nil {
				log.Warn("fonts: phase panicked", "phase", name, "panic", r)
			}
		}()
		if err := fn(); err != nil {
			log.Warn("fonts: phase failed", "phase", name, "error", err)
		}
	}

	phase("scan-primary", func() error {
		order = accumulate(byToken, order, h.Primary)
		return nil
	})
	phase("scan-extended", func() error {
		order = accumulate(byToken, order, h.Extended)
		return nil
	})
	phase("reconcile-names", func() error {
		for _, d := range byToken {
			d.resolved = resolveName(d.token, h.Faces, h.Loaded)
		}
		return nil
	})
	phase("source-detection", func() error {
		markSources(byToken, h.Faces)
		return nil
	})
	phase("google-fonts", func() error {
		markGoogleFonts(byToken, h.Links)
		return nil
	})
	phase("adobe-fonts", func() error {
		markAdobeFonts(byToken, h.Links)
		return nil
	})
	phase("icon-fonts", func() error {
		classifyIconFonts(byToken, h.Icons)
		return nil
	})
	phase("icon-samples", func() error {
		harvestIconSamples(byToken, h.Icons)
		return nil
	})
	phase("normalize-weights", func() error {
		for _, d := range byToken {
			d.finalWeights = NormalizeWeights(d.weightList())
		}
		return nil
	})

	var out []FontInfo
	for _, token := range order {
		d := byToken[token]
		if d == nil || systemFamily(d.resolved) || systemFamily(d.token) {
			continue
		}
		info := d.toInfo()
		phase("preview", func() error {
			var err error
			info.Preview, err = pl.buildPreview(ctx, d, h)
			return err
		})
		out = append(out, info)
	}

	log.Debug("fonts: pipeline complete", "families", len(out))
	return out
}

// accumulate folds samples into per-token accumulators, preserving first-
// sighting order.
func accumulate(byToken map[string]*details, order []string, samples []Sample) []string {
	for _, s := range samples {
		if s.Family == "" {
			continue
		}
		d, ok := byToken[s.Family]
		if !ok {
			d = newDetails(s.Family, s.Stack)
			byToken[s.Family] = d
			order = append(order, s.Family)
		}
		d.observe(s)
	}
	return order
}

func sortedStrings(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
