// Package scan orchestrates a full page analysis: navigate a tab, collect
// the evidence snapshot, and run the three extractors over it. Extractor
// failures are isolated; a scan returns whatever subset succeeded.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hazyhaar/tracer/browser"
	"github.com/hazyhaar/tracer/colors"
	"github.com/hazyhaar/tracer/evidence"
	"github.com/hazyhaar/tracer/fonts"
	"github.com/hazyhaar/tracer/techdetect"
)

// deepScanSettle is how long a deep scan waits after load before
// collecting the broadened evidence bundle, so that deferred scripts,
// storage writes and late resource fetches are observable.
const deepScanSettle = 2500 * time.Millisecond

// Config controls scanning.
type Config struct {
	// DeepScan enables the broadened evidence channels by default;
	// per-scan options can override.
	DeepScan bool

	// FontPreviewSource selects the font preview text policy.
	FontPreviewSource string

	// NavigateTimeout bounds a single page load. Zero means 45s.
	NavigateTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 45 * time.Second
	}
	if c.FontPreviewSource == "" {
		c.FontPreviewSource = "pangram"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Options are per-scan overrides.
type Options struct {
	// Deep overrides Config.DeepScan when non-nil.
	Deep *bool
}

// Result is one completed scan.
type Result struct {
	// Token orders scans: a caller holding results from several scans can
	// drop any whose token is lower than the newest it has seen.
	Token int64 `json:"token"`

	URL           string    `json:"url"`
	Domain        string    `json:"domain"`
	Title         string    `json:"title,omitempty"`
	Favicon       string    `json:"favicon,omitempty"`
	OGTitle       string    `json:"ogTitle,omitempty"`
	OGDescription string    `json:"ogDescription,omitempty"`
	OGImage       string    `json:"ogImage,omitempty"`
	DeepScan      bool      `json:"deepScan"`
	ScannedAt     time.Time `json:"scannedAt"`

	Colors []colors.ColorInfo    `json:"colors"`
	Fonts  []fonts.FontInfo      `json:"fonts"`
	Techs  []techdetect.TechInfo `json:"techs"`
}

// Scanner runs scans against one managed browser.
type Scanner struct {
	cfg   Config
	mgr   *browser.Manager
	db    *techdetect.Database
	token atomic.Int64
}

// NewScanner creates a Scanner over an already-started browser manager.
func NewScanner(cfg Config, mgr *browser.Manager, db *techdetect.Database) *Scanner {
	cfg.defaults()
	return &Scanner{cfg: cfg, mgr: mgr, db: db}
}

// Scan navigates to pageURL and runs the full extraction pipeline.
func (s *Scanner) Scan(ctx context.Context, pageURL string, opts Options) (*Result, error) {
	pageURL, err := normalizeURL(pageURL)
	if err != nil {
		return nil, err
	}

	deep := s.cfg.DeepScan
	if opts.Deep != nil {
		deep = *opts.Deep
	}

	token := s.token.Add(1)
	log := s.cfg.Logger.With("token", token, "url", pageURL)
	log.Info("scan: starting", "deep", deep)

	tab, err := browser.NewTab(s.mgr)
	if err != nil {
		return nil, fmt.Errorf("scan: open tab: %w", err)
	}
	defer tab.Close()

	// Header capture must precede navigation; the document response event
	// fires exactly once.
	hc, err := evidence.CaptureHeaders(tab)
	if err != nil {
		return nil, fmt.Errorf("scan: attach header capture: %w", err)
	}
	defer hc.Stop()

	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigateTimeout)
	defer cancel()
	if err := tab.Navigate(navCtx, pageURL); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	if deep {
		select {
		case <-time.After(deepScanSettle):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ev, meta, err := evidence.Collect(ctx, tab, hc, s.db, deep, log)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	res := &Result{
		Token:         token,
		URL:           pageURL,
		Domain:        domainOf(pageURL),
		Title:         meta.Title,
		Favicon:       meta.Favicon,
		OGTitle:       meta.OGTitle,
		OGDescription: meta.OGDescription,
		OGImage:       meta.OGImage,
		DeepScan:      deep,
		ScannedAt:     time.Now().UTC(),
	}

	res.Colors = colors.Extract(ctx, tab, log)
	res.Fonts = fonts.Extract(ctx, tab, fonts.Config{
		PreviewSource: s.cfg.FontPreviewSource,
		Logger:        log,
	})
	res.Techs = techdetect.Detect(s.db, *ev, log)

	log.Info("scan: complete",
		"colors", len(res.Colors),
		"fonts", len(res.Fonts),
		"techs", len(res.Techs))
	return res, nil
}

// normalizeURL validates the target and defaults the scheme to https.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("scan: empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("scan: parse url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("scan: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("scan: url %q has no host", raw)
	}
	return u.String(), nil
}

func domainOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
