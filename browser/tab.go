package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"
)

// Tab wraps a Rod page. A tab is created blank so callers can attach
// network listeners before navigation starts (response headers for the
// main document are only observable from that point on).
type Tab struct {
	Page    *rod.Page
	PageURL string
	logger  *slog.Logger

	// Seams over the Rod page, swappable in tests (a real page needs a
	// live browser).
	doNavigate func(ctx context.Context, url string) error
	doWaitLoad func(ctx context.Context) error
}

// NewTab creates a blank stealth tab. Navigate separately.
func NewTab(mgr *Manager) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	t := &Tab{Page: page, logger: mgr.cfg.Logger}
	t.doNavigate = func(ctx context.Context, url string) error {
		return page.Context(ctx).Navigate(url)
	}
	t.doWaitLoad = func(ctx context.Context) error {
		return page.Context(ctx).WaitLoad()
	}
	return t, nil
}

// Navigate loads the URL and waits for the load event, bounded by the
// caller's context. A page that never fires load within the deadline
// still yields a usable DOM, so that failure is logged and the tab is
// treated as navigated; only the navigation itself is fatal.
func (t *Tab) Navigate(ctx context.Context, pageURL string) error {
	if err := t.doNavigate(ctx, pageURL); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	t.PageURL = pageURL

	if err := t.doWaitLoad(ctx); err != nil {
		t.logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}
	return nil
}

// HTML serialises the complete DOM as outer HTML.
func (t *Tab) HTML(ctx context.Context) (string, error) {
	res, err := t.Page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("browser: get DOM: %w", err)
	}
	return res.Value.Str(), nil
}

// EvalJSON runs a JS function that returns a JSON string and unmarshals
// it into out. Sampler scripts use this to move structured records out of
// the page realm in one round-trip.
func (t *Tab) EvalJSON(ctx context.Context, js string, out any, args ...any) error {
	res, err := t.Page.Context(ctx).Eval(js, args...)
	if err != nil {
		return fmt.Errorf("browser: eval: %w", err)
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), out); err != nil {
		return fmt.Errorf("browser: parse eval payload: %w", err)
	}
	return nil
}

// Eval runs a JS function and returns the raw string value.
func (t *Tab) Eval(ctx context.Context, js string, args ...any) (string, error) {
	res, err := t.Page.Context(ctx).Eval(js, args...)
	if err != nil {
		return "", fmt.Errorf("browser: eval: %w", err)
	}
	return res.Value.Str(), nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}
