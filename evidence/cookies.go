package evidence

import (
	"context"
	"fmt"
	"strings"

	"github.com/hazyhaar/tracer/browser"
)

// Cookies merges the page's document.cookie view with the browser's cookie
// jar. The jar also sees HttpOnly cookies, so its entries win on name
// collisions.
func Cookies(ctx context.Context, tab *browser.Tab) (map[string]string, error) {
	out := make(map[string]string)

	raw, err := tab.Eval(ctx, `() => document.cookie`)
	if err != nil {
		return nil, fmt.Errorf("evidence: read document.cookie: %w", err)
	}
	for name, value := range parseCookieString(raw) {
		out[name] = value
	}

	jar, err := tab.Page.Context(ctx).Cookies(nil)
	if err != nil {
		return nil, fmt.Errorf("evidence: read cookie jar: %w", err)
	}
	for _, c := range jar {
		out[c.Name] = c.Value
	}

	return out, nil
}

// parseCookieString splits a document.cookie value ("a=1; b=2") into pairs.
func parseCookieString(s string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if name != "" {
			out[name] = strings.TrimSpace(value)
		}
	}
	return out
}
