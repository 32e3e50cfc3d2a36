// Package evidence turns a loaded page into the read-only snapshot the
// detector consumes. Each collector reaches the page a different way:
// a CDP network listener for headers, the browser cookie jar merged with
// document.cookie, a page-realm probe for globals, and a single injected
// script for the DOM-side bundle.
package evidence

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/tracer/browser"
	"github.com/hazyhaar/tracer/techdetect"
)

//go:embed collect.js
var collectJS string

// PageMeta is the page identity the scan record carries alongside the
// detection output.
type PageMeta struct {
	Title         string `json:"title"`
	Favicon       string `json:"favicon"`
	OGTitle       string `json:"ogTitle"`
	OGDescription string `json:"ogDescription"`
	OGImage       string `json:"ogImage"`
	Description   string `json:"description"`
}

// bundle is the raw output of the injected DOM collector.
type bundle struct {
	Meta                map[string]string `json:"meta"`
	ScriptSrcs          []string          `json:"scriptSrcs"`
	InlineScripts       []string          `json:"inlineScripts"`
	CSSTexts            []string          `json:"cssTexts"`
	StorageKeys         []string          `json:"storageKeys"`
	ResourceURLs        []string          `json:"resourceUrls"`
	ServiceWorkerURL    string            `json:"serviceWorkerUrl"`
	ServiceWorkerActive bool              `json:"serviceWorkerActive"`
	Page                PageMeta          `json:"page"`
}

// Collect assembles the full evidence snapshot for a navigated tab. The
// header capture is passed in because it had to be attached before
// navigation. Partial failures degrade the snapshot instead of aborting:
// a page that blocks cookie access still gets its DOM channels scanned.
func Collect(ctx context.Context, tab *browser.Tab, hc *HeaderCapture, db *techdetect.Database, deep bool, logger *slog.Logger) (*techdetect.Evidence, PageMeta, error) {
	ev := &techdetect.Evidence{
		PageURL:  tab.PageURL,
		Headers:  hc.Headers(),
		DeepScan: deep,
	}

	html, err := tab.HTML(ctx)
	if err != nil {
		// Without a DOM there is nothing to detect against.
		return nil, PageMeta{}, fmt.Errorf("evidence: snapshot dom: %w", err)
	}
	ev.HTML = html

	cookies, err := Cookies(ctx, tab)
	if err != nil {
		logger.Warn("evidence: cookie collection failed", "error", err)
		cookies = map[string]string{}
	}
	ev.Cookies = cookies

	globals, versions, err := ProbeGlobals(ctx, tab, db.GlobalPaths(), db.VersionGlobals())
	if err != nil {
		logger.Warn("evidence: globals probe failed", "error", err)
	}
	ev.Globals = globals
	ev.GlobalVersions = versions

	var b bundle
	if err := tab.EvalJSON(ctx, collectJS, &b, deep); err != nil {
		logger.Warn("evidence: dom collector failed", "error", err)
		return ev, PageMeta{}, nil
	}

	ev.Meta = b.Meta
	ev.ScriptSrcs = b.ScriptSrcs
	ev.InlineScripts = b.InlineScripts
	ev.CSSTexts = b.CSSTexts
	ev.StorageKeys = b.StorageKeys
	ev.ResourceURLs = b.ResourceURLs
	ev.ServiceWorkerURL = b.ServiceWorkerURL
	ev.ServiceWorkerActive = b.ServiceWorkerActive

	return ev, b.Page, nil
}
