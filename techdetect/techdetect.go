// Package techdetect identifies the technologies a page uses from layered
// evidence: URL, response headers, cookies, page globals, DOM structure,
// scripts, stylesheets, and (in deep scans) inline script bodies, storage
// keys and resource timing. A declarative pattern database supplies the
// matching rules; a fixed sequence of rule passes (requirements,
// implications, exclusions, false-positive corrections, CMS arbitration)
// turns raw matches into the final technology list.
package techdetect

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TechInfo is one detected technology in the final output.
type TechInfo struct {
	Name       string `json:"name"`
	Confidence int    `json:"confidence"`
	Version    string `json:"version,omitempty"`
	Category   string `json:"category"`
	Signal     bool   `json:"isSignal,omitempty"`
	URL        string `json:"url"`
}

// Detect evaluates the pattern database against the evidence snapshot.
// It never fails: malformed evidence degrades to fewer (or zero) findings,
// and an internal panic is swallowed in favour of whatever was resolved.
func Detect(db *Database, ev Evidence, logger *slog.Logger) (out []TechInfo) {
	if logger == nil {
		logger = slog.Default()
	}
	if db == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("techdetect: detection panicked", "url", ev.PageURL, "panic", r)
			out = nil
		}
	}()

	var doc *goquery.Document
	if ev.HTML != "" {
		d, err := goquery.NewDocumentFromReader(strings.NewReader(ev.HTML))
		if err != nil {
			logger.Warn("techdetect: parse HTML", "url", ev.PageURL, "error", err)
		} else {
			doc = d
		}
	}

	f := newFindings()
	for _, c := range db.compiled {
		evalPattern(c, &ev, doc, f)
	}
	runHeuristics(&ev, f)

	f = applyRequirements(db, f)
	f = applyImplications(db, f)
	f = applyExclusions(db, f)
	f = applyFalsePositives(&ev, f)
	f = resolveCMSConflict(&ev, doc, f)

	for _, name := range f.Names() {
		p, ok := db.Lookup(name)
		if !ok {
			// Heuristics and implications can only add names the database
			// knows, but the output pass re-checks anyway.
			continue
		}
		fd, _ := f.Get(name)
		out = append(out, TechInfo{
			Name:       p.Name,
			Confidence: fd.Confidence,
			Version:    fd.Version,
			Category:   p.Category,
			Signal:     p.Signal,
			URL:        p.URL,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Name < out[j].Name
	})

	logger.Debug("techdetect: complete",
		"url", ev.PageURL, "deep", ev.DeepScan, "technologies", len(out))
	return out
}
