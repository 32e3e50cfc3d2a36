package techdetect

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// implicationCap bounds the confidence an implied technology inherits from
// its parent.
const implicationCap = 80

// applyRequirements drops findings whose declared prerequisites are not all
// present in the input snapshot.
func applyRequirements(db *Database, f *Findings) *Findings {
	out := newFindings()
	for _, name := range f.Names() {
		fd, _ := f.Get(name)
		p, ok := db.Lookup(name)
		if ok && missingRequirement(p, f) {
			continue
		}
		out.Add(name, fd.Confidence, fd.Version)
	}
	return out
}

func missingRequirement(p *Pattern, f *Findings) bool {
	for _, req := range p.Requires {
		if !f.Has(req) {
			return true
		}
	}
	return false
}

// applyImplications adds implied technologies at min(parent, 80) and
// iterates to a fixed point so implication chains resolve fully.
func applyImplications(db *Database, f *Findings) *Findings {
	out := f.clone()
	for {
		changed := false
		for _, name := range out.Names() {
			p, ok := db.Lookup(name)
			if !ok {
				continue
			}
			parent, _ := out.Get(name)
			for _, implied := range p.Implies {
				if out.Has(implied) {
					continue
				}
				out.Add(implied, min(parent.Confidence, implicationCap), "")
				changed = true
			}
		}
		if !changed {
			return out
		}
	}
}

// applyExclusions removes technologies excluded by surviving findings,
// walking patterns in database order.
func applyExclusions(db *Database, f *Findings) *Findings {
	out := f.clone()
	for _, p := range db.Patterns {
		if !out.Has(p.Name) {
			continue
		}
		for _, ex := range p.Excludes {
			delete(out.m, ex)
		}
	}
	return out
}

// applyFalsePositives handles the known bad matches that survive the
// generic rule passes.
func applyFalsePositives(ev *Evidence, f *Findings) *Findings {
	out := f.clone()

	// GitHub's own styling trips the utility-framework matchers on every
	// repository page.
	if host := hostOf(ev.PageURL); host == "github.com" || strings.HasSuffix(host, ".github.com") {
		delete(out.m, "Tailwind CSS")
		delete(out.m, "Bootstrap")
	}

	// The product entry subsumes the vendor umbrella entry.
	if out.Has("Claude") {
		delete(out.m, "Anthropic")
	}

	return out
}

func hostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// resolveCMSConflict arbitrates simultaneous WordPress and Drupal findings.
// Both platforms' themes borrow each other's asset conventions, so pattern
// matches alone routinely report both; strong platform-specific signals
// decide, falling back to confidence, then to the more commonly deployed
// platform.
func resolveCMSConflict(ev *Evidence, doc *goquery.Document, f *Findings) *Findings {
	if !f.Has("WordPress") || !f.Has("Drupal") {
		return f
	}

	wp := wordpressStrongSignals(ev, doc)
	dr := drupalStrongSignals(ev)

	switch {
	case wp >= 2 && dr == 0:
		return f.without("Drupal")
	case dr >= 2 && wp == 0:
		return f.without("WordPress")
	}

	wpF, _ := f.Get("WordPress")
	drF, _ := f.Get("Drupal")
	if wpF.Confidence > drF.Confidence+10 {
		return f.without("Drupal")
	}
	if drF.Confidence > wpF.Confidence+10 {
		return f.without("WordPress")
	}

	// Tie: WordPress is deployed far more widely. A heuristic prior, not
	// an inference.
	return f.without("Drupal")
}

func wordpressStrongSignals(ev *Evidence, doc *goquery.Document) int {
	n := 0
	if strings.Contains(ev.HTML, "/wp-content/") || strings.Contains(ev.HTML, "/wp-includes/") {
		n++
	}
	if doc != nil && doc.Find("#wpadminbar").Length() > 0 {
		n++
	}
	if strings.Contains(strings.ToLower(ev.Meta["generator"]), "wordpress") {
		n++
	}
	return n
}

func drupalStrongSignals(ev *Evidence) int {
	n := 0
	if strings.Contains(strings.ToLower(ev.Meta["generator"]), "drupal") {
		n++
	}
	if ev.hasGlobal("Drupal") || ev.hasGlobal("drupalSettings") {
		n++
	}
	if strings.Contains(ev.HTML, "/sites/default/files") {
		n++
	}
	return n
}
