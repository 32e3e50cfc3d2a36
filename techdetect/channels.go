package techdetect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Per-channel confidence caps. A structural signal (URL, header, cookie,
// global, meta, script, selector) is worth full pattern confidence; raw
// text matches rank lower, deep-scan channels lower still.
const (
	capHTML           = 90
	capCSS            = 85
	capInlineScript   = 85
	capResourceTiming = 90
	capStorageKey     = 75
	capServiceWorker  = 90
	capGraphQL        = 85
	capCSSVariables   = 85
	capSharedSelector = 70
	capGenericCookie  = 50
	capGenericPlugin  = 60
)

// genericSessionCookies are session-cookie names so widely shared across
// unrelated stacks that a bare name match (no value constraint) says very
// little about which one set it.
var genericSessionCookies = map[string]bool{
	"PHPSESSID": true,
}

// genericPluginPath is the WordPress plugin directory convention; plenty of
// proxied and migrated sites keep the path without running WordPress, so a
// bare match is capped unless a more specific sub-pattern also fires.
const genericPluginPath = "wp-content/plugins"

// sharedSelectors are UI-framework selectors that also appear on many pages
// that merely copied the class vocabulary; they never yield more than 70.
var sharedSelectors = map[string]bool{
	".container":          true,
	"[class*=\"Mui\"]":    true,
	"[class*=\"chakra-\"]": true,
	".btn":                true,
}

// evalPattern runs every configured channel of one pattern against the
// evidence and records matches into the accumulator.
func evalPattern(c *compiledPattern, ev *Evidence, doc *goquery.Document, f *Findings) {
	p := c.p
	base := p.Confidence

	for _, re := range c.url {
		if re.MatchString(ev.PageURL) {
			f.Add(p.Name, base, "")
		}
	}

	for _, h := range c.headers {
		v, ok := ev.Headers[h.name]
		if !ok {
			continue
		}
		if h.value == nil || h.value.MatchString(v) {
			f.Add(p.Name, base, "")
		}
	}

	for _, cm := range c.cookies {
		for name, value := range ev.Cookies {
			if !cm.name.MatchString(name) {
				continue
			}
			if cm.value != nil {
				if cm.value.MatchString(value) {
					f.Add(p.Name, base, "")
				}
				continue
			}
			conf := base
			if genericSessionCookies[cm.nameSrc] {
				conf = min(conf, capGenericCookie)
			}
			f.Add(p.Name, conf, "")
		}
	}

	for _, g := range p.Match.Globals {
		if ev.hasGlobal(g) {
			f.Add(p.Name, base, "")
		}
	}

	for _, m := range c.meta {
		content, ok := ev.Meta[m.name]
		if !ok {
			continue
		}
		if m.content == nil || m.content.MatchString(content) {
			f.Add(p.Name, base, "")
		}
	}

	for _, sm := range c.scripts {
		for _, src := range ev.ScriptSrcs {
			if !sm.re.MatchString(src) {
				continue
			}
			conf := base
			if strings.Contains(sm.src, genericPluginPath) {
				conf = min(conf, capGenericPlugin)
			}
			f.Add(p.Name, conf, versionFromScript(c, src))
		}
	}

	if doc != nil {
		for _, sel := range p.Match.DOM {
			if doc.Find(sel).Length() == 0 {
				continue
			}
			conf := base
			if sharedSelectors[sel] {
				conf = min(conf, capSharedSelector)
			}
			f.Add(p.Name, conf, "")
		}
	}

	for _, re := range c.html {
		if ev.HTML != "" && re.MatchString(ev.HTML) {
			f.Add(p.Name, min(base, capHTML), "")
		}
	}

	for _, re := range c.css {
		for _, css := range ev.CSSTexts {
			if re.MatchString(css) {
				f.Add(p.Name, min(base, capCSS), "")
			}
		}
	}

	if ev.DeepScan {
		evalDeep(c, ev, f)
	}

	// Version sources are independent of which channel produced the match:
	// a meta-tag match still gets its version from the ng-version attribute
	// or a version global if one is configured.
	if fd, ok := f.Get(p.Name); ok && fd.Version == "" {
		if v := versionFromGlobals(p, ev); v != "" {
			fd.Version = v
		} else if doc != nil {
			fd.Version = versionFromDOM(c, doc)
		}
	}
}

// evalDeep runs the deep-scan-only channels for one pattern.
func evalDeep(c *compiledPattern, ev *Evidence, f *Findings) {
	p := c.p
	base := p.Confidence

	for _, sm := range c.scripts {
		for _, body := range ev.InlineScripts {
			if sm.re.MatchString(body) {
				f.Add(p.Name, min(base, capInlineScript), "")
			}
		}
		for _, u := range ev.ResourceURLs {
			if sm.re.MatchString(u) {
				f.Add(p.Name, min(base, capResourceTiming), "")
			}
		}
		if ev.ServiceWorkerURL != "" && sm.re.MatchString(ev.ServiceWorkerURL) {
			f.Add(p.Name, min(base, capServiceWorker), "")
		}
	}

	for _, g := range p.Match.Globals {
		ident := g
		if i := strings.IndexByte(ident, '.'); i > 0 {
			ident = ident[:i]
		}
		if len(ident) < 4 {
			// Too short to be a meaningful storage-key substring.
			continue
		}
		for _, key := range ev.StorageKeys {
			if strings.Contains(strings.ToLower(key), strings.ToLower(ident)) {
				f.Add(p.Name, min(base, capStorageKey), "")
			}
		}
	}
}

func versionFromGlobals(p *Pattern, ev *Evidence) string {
	if p.VersionGlobal == "" {
		return ""
	}
	return ev.GlobalVersions[p.VersionGlobal]
}

func versionFromScript(c *compiledPattern, src string) string {
	if c.versionScript == nil {
		return ""
	}
	m := c.versionScript.FindStringSubmatch(src)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func versionFromDOM(c *compiledPattern, doc *goquery.Document) string {
	vd := c.p.VersionDOM
	if vd == nil {
		return ""
	}
	sel := doc.Find(vd.Selector).First()
	if sel.Length() == 0 {
		return ""
	}
	var raw string
	if vd.Attr != "" {
		raw, _ = sel.Attr(vd.Attr)
	} else {
		raw = sel.Text()
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if c.versionDOM == nil {
		return raw
	}
	m := c.versionDOM.FindStringSubmatch(raw)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
