package techdetect

import (
	"regexp"
	"strings"
)

// Standalone heuristics for technologies whose presence shows up as a usage
// grammar rather than a discrete artifact.

// tailwindClassRe matches the responsive-prefix utility-class grammar
// (e.g. md:bg-blue-500, text-gray-900). Requiring several distinct hits
// keeps sites that merely borrowed one class name out.
var tailwindClassRe = regexp.MustCompile(`(?:^|[\s"'])(?:(?:sm|md|lg|xl|2xl|hover|focus|dark):)*(?:bg|text|border|ring|divide)-[a-z]+-(?:50|[1-9]00|950)\b`)

const tailwindMinHits = 3

// websocketSchemeRe matches ws:// and wss:// resource entries.
var websocketSchemeRe = regexp.MustCompile(`^wss?://`)

func runHeuristics(ev *Evidence, f *Findings) {
	// WebSocket usage: the page opened at least one ws:// connection.
	for _, u := range ev.ResourceURLs {
		if websocketSchemeRe.MatchString(u) {
			f.Add("WebSockets", 100, "")
			break
		}
	}

	// Utility-CSS grammar over the full source.
	if len(tailwindClassRe.FindAllStringIndex(ev.HTML, tailwindMinHits)) >= tailwindMinHits {
		f.Add("Tailwind CSS", 90, "")
	}

	// shadcn/ui emits data-slot markers and Tailwind ring-offset utilities
	// together; either alone is too generic.
	if strings.Contains(ev.HTML, `data-slot="`) &&
		(strings.Contains(ev.HTML, "ring-offset-background") || strings.Contains(ev.HTML, "bg-background")) {
		f.Add("shadcn/ui", 90, "")
	}

	// Controller presence is definitive regardless of scan mode; the URL
	// channel for service workers stays deep-scan-gated.
	if ev.ServiceWorkerActive {
		f.Add("PWA", 100, "")
	}

	if ev.DeepScan {
		runDeepHeuristics(ev, f)
	}
}

func runDeepHeuristics(ev *Evidence, f *Findings) {
	// GraphQL endpoint naming convention in fetched resources.
	for _, u := range ev.ResourceURLs {
		if strings.Contains(strings.ToLower(u), "/graphql") {
			f.Add("GraphQL", capGraphQL, "")
			break
		}
	}

	// shadcn/ui theme tokens: HSL custom properties plus the radius token.
	for _, css := range ev.CSSTexts {
		if strings.Contains(css, "--radius") && strings.Contains(css, "hsl(var(--") {
			f.Add("shadcn/ui", capCSSVariables, "")
			break
		}
	}
}
