package techdetect

// Evidence is everything the detector knows about one loaded page. It is
// assembled by the collectors (network listener, page-realm prober, DOM
// collector) and treated as a read-only snapshot during detection; the
// detector never assumes direct access to the inspected page.
type Evidence struct {
	// PageURL is the final navigation URL.
	PageURL string

	// Headers maps lowercased response-header names of the main document
	// to lowercased values.
	Headers map[string]string

	// Cookies maps cookie names to values. The CDP cookie list takes
	// precedence over document.cookie on key collisions.
	Cookies map[string]string

	// Globals lists dotted global-property paths confirmed present in the
	// page realm; GlobalVersions maps version-global paths to their string
	// values.
	Globals        []string
	GlobalVersions map[string]string

	// Meta maps lowercased meta name/property attributes to content.
	Meta map[string]string

	// ScriptSrcs are external script URLs; InlineScripts are inline script
	// bodies (deep scan only).
	ScriptSrcs    []string
	InlineScripts []string

	// HTML is the serialised document. CSSTexts are readable stylesheet
	// texts (inline styles plus same-origin rules; cross-origin sheets are
	// silently absent).
	HTML     string
	CSSTexts []string

	// StorageKeys are local/session storage keys (deep scan only).
	StorageKeys []string

	// ResourceURLs are resource-timing entry names.
	ResourceURLs []string

	// ServiceWorkerURL is the controlling service worker's script URL, if
	// any; ServiceWorkerActive reports controller presence.
	ServiceWorkerURL    string
	ServiceWorkerActive bool

	// DeepScan enables the broadened evidence channels.
	DeepScan bool
}

func (ev *Evidence) hasGlobal(path string) bool {
	for _, g := range ev.Globals {
		if g == path {
			return true
		}
	}
	return false
}
