package evidence

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/hazyhaar/tracer/browser"
)

//go:embed probe_globals.js
var probeGlobalsJS string

// ProbeGlobals evaluates a dotted-path existence probe in the page realm.
// It returns the paths that resolve to a defined value, plus the string
// values of the requested version globals. Property access that throws
// (cross-origin proxies) counts as absent, never as an error.
func ProbeGlobals(ctx context.Context, tab *browser.Tab, paths, versionPaths []string) ([]string, map[string]string, error) {
	var probe struct {
		Found    []string          `json:"found"`
		Versions map[string]string `json:"versions"`
	}
	if err := tab.EvalJSON(ctx, probeGlobalsJS, &probe, paths, versionPaths); err != nil {
		return nil, nil, fmt.Errorf("evidence: probe globals: %w", err)
	}
	return probe.Found, probe.Versions, nil
}
