package fonts

import (
	"strconv"
	"strings"
)

// knownSerifs are family-name fragments that identify serif faces the name
// alone wouldn't reveal ("Georgia" contains no "serif").
var knownSerifs = []string{
	"georgia", "garamond", "times", "baskerville", "didot", "bodoni",
	"playfair", "merriweather", "lora", "caslon", "cambria", "palatino",
	"charter", "spectral", "crimson", "libre caslon", "source serif",
	"pt serif", "noto serif", "ibm plex serif", "roboto slab",
}

// details accumulates every sighting of one CSS family token during a run.
type details struct {
	token string

	weights        map[int]bool
	styles         map[string]bool
	letterSpacings map[string]bool
	lineHeights    map[string]bool
	sizes          map[string]bool

	source string
	isMono, isSerif, isIcon bool
	iconSamples []string

	resolved     string
	finalWeights []int
}

func newDetails(token, stack string) *details {
	d := &details{
		token:          token,
		weights:        make(map[int]bool),
		styles:         make(map[string]bool),
		letterSpacings: make(map[string]bool),
		lineHeights:    make(map[string]bool),
		sizes:          make(map[string]bool),
		source:         SourceSystem,
		resolved:       token,
	}

	lower := strings.ToLower(token)
	d.isMono = strings.Contains(lower, "mono") || stackHasGeneric(stack, "monospace")

	// The serif decision uses the family name only: a sans face with a
	// serif fallback stack is still sans.
	if strings.Contains(lower, "serif") && !strings.Contains(lower, "sans") {
		d.isSerif = true
	} else {
		for _, s := range knownSerifs {
			if strings.Contains(lower, s) {
				d.isSerif = true
				break
			}
		}
	}

	return d
}

// stackHasGeneric reports whether a font-family stack ends in (or contains)
// the given generic keyword as its own entry.
func stackHasGeneric(stack, keyword string) bool {
	for _, part := range strings.Split(stack, ",") {
		if strings.EqualFold(strings.Trim(strings.TrimSpace(part), `"'`), keyword) {
			return true
		}
	}
	return false
}

func (d *details) observe(s Sample) {
	if w, ok := parseWeight(s.Weight); ok {
		d.weights[w] = true
	}
	if s.Style != "" {
		d.styles[s.Style] = true
	}
	if s.LetterSpacing != "" {
		d.letterSpacings[s.LetterSpacing] = true
	}
	if s.LineHeight != "" {
		d.lineHeights[s.LineHeight] = true
	}
	if s.Size != "" {
		d.sizes[s.Size] = true
	}
}

func (d *details) weightList() []int {
	out := make([]int, 0, len(d.weights))
	for w := range d.weights {
		out = append(out, w)
	}
	return out
}

func (d *details) toInfo() FontInfo {
	return FontInfo{
		Family:         d.resolved,
		CSSFamily:      d.token,
		Weights:        d.finalWeights,
		Styles:         sortedStrings(d.styles),
		LetterSpacings: sortedStrings(d.letterSpacings),
		LineHeights:    sortedStrings(d.lineHeights),
		Sizes:          sortedStrings(d.sizes),
		Source:         d.source,
		IsMono:         d.isMono,
		IsSerif:        d.isSerif,
		IsIconFont:     d.isIcon,
		IconSamples:    d.iconSamples,
	}
}

// parseWeight maps computed font-weight values (numeric in modern engines,
// keywords from older ones) to an int.
func parseWeight(s string) (int, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return 0, false
	case "normal":
		return 400, true
	case "bold":
		return 700, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 1 || f > 1000 {
		return 0, false
	}
	return int(f + 0.5), true
}

// systemFamilies never surface as detected fonts.
var systemFamilies = map[string]bool{
	"sans-serif":         true,
	"serif":              true,
	"monospace":          true,
	"cursive":            true,
	"fantasy":            true,
	"math":               true,
	"emoji":              true,
	"system-ui":          true,
	"ui-sans-serif":      true,
	"ui-serif":           true,
	"ui-monospace":       true,
	"ui-rounded":         true,
	"-apple-system":      true,
	"blinkmacsystemfont": true,
}

func systemFamily(name string) bool {
	return systemFamilies[strings.ToLower(strings.TrimSpace(name))]
}

// markSources flags tokens that appear in @font-face rules as custom; the
// google/adobe passes refine from there.
func markSources(byToken map[string]*details, faces []FontFace) {
	for _, f := range faces {
		if d, ok := byToken[f.Family]; ok {
			d.source = SourceCustom
		}
	}
}
