package fonts

import (
	"regexp"
	"strconv"
	"strings"
)

// Icon fonts are detected two ways: a well-known name, or icon-class usage
// conventions backed by a second signal. A lone generic-looking class match
// is not enough: plenty of ordinary text sits in elements with an "icon-"
// utility class.

var knownIconFonts = []string{
	"font awesome", "fontawesome", "material icons", "material symbols",
	"glyphicons", "ionicons", "dashicons", "icomoon", "boxicons",
	"bootstrap-icons", "bootstrap icons", "remixicon", "eva-icons",
	"line awesome", "themify", "feather",
}

var iconClassRe = regexp.MustCompile(`^(?:fa[srlbd]?|fa-[\w-]+|material-icons[\w-]*|material-symbols[\w-]*|glyphicon(?:-[\w-]+)?|icon-[\w-]+|mdi(?:-[\w-]+)?)$`)

// iconClassHits counts class tokens that follow icon-font naming
// conventions.
func iconClassHits(classes string) int {
	n := 0
	for _, c := range strings.Fields(classes) {
		if iconClassRe.MatchString(c) {
			n++
		}
	}
	return n
}

func isIconFontName(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range knownIconFonts {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// classifyIconFonts marks accumulated families as icon fonts.
func classifyIconFonts(byToken map[string]*details, candidates []IconCandidate) {
	for _, d := range byToken {
		if isIconFontName(d.resolved) || isIconFontName(d.token) {
			d.isIcon = true
		}
	}

	for _, c := range candidates {
		d, ok := byToken[c.Family]
		if !ok || d.isIcon {
			continue
		}
		hits := iconClassHits(c.Classes)
		if hits == 0 {
			continue
		}
		// Secondary signal: icon-specific attribute, pictographic pseudo
		// content, or a second independent class-pattern hit.
		secondary := hasIconAttr(c.Attrs) ||
			iconGlyph(decodeCSSContent(c.Before)) != "" ||
			iconGlyph(decodeCSSContent(c.After)) != "" ||
			hits >= 2
		if secondary {
			d.isIcon = true
		}
	}
}

func hasIconAttr(attrs []string) bool {
	for _, a := range attrs {
		switch strings.ToLower(a) {
		case "data-icon", "data-glyph", "aria-hidden":
			return true
		}
	}
	return false
}

const maxIconSamples = 16
const minIconSamples = 8

// harvestIconSamples collects rendered glyphs for families marked as icon
// fonts: pseudo-element content first, then (if we found fewer than 8) any
// single pictographic character rendered in that family.
func harvestIconSamples(byToken map[string]*details, candidates []IconCandidate) {
	for _, d := range byToken {
		if !d.isIcon {
			continue
		}

		seen := make(map[string]bool)
		add := func(glyph string) {
			if glyph == "" || seen[glyph] || len(d.iconSamples) >= maxIconSamples {
				return
			}
			seen[glyph] = true
			d.iconSamples = append(d.iconSamples, glyph)
		}

		for _, c := range candidates {
			if c.Family != d.token {
				continue
			}
			add(iconGlyph(decodeCSSContent(c.Before)))
			add(iconGlyph(decodeCSSContent(c.After)))
		}

		if len(d.iconSamples) < minIconSamples {
			for _, c := range candidates {
				if c.Family != d.token {
					continue
				}
				add(iconGlyph(strings.TrimSpace(c.Text)))
			}
		}
	}
}

// iconGlyph returns the string if it is a single pictographic character
// (Private Use Area or symbol-plane codepoint), else "".
func iconGlyph(s string) string {
	runes := []rune(s)
	if len(runes) != 1 {
		return ""
	}
	r := runes[0]
	switch {
	case r >= 0xE000 && r <= 0xF8FF: // BMP Private Use Area
		return s
	case r >= 0xF0000: // supplementary PUA planes
		return s
	case r >= 0x2190 && r <= 0x2BFF: // arrows, misc symbols, dingbat blocks
		return s
	case r >= 0x1F000 && r <= 0x1FAFF: // supplementary symbols and pictographs
		return s
	}
	return ""
}

var cssEscapeRe = regexp.MustCompile(`\\([0-9a-fA-F]{1,6})\s?`)

// decodeCSSContent unquotes a CSS content value and decodes hex escape
// sequences ("\f105" -> U+F105). Values of "none"/"normal" yield "".
func decodeCSSContent(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || s == "none" || s == "normal" {
		return ""
	}
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	s = cssEscapeRe.ReplaceAllStringFunc(s, func(m string) string {
		hex := strings.TrimSpace(m[1:])
		cp, err := strconv.ParseInt(hex, 16, 32)
		if err != nil {
			return ""
		}
		return string(rune(cp))
	})
	return s
}
