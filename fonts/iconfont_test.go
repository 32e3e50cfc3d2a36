package fonts

import (
	"fmt"
	"strings"
	"testing"
)

func TestDecodeCSSContent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"\f105"`, ""},
		{`'\e901'`, ""},
		{`"→"`, "→"},
		{`none`, ""},
		{`normal`, ""},
		{``, ""},
		{`"ab"`, "ab"},
	}
	for _, tt := range tests {
		if got := decodeCSSContent(tt.in); got != tt.want {
			t.Errorf("decodeCSSContent(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIconGlyph(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""}, // PUA
		{"→", "→"},           // arrows block
		{"🔍", "🔍"},         // supplementary pictographs
		{"a", ""},
		{"ab", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := iconGlyph(tt.in); got != tt.want {
			t.Errorf("iconGlyph(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifyIconFonts_KnownName(t *testing.T) {
	byToken := map[string]*details{
		"Font Awesome 6 Free": newDetails("Font Awesome 6 Free", ""),
	}
	byToken["Font Awesome 6 Free"].resolved = "Font Awesome 6 Free"

	classifyIconFonts(byToken, nil)
	if !byToken["Font Awesome 6 Free"].isIcon {
		t.Error("well-known icon font name must classify without candidates")
	}
}

func TestClassifyIconFonts_ClassAloneInsufficient(t *testing.T) {
	d := newDetails("CustomIcons", "")
	byToken := map[string]*details{"CustomIcons": d}

	classifyIconFonts(byToken, []IconCandidate{
		{Family: "CustomIcons", Classes: "icon-search", Text: "Search the site"},
	})
	if d.isIcon {
		t.Error("a single class hit with no secondary signal must not classify")
	}
}

func TestClassifyIconFonts_ClassPlusSecondary(t *testing.T) {
	tests := []struct {
		name string
		c    IconCandidate
	}{
		{"attr", IconCandidate{Family: "CustomIcons", Classes: "icon-search", Attrs: []string{"aria-hidden"}}},
		{"pseudo glyph", IconCandidate{Family: "CustomIcons", Classes: "icon-search", Before: `"\e901"`}},
		{"double class hit", IconCandidate{Family: "CustomIcons", Classes: "icon-search icon-lg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDetails("CustomIcons", "")
			classifyIconFonts(map[string]*details{"CustomIcons": d}, []IconCandidate{tt.c})
			if !d.isIcon {
				t.Errorf("class hit plus %s must classify as icon font", tt.name)
			}
		})
	}
}

func TestHarvestIconSamples_Cap(t *testing.T) {
	d := newDetails("IcoMoon", "")
	d.isIcon = true

	var cands []IconCandidate
	for i := 0; i < 30; i++ {
		cands = append(cands, IconCandidate{
			Family: "IcoMoon",
			Before: fmt.Sprintf(`"\%x"`, 0xe900+i),
		})
	}
	harvestIconSamples(map[string]*details{"IcoMoon": d}, cands)
	if len(d.iconSamples) != maxIconSamples {
		t.Errorf("samples: got %d, want cap %d", len(d.iconSamples), maxIconSamples)
	}
}

func TestHarvestIconSamples_Dedup(t *testing.T) {
	d := newDetails("IcoMoon", "")
	d.isIcon = true

	cands := []IconCandidate{
		{Family: "IcoMoon", Before: `"\e900"`},
		{Family: "IcoMoon", Before: `"\e900"`},
		{Family: "IcoMoon", After: `"\e900"`},
	}
	harvestIconSamples(map[string]*details{"IcoMoon": d}, cands)
	if len(d.iconSamples) != 1 {
		t.Errorf("duplicate glyphs: got %d samples, want 1", len(d.iconSamples))
	}
}

func TestHarvestIconSamples_BroadensWhenScarce(t *testing.T) {
	d := newDetails("IcoMoon", "")
	d.isIcon = true

	// Three pseudo glyphs, below the broaden threshold; two more glyphs are
	// only available as rendered element text.
	cands := []IconCandidate{
		{Family: "IcoMoon", Before: `"\e900"`},
		{Family: "IcoMoon", Before: `"\e901"`},
		{Family: "IcoMoon", Before: `"\e902"`},
		{Family: "IcoMoon", Text: ""},
		{Family: "IcoMoon", Text: ""},
		{Family: "IcoMoon", Text: "not a glyph"},
	}
	harvestIconSamples(map[string]*details{"IcoMoon": d}, cands)
	if len(d.iconSamples) != 5 {
		t.Errorf("broadened harvest: got %d samples (%q), want 5", len(d.iconSamples), d.iconSamples)
	}
	for _, s := range d.iconSamples {
		if strings.Contains(s, "not") {
			t.Errorf("multi-character text must never be a sample: %q", s)
		}
	}
}

func TestHarvestIconSamples_NoBroadenWhenEnough(t *testing.T) {
	d := newDetails("IcoMoon", "")
	d.isIcon = true

	var cands []IconCandidate
	for i := 0; i < minIconSamples; i++ {
		cands = append(cands, IconCandidate{
			Family: "IcoMoon",
			Before: fmt.Sprintf(`"\%x"`, 0xe900+i),
		})
	}
	cands = append(cands, IconCandidate{Family: "IcoMoon", Text: ""})

	harvestIconSamples(map[string]*details{"IcoMoon": d}, cands)
	if len(d.iconSamples) != minIconSamples {
		t.Errorf("got %d samples, want %d (text pass must not run)", len(d.iconSamples), minIconSamples)
	}
}
