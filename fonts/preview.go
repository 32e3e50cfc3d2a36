package fonts

import (
	"context"
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"
)

// Preview is a renderable representation of a font, usable outside the
// page's own styling context. Exactly one of the payload fields is set per
// kind: stylesheet (Google-hosted CSS), embedded (@font-face with a data
// URI) or bitmap (pre-rendered images keyed by weight).
type Preview struct {
	Kind          string         `json:"kind"` // stylesheet | embedded | bitmap
	Text          string         `json:"text"`
	StylesheetURL string         `json:"stylesheetUrl,omitempty"`
	FontFaceCSS   string         `json:"fontFaceCss,omitempty"`
	Bitmaps       map[int]string `json:"bitmaps,omitempty"` // weight -> image data URI
}

// pangrams for the default preview-text policy. Selection is deterministic
// per family so repeated scans of a page look stable.
var pangrams = []string{
	"The quick brown fox jumps over the lazy dog",
	"Pack my box with five dozen liquor jugs",
	"Sphinx of black quartz, judge my vow",
	"How vexingly quick daft zebras jump",
	"The five boxing wizards jump quickly",
	"Jackdaws love my big sphinx of quartz",
}

const (
	previewTextMin = 20
	previewTextMax = 200
)

// previewText applies the configured text-selection policy.
func previewText(source string, text PageText, seed string) string {
	switch source {
	case "og-description":
		if len(text.OGDescription) >= previewTextMin {
			return clip(text.OGDescription)
		}
	case "page-content":
		for _, c := range []string{text.Title, text.FirstParagraph, text.MetaDescription} {
			if len(c) >= previewTextMin {
				return clip(c)
			}
		}
	}
	return pickPangram(seed)
}

func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= previewTextMax {
		return s
	}
	// Back up to a rune boundary so the cut never splits a multibyte
	// character.
	cut := previewTextMax
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func pickPangram(seed string) string {
	h := fnv.New32a()
	io.WriteString(h, seed)
	return pangrams[h.Sum32()%uint32(len(pangrams))]
}

// buildPreview produces the best available preview for one family:
// Google fonts get a stylesheet URL; custom fonts get their file fetched
// and embedded as a data URI; when the fetch fails (CORS, network) the
// live page renders a bitmap instead, since a detached viewer cannot
// otherwise reach a font loaded purely via the host page's CSS.
func (pl *Pipeline) buildPreview(ctx context.Context, d *details, h *Harvest) (*Preview, error) {
	text := previewText(pl.cfg.PreviewSource, h.Text, d.resolved)

	if d.source == SourceGoogle {
		return &Preview{
			Kind:          "stylesheet",
			Text:          text,
			StylesheetURL: googleStylesheetURL(d.resolved, d.finalWeights),
		}, nil
	}

	src := faceSourceURL(d.token, h.Faces)
	if src != "" {
		css, err := pl.embedFontFace(ctx, d, src)
		if err == nil {
			return &Preview{Kind: "embedded", Text: text, FontFaceCSS: css}, nil
		}
		pl.cfg.Logger.Debug("fonts: embed failed, falling back to bitmap",
			"family", d.resolved, "src", src, "error", err)
	}

	if pl.renderer == nil {
		return nil, nil
	}

	bitmaps := make(map[int]string)
	weights := d.finalWeights
	if len(weights) == 0 {
		weights = []int{400}
	}
	for _, w := range weights {
		img, err := pl.renderer.RenderBitmap(ctx, d.token, w, text)
		if err != nil || img == "" {
			continue
		}
		bitmaps[w] = img
	}
	if len(bitmaps) == 0 {
		return nil, nil
	}
	return &Preview{Kind: "bitmap", Text: text, Bitmaps: bitmaps}, nil
}

// faceSourceURL picks the first fetchable @font-face source for a family.
func faceSourceURL(token string, faces []FontFace) string {
	for _, f := range faces {
		if !strings.EqualFold(f.Family, token) {
			continue
		}
		for _, src := range f.Sources {
			if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
				return src
			}
		}
	}
	return ""
}

// embedFontFace fetches a font file and wraps it in a self-contained
// @font-face rule.
func (pl *Pipeline) embedFontFace(ctx context.Context, d *details, src string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", fmt.Errorf("fonts: build request: %w", err)
	}
	resp, err := pl.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fonts: fetch %s: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fonts: fetch %s: status %d", src, resp.StatusCode)
	}

	// 8 MB is far beyond any real font file.
	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("fonts: read %s: %w", src, err)
	}

	mime := fontMIME(src)
	b64 := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf(
		"@font-face{font-family:%q;src:url(data:%s;base64,%s)}",
		d.resolved, mime, b64), nil
}

func fontMIME(src string) string {
	u, err := url.Parse(src)
	ext := ""
	if err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	switch ext {
	case ".woff2":
		return "font/woff2"
	case ".woff":
		return "font/woff"
	case ".otf":
		return "font/otf"
	default:
		return "font/ttf"
	}
}

// googleStylesheetURL builds a css2 URL for a Google-hosted family.
func googleStylesheetURL(family string, weights []int) string {
	fam := strings.ReplaceAll(family, " ", "+")
	if len(weights) == 0 {
		return "https://fonts.googleapis.com/css2?family=" + fam + "&display=swap"
	}
	parts := make([]string, 0, len(weights))
	for _, w := range weights {
		parts = append(parts, fmt.Sprintf("%d", w))
	}
	return "https://fonts.googleapis.com/css2?family=" + fam +
		":wght@" + strings.Join(parts, ";") + "&display=swap"
}

// markGoogleFonts matches stylesheet links against the Google Fonts host
// and flags the referenced families.
func markGoogleFonts(byToken map[string]*details, links []string) {
	for _, link := range links {
		if !strings.Contains(link, "fonts.googleapis.com") {
			continue
		}
		for _, fam := range googleFamiliesFromLink(link) {
			for _, d := range byToken {
				if strings.EqualFold(d.resolved, fam) || strings.EqualFold(d.token, fam) {
					d.source = SourceGoogle
				}
			}
		}
	}
}

// googleFamiliesFromLink parses family parameters out of both the css and
// css2 URL formats. The raw query is split by hand: css2 weight lists put
// ";" inside the value ("Inter:wght@400;700") and url.ParseQuery rejects
// any pair containing a semicolon.
func googleFamiliesFromLink(link string) []string {
	u, err := url.Parse(link)
	if err != nil {
		return nil
	}
	var out []string
	for _, pair := range strings.Split(u.RawQuery, "&") {
		key, fam, _ := strings.Cut(pair, "=")
		if key != "family" {
			continue
		}
		if dec, err := url.QueryUnescape(fam); err == nil {
			fam = dec
		}
		// css2: "Inter:wght@400;700". css: "Inter|Roboto:400,700".
		for _, part := range strings.Split(fam, "|") {
			name := strings.SplitN(part, ":", 2)[0]
			name = strings.TrimSpace(strings.ReplaceAll(name, "+", " "))
			if name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// markAdobeFonts flags remaining custom-sourced families as Adobe-hosted
// when a Typekit stylesheet is present.
func markAdobeFonts(byToken map[string]*details, links []string) {
	typekit := false
	for _, link := range links {
		if strings.Contains(link, "use.typekit.net") {
			typekit = true
			break
		}
	}
	if !typekit {
		return
	}
	for _, d := range byToken {
		if d.source == SourceCustom {
			d.source = SourceAdobe
		}
	}
}
