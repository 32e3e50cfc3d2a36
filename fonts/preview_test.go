package fonts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPreviewText_PangramDefault(t *testing.T) {
	got := previewText("pangram", PageText{Title: "Long enough page title here"}, "Inter")
	if !isPangram(got) {
		t.Errorf("pangram policy returned %q", got)
	}
	// Deterministic per seed.
	if again := previewText("pangram", PageText{}, "Inter"); again != got {
		t.Errorf("pangram choice must be stable per family: %q != %q", again, got)
	}
}

func TestPreviewText_OGDescription(t *testing.T) {
	text := PageText{OGDescription: "A thoughtful essay about the history of type design."}
	got := previewText("og-description", text, "Inter")
	if got != text.OGDescription {
		t.Errorf("got %q, want og description", got)
	}

	// Too-short descriptions fall back to a pangram.
	short := previewText("og-description", PageText{OGDescription: "Hi there"}, "Inter")
	if !isPangram(short) {
		t.Errorf("short og description must fall back to pangram, got %q", short)
	}
}

func TestPreviewText_PageContentPriority(t *testing.T) {
	text := PageText{
		Title:           "The Museum of Modern Typography",
		FirstParagraph:  "Our collection spans five centuries of letterforms.",
		MetaDescription: "Museum site meta description text.",
	}
	if got := previewText("page-content", text, "x"); got != text.Title {
		t.Errorf("got %q, want title first", got)
	}

	text.Title = "Home"
	if got := previewText("page-content", text, "x"); got != text.FirstParagraph {
		t.Errorf("got %q, want first paragraph when title is short", got)
	}

	text.FirstParagraph = ""
	if got := previewText("page-content", text, "x"); got != text.MetaDescription {
		t.Errorf("got %q, want meta description as last resort", got)
	}
}

func TestPreviewText_Clips(t *testing.T) {
	long := strings.Repeat("type ", 100)
	got := previewText("page-content", PageText{Title: long}, "x")
	if len(got) > previewTextMax {
		t.Errorf("preview text length %d exceeds %d", len(got), previewTextMax)
	}
}

func TestPreviewText_ClipKeepsValidUTF8(t *testing.T) {
	// "é" is two bytes; the clip limit lands mid-rune unless the cut backs
	// up to a boundary.
	long := strings.Repeat("é", previewTextMax)
	got := previewText("page-content", PageText{Title: long}, "x")
	if len(got) > previewTextMax {
		t.Errorf("clipped length %d exceeds %d", len(got), previewTextMax)
	}
	if !utf8.ValidString(got) {
		t.Errorf("clipped text is not valid UTF-8: %q", got)
	}
}

func isPangram(s string) bool {
	for _, p := range pangrams {
		if s == p {
			return true
		}
	}
	return false
}

func TestBuildPreview_GoogleStylesheet(t *testing.T) {
	pl := NewPipeline(Config{Logger: discardLogger()}, nil)
	d := newDetails("Inter", "Inter, sans-serif")
	d.resolved = "Inter"
	d.source = SourceGoogle
	d.finalWeights = []int{400, 700}

	p, err := pl.buildPreview(context.Background(), d, &Harvest{})
	if err != nil {
		t.Fatalf("buildPreview: %v", err)
	}
	if p == nil || p.Kind != "stylesheet" {
		t.Fatalf("got %+v, want stylesheet preview", p)
	}
	want := "https://fonts.googleapis.com/css2?family=Inter:wght@400;700&display=swap"
	if p.StylesheetURL != want {
		t.Errorf("url: got %q, want %q", p.StylesheetURL, want)
	}
}

func TestBuildPreview_EmbedsFetchedFont(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake-woff2-bytes"))
	}))
	defer srv.Close()

	pl := NewPipeline(Config{Logger: discardLogger(), HTTPClient: srv.Client()}, nil)
	d := newDetails("Soehne", "Soehne")
	d.resolved = "Soehne"
	d.source = SourceCustom

	h := &Harvest{Faces: []FontFace{
		{Family: "Soehne", Sources: []string{srv.URL + "/soehne.woff2"}},
	}}
	p, err := pl.buildPreview(context.Background(), d, h)
	if err != nil {
		t.Fatalf("buildPreview: %v", err)
	}
	if p == nil || p.Kind != "embedded" {
		t.Fatalf("got %+v, want embedded preview", p)
	}
	if !strings.Contains(p.FontFaceCSS, `font-family:"Soehne"`) {
		t.Errorf("css missing family: %q", p.FontFaceCSS)
	}
	if !strings.Contains(p.FontFaceCSS, "data:font/woff2;base64,") {
		t.Errorf("css missing data uri: %q", p.FontFaceCSS)
	}
}

func TestBuildPreview_BitmapFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	r := &stubRenderer{img: "data:image/png;base64,AAAA"}
	pl := NewPipeline(Config{Logger: discardLogger(), HTTPClient: srv.Client()}, r)
	d := newDetails("Soehne", "Soehne")
	d.resolved = "Soehne"
	d.source = SourceCustom
	d.finalWeights = []int{400, 700}

	h := &Harvest{Faces: []FontFace{
		{Family: "Soehne", Sources: []string{srv.URL + "/soehne.woff2"}},
	}}
	p, err := pl.buildPreview(context.Background(), d, h)
	if err != nil {
		t.Fatalf("buildPreview: %v", err)
	}
	if p == nil || p.Kind != "bitmap" {
		t.Fatalf("got %+v, want bitmap preview", p)
	}
	if len(p.Bitmaps) != 2 || p.Bitmaps[400] == "" || p.Bitmaps[700] == "" {
		t.Errorf("bitmaps: got %v, want entries for 400 and 700", p.Bitmaps)
	}
	if got := r.families; len(got) != 2 || got[0] != "Soehne" {
		t.Errorf("renderer calls: got %v", got)
	}
}

func TestBuildPreview_NoSourceNoRenderer(t *testing.T) {
	pl := NewPipeline(Config{Logger: discardLogger()}, nil)
	d := newDetails("Soehne", "Soehne")
	p, err := pl.buildPreview(context.Background(), d, &Harvest{})
	if err != nil || p != nil {
		t.Errorf("got (%+v, %v), want (nil, nil)", p, err)
	}
}

func TestBuildPreview_RendererFailureYieldsNoPreview(t *testing.T) {
	pl := NewPipeline(Config{Logger: discardLogger()}, errRenderer{})
	d := newDetails("Soehne", "Soehne")
	d.source = SourceCustom
	p, err := pl.buildPreview(context.Background(), d, &Harvest{})
	if err != nil || p != nil {
		t.Errorf("got (%+v, %v), want (nil, nil)", p, err)
	}
}

type stubRenderer struct {
	img      string
	families []string
}

func (r *stubRenderer) RenderBitmap(_ context.Context, family string, weight int, _ string) (string, error) {
	r.families = append(r.families, family)
	return r.img, nil
}

func TestGoogleFamiliesFromLink(t *testing.T) {
	tests := []struct {
		link string
		want []string
	}{
		{
			"https://fonts.googleapis.com/css2?family=Inter:wght@400;700&family=Lora&display=swap",
			[]string{"Inter", "Lora"},
		},
		{
			"https://fonts.googleapis.com/css?family=Open+Sans:400,700|Roboto",
			[]string{"Open Sans", "Roboto"},
		},
		{
			"https://fonts.googleapis.com/css2?family=Playfair%20Display:ital,wght@0,400;1,700&display=swap",
			[]string{"Playfair Display"},
		},
		{"https://fonts.googleapis.com/css2?display=swap", nil},
	}
	for _, tt := range tests {
		got := googleFamiliesFromLink(tt.link)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("googleFamiliesFromLink(%q): got %v, want %v", tt.link, got, tt.want)
		}
	}
}

func TestGoogleStylesheetURL_NoWeights(t *testing.T) {
	got := googleStylesheetURL("Open Sans", nil)
	want := "https://fonts.googleapis.com/css2?family=Open+Sans&display=swap"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFontMIME(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{"https://x.test/a.woff2?v=3", "font/woff2"},
		{"https://x.test/a.woff", "font/woff"},
		{"https://x.test/a.otf", "font/otf"},
		{"https://x.test/a.ttf", "font/ttf"},
		{"https://x.test/a", "font/ttf"},
	}
	for _, tt := range tests {
		if got := fontMIME(tt.src); got != tt.want {
			t.Errorf("fontMIME(%q): got %q, want %q", tt.src, got, tt.want)
		}
	}
}
