package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hazyhaar/tracer/colors"
	"github.com/hazyhaar/tracer/scan"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:): %v", err)
	}
	s.db.SetMaxOpenConns(1)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(url string) *scan.Result {
	return &scan.Result{
		Token:     1,
		URL:       url,
		Domain:    "example.com",
		DeepScan:  true,
		ScannedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Colors: []colors.ColorInfo{
			{Hex: "#EAFF00", Weight: 3, Source: "background"},
		},
	}
}

func TestSaveAndGetScan(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	id, err := s.SaveScan(ctx, sampleResult("https://example.com"))
	if err != nil {
		t.Fatalf("SaveScan: %v", err)
	}

	got, err := s.GetScan(ctx, id)
	if err != nil {
		t.Fatalf("GetScan: %v", err)
	}
	if got.URL != "https://example.com" || !got.DeepScan {
		t.Errorf("roundtrip: got %+v", got)
	}
	if len(got.Colors) != 1 || got.Colors[0].Hex != "#EAFF00" {
		t.Errorf("colors lost in roundtrip: %+v", got.Colors)
	}
}

func TestGetScan_NotFound(t *testing.T) {
	s := openMemory(t)
	_, err := s.GetScan(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestListScans_NewestFirst(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	for _, u := range []string{"https://a.example", "https://b.example", "https://c.example"} {
		if _, err := s.SaveScan(ctx, sampleResult(u)); err != nil {
			t.Fatalf("SaveScan(%s): %v", u, err)
		}
	}

	got, err := s.ListScans(ctx, 2)
	if err != nil {
		t.Fatalf("ListScans: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d summaries, want 2", len(got))
	}
	if got[0].URL != "https://c.example" || got[1].URL != "https://b.example" {
		t.Errorf("order: got [%s, %s]", got[0].URL, got[1].URL)
	}
}

func TestSettings(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	// Defaults before any write.
	if v, err := s.Setting(ctx, "deep_scan"); err != nil || v != "false" {
		t.Errorf("deep_scan default: got (%q, %v), want false", v, err)
	}
	if v, err := s.Setting(ctx, "font_preview_source"); err != nil || v != "pangram" {
		t.Errorf("font_preview_source default: got (%q, %v), want pangram", v, err)
	}
	if v, err := s.Setting(ctx, "unknown"); err != nil || v != "" {
		t.Errorf("unknown setting: got (%q, %v), want empty", v, err)
	}

	if err := s.SetSetting(ctx, "deep_scan", "true"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if v, _ := s.Setting(ctx, "deep_scan"); v != "true" {
		t.Errorf("after write: got %q, want true", v)
	}

	// Upsert overwrites.
	if err := s.SetSetting(ctx, "deep_scan", "false"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}
	if v, _ := s.Setting(ctx, "deep_scan"); v != "false" {
		t.Errorf("after overwrite: got %q, want false", v)
	}
}
