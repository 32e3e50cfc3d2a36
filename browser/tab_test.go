package browser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func testTab() *Tab {
	return &Tab{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestNavigate_WaitLoadFailureNotFatal(t *testing.T) {
	tab := testTab()
	tab.doNavigate = func(ctx context.Context, url string) error { return nil }
	tab.doWaitLoad = func(ctx context.Context) error { return context.DeadlineExceeded }

	if err := tab.Navigate(context.Background(), "https://slow.example"); err != nil {
		t.Fatalf("load-event timeout must not fail navigation: %v", err)
	}
	if tab.PageURL != "https://slow.example" {
		t.Errorf("PageURL: got %q", tab.PageURL)
	}
}

func TestNavigate_NavigationFailureFatal(t *testing.T) {
	navErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
	tab := testTab()
	tab.doNavigate = func(ctx context.Context, url string) error { return navErr }
	tab.doWaitLoad = func(ctx context.Context) error {
		t.Fatal("waitLoad must not run after a failed navigation")
		return nil
	}

	err := tab.Navigate(context.Background(), "https://bad.example")
	if !errors.Is(err, navErr) {
		t.Fatalf("got %v, want wrapped navigation error", err)
	}
	if tab.PageURL != "" {
		t.Errorf("PageURL set despite failed navigation: %q", tab.PageURL)
	}
}

func TestNavigate_HonorsCallerContext(t *testing.T) {
	tab := testTab()
	var gotCtx context.Context
	tab.doNavigate = func(ctx context.Context, url string) error {
		gotCtx = ctx
		return nil
	}
	tab.doWaitLoad = func(ctx context.Context) error { return nil }

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "marker")
	if err := tab.Navigate(ctx, "https://example.com"); err != nil {
		t.Fatal(err)
	}
	// The caller's context flows through untouched: no inner deadline is
	// layered on top of it.
	if gotCtx.Value(key{}) != "marker" {
		t.Error("navigation did not receive the caller's context")
	}
	if _, hasDeadline := gotCtx.Deadline(); hasDeadline {
		t.Error("navigation context must not gain a deadline the caller never set")
	}
}
