package webapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/tracer/scan"
	"github.com/hazyhaar/tracer/store"
)

func testServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(nil, st, logger), st
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv, _ := testServer(t)
	w := doRequest(t, srv.Router(), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
}

func TestScan_MissingURL(t *testing.T) {
	srv, _ := testServer(t)
	w := doRequest(t, srv.Router(), http.MethodPost, "/scan", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestScan_BadBody(t *testing.T) {
	srv, _ := testServer(t)
	w := doRequest(t, srv.Router(), http.MethodPost, "/scan", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestListAndGetScans(t *testing.T) {
	srv, st := testServer(t)

	res := &scan.Result{
		URL: "https://example.com", Domain: "example.com",
		ScannedAt: time.Now().UTC(),
	}
	id, err := st.SaveScan(context.Background(), res)
	if err != nil {
		t.Fatalf("SaveScan: %v", err)
	}

	w := doRequest(t, srv.Router(), http.MethodGet, "/scans", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status: got %d", w.Code)
	}
	var list []store.ScanSummary
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].URL != "https://example.com" {
		t.Errorf("list: got %+v", list)
	}

	w = doRequest(t, srv.Router(), http.MethodGet, "/scans/"+strconv.FormatInt(id, 10), "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status: got %d", w.Code)
	}
	var got scan.Result
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if got.URL != "https://example.com" {
		t.Errorf("get: got %+v", got)
	}
}

func TestGetScan_NotFound(t *testing.T) {
	srv, _ := testServer(t)
	w := doRequest(t, srv.Router(), http.MethodGet, "/scans/42", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", w.Code)
	}
}

func TestGetScan_BadID(t *testing.T) {
	srv, _ := testServer(t)
	w := doRequest(t, srv.Router(), http.MethodGet, "/scans/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestSettingsRoundtrip(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.Router()

	// Default before any write.
	w := doRequest(t, router, http.MethodGet, "/settings/deep_scan", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status: got %d", w.Code)
	}
	var got map[string]string
	json.Unmarshal(w.Body.Bytes(), &got)
	if got["value"] != "false" {
		t.Errorf("default deep_scan: got %q", got["value"])
	}

	w = doRequest(t, router, http.MethodPut, "/settings/deep_scan", `{"value":"true"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("put status: got %d", w.Code)
	}

	w = doRequest(t, router, http.MethodGet, "/settings/deep_scan", "")
	json.Unmarshal(w.Body.Bytes(), &got)
	if got["value"] != "true" {
		t.Errorf("after put: got %q", got["value"])
	}
}
