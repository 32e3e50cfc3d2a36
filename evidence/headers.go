package evidence

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/tracer/browser"
)

// HeaderCapture records the response headers of the main document. Chrome
// only reports the response event as it happens, so the capture must be
// attached to a still-blank tab, before navigation.
type HeaderCapture struct {
	mu      sync.Mutex
	headers map[string]string
	stop    context.CancelFunc
}

// CaptureHeaders enables the Network domain on the tab and subscribes to
// response events. The first document response wins; sub-frame documents
// arrive later and are ignored. Call Stop when the scan is done.
func CaptureHeaders(tab *browser.Tab) (*HeaderCapture, error) {
	if err := (proto.NetworkEnable{}).Call(tab.Page); err != nil {
		return nil, fmt.Errorf("evidence: enable network domain: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	hc := &HeaderCapture{stop: cancel}

	wait := tab.Page.Context(ctx).EachEvent(func(e *proto.NetworkResponseReceived) {
		if e.Type != proto.NetworkResourceTypeDocument {
			return
		}
		hc.mu.Lock()
		defer hc.mu.Unlock()
		if hc.headers != nil {
			return
		}
		m := make(map[string]string, len(e.Response.Headers))
		for name, val := range e.Response.Headers {
			m[strings.ToLower(name)] = strings.ToLower(val.Str())
		}
		hc.headers = m
	})
	go wait()

	return hc, nil
}

// Headers returns the captured map, or an empty map when no document
// response was seen (about:blank, capture attached too late).
func (hc *HeaderCapture) Headers() map[string]string {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	out := make(map[string]string, len(hc.headers))
	for k, v := range hc.headers {
		out[k] = v
	}
	return out
}

// Stop unsubscribes from network events.
func (hc *HeaderCapture) Stop() {
	hc.stop()
}
