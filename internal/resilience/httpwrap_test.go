package resilience

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPClientRetriesOn5xx(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cl := HTTPClient{
		Client:      srv.Client(),
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
	}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := cl.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := hits.Load(); got != 3 {
		t.Fatalf("hits = %d, want 3", got)
	}
}

func TestHTTPClientStopsWhenBreakerOpen(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cl := HTTPClient{
		Client:      srv.Client(),
		Breaker:     NewBreaker(1, 0.5, time.Minute),
		MaxAttempts: 5,
		BaseBackoff: time.Millisecond,
	}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	_, err = cl.Do(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error once the breaker tripped")
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("hits = %d, want 1 (breaker should stop further attempts)", got)
	}
}

func TestHTTPClientWithoutBreakerExhaustsRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cl := HTTPClient{
		Client:      srv.Client(),
		MaxAttempts: 4,
		BaseBackoff: time.Millisecond,
	}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if _, err := cl.Do(context.Background(), req); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if got := hits.Load(); got != 4 {
		t.Fatalf("hits = %d, want 4 (no breaker may cut retries short)", got)
	}
}

type closeTrackingBody struct {
	io.Reader
	closed *atomic.Int32
}

func (b closeTrackingBody) Close() error {
	b.closed.Add(1)
	return nil
}

type failingTransport struct {
	closed atomic.Int32
	hits   atomic.Int32
}

func (tr *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	tr.hits.Add(1)
	return &http.Response{
		StatusCode: http.StatusBadGateway,
		Status:     "502 Bad Gateway",
		Body:       closeTrackingBody{Reader: strings.NewReader("upstream down"), closed: &tr.closed},
		Header:     http.Header{},
	}, nil
}

func TestHTTPClientClosesRetriedResponseBodies(t *testing.T) {
	tr := &failingTransport{}
	cl := HTTPClient{
		Client:      &http.Client{Transport: tr},
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
	}
	req, err := http.NewRequest(http.MethodGet, "http://processor.local/sales", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if _, err := cl.Do(context.Background(), req); err == nil {
		t.Fatal("expected an error for persistent 5xx")
	}
	if got := tr.hits.Load(); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
	if got := tr.closed.Load(); got != 3 {
		t.Fatalf("closed bodies = %d, want 3", got)
	}
}
