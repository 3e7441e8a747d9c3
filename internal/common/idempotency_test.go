package common

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
)

func newIdemHandler(t *testing.T) (http.Handler, *atomic.Int32, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var hits atomic.Int32
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusCreated)
	})
	idem := Idem{R: client, TTL: time.Minute}
	return idem.Middleware(next), &hits, mr
}

func TestIdemRejectsReplay(t *testing.T) {
	h, hits, _ := newIdemHandler(t)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("Idempotency-Key", "sale-42")
	h.ServeHTTP(first, req)
	if first.Code != http.StatusCreated {
		t.Fatalf("first request: status %d, want 201", first.Code)
	}

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("Idempotency-Key", "sale-42")
	h.ServeHTTP(second, req)
	if second.Code != http.StatusConflict {
		t.Fatalf("replay: status %d, want 409", second.Code)
	}
	if hits.Load() != 1 {
		t.Fatalf("handler ran %d times, want 1", hits.Load())
	}
}

func TestIdemDistinctKeysPass(t *testing.T) {
	h, hits, _ := newIdemHandler(t)

	for _, key := range []string{"sale-1", "sale-2"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.Header.Set("Idempotency-Key", key)
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("key %q: status %d, want 201", key, rec.Code)
		}
	}
	if hits.Load() != 2 {
		t.Fatalf("handler ran %d times, want 2", hits.Load())
	}
}

func TestIdemWithoutKeyPassesThrough(t *testing.T) {
	h, hits, _ := newIdemHandler(t)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit", nil))
		if rec.Code != http.StatusCreated {
			t.Fatalf("status %d, want 201", rec.Code)
		}
	}
	if hits.Load() != 2 {
		t.Fatalf("handler ran %d times, want 2", hits.Load())
	}
}

func TestIdemKeyExpires(t *testing.T) {
	h, hits, mr := newIdemHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("Idempotency-Key", "sale-9")
	h.ServeHTTP(httptest.NewRecorder(), req)

	mr.FastForward(2 * time.Minute)

	rec := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/submit", nil)
	req.Header.Set("Idempotency-Key", "sale-9")
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("after expiry: status %d, want 201", rec.Code)
	}
	if hits.Load() != 2 {
		t.Fatalf("handler ran %d times, want 2", hits.Load())
	}
}
