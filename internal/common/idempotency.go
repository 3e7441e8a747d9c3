package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Idem enforces Idempotency-Key semantics for write endpoints using Redis.
// A request carrying a key that was already seen within the TTL window is
// rejected with 409 so a double-tapped submit never creates two sales.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

func idemKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return "idem:" + hex.EncodeToString(sum[:])
}

// Middleware wraps a handler with idempotency enforcement. Requests without
// a key pass through untouched.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Idempotency-Key")
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := idemKey(header)
		ok, err := i.R.SetNX(r.Context(), key, "locked", i.TTL).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", nil)
			return
		}
		if !ok {
			JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "duplicate request", nil)
			return
		}
		defer func() {
			// keep the key alive for the full window even if the handler panics
			_ = i.R.Expire(context.Background(), key, i.TTL).Err()
		}()
		next.ServeHTTP(w, r)
	})
}
