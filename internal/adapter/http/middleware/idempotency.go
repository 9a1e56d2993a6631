package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/splitledger/internal/usecase"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	defaultIdempotencyTTL = 24 * time.Hour
	pendingMarker         = "processing"
)

// storedResponse is the envelope kept for a completed request.
type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// IdempotencyMiddleware replays the first successful response for a
// repeated Idempotency-Key on POST, PUT and DELETE. It runs after
// Authenticate so keys are scoped to the caller.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
		if clientKey == "" || !mutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		log := zerolog.Ctx(ctx)
		key := scopedKey(r, clientKey)

		taken, held, err := m.store.CheckAndSet(ctx, key, nil, m.ttl)
		if err != nil {
			log.Error().Err(err).Msg("idempotency check failed")
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}
		if taken {
			replay(w, held)
			return
		}

		release := func() {
			if err := m.store.Release(ctx, key); err != nil {
				log.Warn().Err(err).Str("idempotency_key", clientKey).Msg("failed to release idempotency key")
			}
		}

		// A panicking handler must not leave the pending marker behind.
		defer func() {
			if p := recover(); p != nil {
				release()
				panic(p)
			}
		}()

		rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)

		if rec.statusCode < 200 || rec.statusCode >= 300 {
			release()
			return
		}

		envelope, err := json.Marshal(storedResponse{Status: rec.statusCode, Body: rec.body.Bytes()})
		if err == nil {
			err = m.store.Update(ctx, key, envelope, m.ttl)
		}
		if err != nil {
			log.Warn().Err(err).Str("idempotency_key", clientKey).Msg("failed to store idempotent response")
		}
	})
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// scopedKey is method:path:user:key, or method:path:key when anonymous.
func scopedKey(r *http.Request, clientKey string) string {
	parts := []string{r.Method, r.URL.Path}
	if userID, ok := UserIDFromContext(r.Context()); ok {
		parts = append(parts, userID)
	}
	return strings.Join(append(parts, clientKey), ":")
}

// replay writes a stored envelope, or 409 while the first request runs.
func replay(w http.ResponseWriter, held []byte) {
	var stored storedResponse
	if string(held) == pendingMarker || json.Unmarshal(held, &stored) != nil || stored.Status == 0 {
		writeJSONError(w, http.StatusConflict, "a request with this idempotency key is in progress")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
