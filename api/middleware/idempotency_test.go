package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = value.(string)
	return true, nil
}

func (s *memoryStore) IdempotencyKey(scope, id string) string {
	return "idemp:" + scope + ":" + id
}

func (s *memoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func idempotencyHandler(store *memoryStore, calls *int) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"order-1"}}`))
	})
	return Idempotency(store, logg)(next)
}

func TestIdempotencyIgnoresUnmatchedRoutes(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := idempotencyHandler(store, &calls)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if calls != 1 {
		t.Fatalf("expected handler call, got %d", calls)
	}
	if len(store.data) != 0 {
		t.Fatal("unmatched route should not be recorded")
	}
}

func TestIdempotencyRequiresKeyHeader(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := idempotencyHandler(store, &calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if calls != 0 {
		t.Fatal("handler should not run without key")
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := idempotencyHandler(store, &calls)

	body := `{"total_amount_cents":9000}`
	first := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	first.Header.Set("Idempotency-Key", "abc-123")
	firstResp := httptest.NewRecorder()
	handler.ServeHTTP(firstResp, first)

	if firstResp.Code != http.StatusCreated {
		t.Fatalf("unexpected first status %d", firstResp.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	second.Header.Set("Idempotency-Key", "abc-123")
	secondResp := httptest.NewRecorder()
	handler.ServeHTTP(secondResp, second)

	if calls != 1 {
		t.Fatalf("expected single handler call, got %d", calls)
	}
	if secondResp.Code != http.StatusCreated {
		t.Fatalf("unexpected replay status %d", secondResp.Code)
	}
	if secondResp.Body.String() != firstResp.Body.String() {
		t.Fatal("replayed body differs from original")
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	handler := idempotencyHandler(store, &calls)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"total_amount_cents":9000}`))
	first.Header.Set("Idempotency-Key", "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"total_amount_cents":1}`))
	second.Header.Set("Idempotency-Key", "abc-123")
	secondResp := httptest.NewRecorder()
	handler.ServeHTTP(secondResp, second)

	if calls != 1 {
		t.Fatalf("expected single handler call, got %d", calls)
	}
	if secondResp.Code != http.StatusConflict {
		t.Fatalf("unexpected status %d", secondResp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(secondResp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != "IDEMPOTENCY_KEY_REUSED" {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
}
