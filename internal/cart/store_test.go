package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	pkgredis "github.com/dmfebriyanto/tokotenan-backend/pkg/redis"
	"github.com/google/uuid"
)

type stubKV struct {
	data   map[string]string
	setTTL time.Duration
	getErr error
	setErr error
}

func newStubKV() *stubKV {
	return &stubKV{data: map[string]string{}}
}

func (s *stubKV) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	value, ok := s.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return value, nil
}

func (s *stubKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	switch v := value.(type) {
	case []byte:
		s.data[key] = string(v)
	case string:
		s.data[key] = v
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return err
		}
		s.data[key] = string(payload)
	}
	s.setTTL = ttl
	return nil
}

func (s *stubKV) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *stubKV) CartKey(sessionID string) string {
	return "tkt:cart:" + sessionID
}

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	kv := newStubKV()
	store, err := NewRedisStore(kv, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart := Cart{
		SessionID: "sess-1",
		Lines:     []Line{{ID: uuid.New(), ProductID: uuid.New(), Quantity: 2}},
	}
	if err := store.Save(context.Background(), cart); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if kv.setTTL != time.Hour {
		t.Fatalf("expected ttl refresh, got %s", kv.setTTL)
	}

	loaded, err := store.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(loaded.Lines) != 1 || loaded.Lines[0].ID != cart.Lines[0].ID {
		t.Fatalf("expected stored line back, got %+v", loaded.Lines)
	}
}

func TestRedisStoreLoadFreshSession(t *testing.T) {
	t.Parallel()

	store, err := NewRedisStore(newStubKV(), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.SessionID != "unknown" || len(loaded.Lines) != 0 {
		t.Fatalf("expected empty cart for fresh session, got %+v", loaded)
	}
}

func TestRedisStoreDelete(t *testing.T) {
	t.Parallel()

	kv := newStubKV()
	store, err := NewRedisStore(kv, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Save(context.Background(), Cart{SessionID: "sess-2"}); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if err := store.Delete(context.Background(), "sess-2"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}

	loaded, err := store.Load(context.Background(), "sess-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Lines) != 0 {
		t.Fatal("expected cart gone after delete")
	}
}

func TestNewRedisStoreValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisStore(nil, time.Hour); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewRedisStore(newStubKV(), 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
