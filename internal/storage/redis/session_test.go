package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
	"github.com/valog/shopbot/internal/domain/model"
)

type commandsStub struct {
	data map[string][]byte
	ttls map[string]time.Duration

	getErr error
	setErr error
}

func newCommandsStub() *commandsStub {
	return &commandsStub{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (s *commandsStub) Get(ctx context.Context, key string) *goredis.StringCmd {
	if s.getErr != nil {
		return goredis.NewStringResult("", s.getErr)
	}
	payload, ok := s.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(string(payload), nil)
}

func (s *commandsStub) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	if s.setErr != nil {
		return goredis.NewStatusResult("", s.setErr)
	}
	payload, ok := value.([]byte)
	if !ok {
		return goredis.NewStatusResult("", errors.New("unexpected value type"))
	}
	s.data[key] = payload
	s.ttls[key] = expiration
	return goredis.NewStatusResult("OK", nil)
}

func (s *commandsStub) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.data[key]; ok {
			delete(s.data, key)
			delete(s.ttls, key)
			removed++
		}
	}
	return goredis.NewIntResult(removed, nil)
}

func (s *commandsStub) Close() error { return nil }

func newTestStore() (*SessionStore, *commandsStub) {
	stub := newCommandsStub()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return &SessionStore{client: stub, logger: logger}, stub
}

func TestSessionKey(t *testing.T) {
	if got := sessionKey(42); got != "session:42" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := sessionKey(-1); got != "session:-1" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store, stub := newTestStore()

	session := &model.Session{Step: model.SessionStepAwaitingPayment, ActiveOrder: "order-1", LastMessage: "ожидаем оплату"}
	if err := store.Set(context.Background(), 42, session); err != nil {
		t.Fatalf("set returned error: %v", err)
	}
	if got := stub.ttls["session:42"]; got != sessionTTL {
		t.Fatalf("expected TTL %s on write, got %s", sessionTTL, got)
	}

	loaded, err := store.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if loaded.Step != session.Step || loaded.ActiveOrder != session.ActiveOrder || loaded.LastMessage != session.LastMessage {
		t.Fatalf("unexpected session after round trip: %+v", loaded)
	}
}

func TestSessionStoreGetMissing(t *testing.T) {
	store, _ := newTestStore()

	if _, err := store.Get(context.Background(), 42); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionStoreGetCorruptPayload(t *testing.T) {
	store, stub := newTestStore()
	stub.data["session:42"] = []byte("{not json")

	if _, err := store.Get(context.Background(), 42); err == nil || errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestSessionStoreGetTransportError(t *testing.T) {
	store, stub := newTestStore()
	stub.getErr = errors.New("connection refused")

	if _, err := store.Get(context.Background(), 42); err == nil || errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected transport error to pass through, got %v", err)
	}
}

func TestSessionStoreClear(t *testing.T) {
	store, _ := newTestStore()

	if err := store.Set(context.Background(), 42, &model.Session{Step: model.SessionStepIdle}); err != nil {
		t.Fatalf("set returned error: %v", err)
	}
	if err := store.Clear(context.Background(), 42); err != nil {
		t.Fatalf("clear returned error: %v", err)
	}
	if _, err := store.Get(context.Background(), 42); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}
