package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
	"github.com/valog/shopbot/internal/domain/model"
)

// Key layout: session:{chat_id} -> JSON-encoded model.Session.
const sessionKeyFormat = "session:%d"

// Conversation state is advisory, so it can expire.
var sessionTTL = 24 * time.Hour

// commands is the subset of the Redis client the store uses, so tests
// can substitute a stub.
type commands interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Close() error
}

// SessionStore keeps per-chat dialog state in Redis.
type SessionStore struct {
	client commands
	logger *slog.Logger
}

// New connects a session store to the given Redis address.
func New(addr string, logger *slog.Logger) *SessionStore {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	return &SessionStore{client: client, logger: logger}
}

// Close releases the underlying connection pool.
func (s *SessionStore) Close() error {
	return s.client.Close()
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf(sessionKeyFormat, chatID)
}

// Get loads the session for a chat or ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, chatID int64) (*model.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// Set stores the session with a TTL refresh.
func (s *SessionStore) Set(ctx context.Context, chatID int64, session *model.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(chatID), payload, sessionTTL).Err()
}

// Clear removes the session for a chat.
func (s *SessionStore) Clear(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, sessionKey(chatID)).Err()
}
