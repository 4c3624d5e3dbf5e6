package redis

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/valog/shopbot/internal/config"
	"github.com/valog/shopbot/internal/domain/repository"
)

// Module wires the Redis-backed session store.
var Module = fx.Options(
	fx.Provide(newStore),
	fx.Provide(func(s *SessionStore) repository.SessionRepository { return s }),
	fx.Invoke(registerLifecycle),
)

type storeParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newStore(p storeParams) *SessionStore {
	return New(p.Config.RedisAddress, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, store *SessionStore) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
}
