package bridge

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/valog/shopbot/internal/domain/repository"
)

// Module provides the conversation bridge to the fx container.
var Module = fx.Provide(newBridge)

type params struct {
	fx.In

	Notifier Notifier
	Sessions repository.SessionRepository
	Logger   *slog.Logger
}

func newBridge(p params) *Bridge {
	return New(p.Notifier, p.Sessions, p.Logger)
}
