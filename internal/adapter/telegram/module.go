package telegram

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/valog/shopbot/internal/config"
)

// Module exposes the Telegram notifier implementation to fx graph.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newNotifier(p notifierParams) (Notifier, error) {
	return NewBotClient(p.Config.TelegramAPIBase, p.Config.TelegramBotToken, p.Logger)
}
