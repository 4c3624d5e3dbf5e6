package di

import (
	"go.uber.org/fx"

	"github.com/valog/shopbot/internal/adapter/gateway"
	"github.com/valog/shopbot/internal/adapter/telegram"
	"github.com/valog/shopbot/internal/app"
	"github.com/valog/shopbot/internal/bridge"
	"github.com/valog/shopbot/internal/config"
	"github.com/valog/shopbot/internal/logger"
	"github.com/valog/shopbot/internal/pkg/signature"
	"github.com/valog/shopbot/internal/server/http/handlers"
	"github.com/valog/shopbot/internal/server/http/router"
	"github.com/valog/shopbot/internal/storage/postgres"
	"github.com/valog/shopbot/internal/storage/redis"
	"github.com/valog/shopbot/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		signature.Module,
		postgres.Module,
		redis.Module,
		gateway.Module,
		telegram.Module,
		bridge.Module,
		usecase.Module,
		fx.Provide(
			func(client gateway.Client) usecase.PaymentGateway { return client },
			func(notifier telegram.Notifier) bridge.Notifier { return notifier },
			func(b *bridge.Bridge) usecase.Listener { return b },
			func(facade *app.PaymentFacade) handlers.PaymentFacade { return facade },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
