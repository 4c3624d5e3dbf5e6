package gateway

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/valog/shopbot/internal/config"
)

// Module exposes the payment gateway client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.GatewayBaseURL, p.Config.GatewayShopID, p.Config.GatewaySecretKey, p.Logger)
}
