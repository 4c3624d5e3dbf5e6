package signature

import (
	"go.uber.org/fx"

	"github.com/valog/shopbot/internal/config"
)

// Module exposes the webhook signature verifier to the fx graph.
var Module = fx.Provide(func(cfg *config.Config) Verifier {
	return NewHMACVerifier(cfg.WebhookSecret)
})
