package usecase

import (
	"context"

	"github.com/valog/shopbot/internal/domain/lifecycle"
	"github.com/valog/shopbot/internal/domain/model"
)

// PaymentGateway is the outbound port to the payment provider.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, order *model.Order, description, returnURL string) (*model.PaymentIntent, error)
	QueryStatus(ctx context.Context, providerRef string) (model.ProviderStatus, error)
}

// Listener observes committed order transitions. It is invoked after
// the new state is durable; failures inside the listener must not
// affect order state.
type Listener interface {
	OrderChanged(ctx context.Context, order *model.Order, effect lifecycle.Effect)
}
