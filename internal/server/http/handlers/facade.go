package handlers

import (
	"context"

	"github.com/valog/shopbot/internal/domain/model"
)

// CheckoutFacade encapsulates order operations exposed via HTTP.
type CheckoutFacade interface {
	Checkout(ctx context.Context, chatID int64, firstName, lastName string, amount float64, currency string) (*model.Order, string, error)
	Order(ctx context.Context, id string) (*model.Order, error)
}

// WebhookFacade processes provider payment notifications.
type WebhookFacade interface {
	HandleWebhook(ctx context.Context, eventID, providerRef string, status model.ProviderStatus) (*model.Order, error)
}

// PaymentFacade aggregates the full set of operations used across handlers.
type PaymentFacade interface {
	CheckoutFacade
	WebhookFacade
}
