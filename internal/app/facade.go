package app

import (
	"context"
	"time"

	"github.com/valog/shopbot/internal/domain/model"
	"github.com/valog/shopbot/internal/usecase"
)

// PaymentFacade aggregates the order lifecycle use cases behind the
// single surface consumed by the HTTP handlers and the background
// reconciler.
type PaymentFacade struct {
	checkout  *usecase.CheckoutUseCase
	events    *usecase.EventUseCase
	reconcile *usecase.ReconcileUseCase
}

// NewPaymentFacade constructs PaymentFacade.
func NewPaymentFacade(checkout *usecase.CheckoutUseCase, events *usecase.EventUseCase, reconcile *usecase.ReconcileUseCase) *PaymentFacade {
	return &PaymentFacade{checkout: checkout, events: events, reconcile: reconcile}
}

// Checkout registers the user and creates an order with a payment intent.
func (f *PaymentFacade) Checkout(ctx context.Context, chatID int64, firstName, lastName string, amount float64, currency string) (*model.Order, string, error) {
	return f.checkout.Checkout(ctx, chatID, firstName, lastName, amount, currency)
}

// Order fetches a single order by its string id.
func (f *PaymentFacade) Order(ctx context.Context, id string) (*model.Order, error) {
	return f.checkout.Order(ctx, id)
}

// HandleWebhook applies a provider notification through the ledger.
func (f *PaymentFacade) HandleWebhook(ctx context.Context, eventID, providerRef string, status model.ProviderStatus) (*model.Order, error) {
	return f.events.HandleProviderEvent(ctx, eventID, providerRef, status)
}

// StaleOrders lists orders awaiting background attention.
func (f *PaymentFacade) StaleOrders(ctx context.Context, state model.OrderState, cutoff time.Time, limit int) ([]model.Order, error) {
	return f.reconcile.StaleOrders(ctx, state, cutoff, limit)
}

// RetryIntent re-requests a payment intent for a stuck order.
func (f *PaymentFacade) RetryIntent(ctx context.Context, order model.Order) error {
	return f.checkout.RetryIntent(ctx, order)
}

// Reconcile polls the provider for a pending order.
func (f *PaymentFacade) Reconcile(ctx context.Context, order model.Order) error {
	return f.reconcile.Reconcile(ctx, order)
}
