package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
	"github.com/valog/shopbot/internal/domain/model"
	"github.com/valog/shopbot/internal/domain/repository"
)

const defaultCurrency = "RUB"

// CheckoutUseCase creates orders and drives them to AWAITING_PAYMENT.
type CheckoutUseCase struct {
	users     repository.UserRepository
	orders    repository.OrderRepository
	gateway   PaymentGateway
	events    *EventUseCase
	returnURL string
	logger    *slog.Logger
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(users repository.UserRepository, orders repository.OrderRepository, gateway PaymentGateway, events *EventUseCase, returnURL string, logger *slog.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{users: users, orders: orders, gateway: gateway, events: events, returnURL: returnURL, logger: logger}
}

// Checkout registers the user, persists a new order and requests a
// payment intent. When the gateway is unavailable the order stays in
// CREATED and is picked up by the next reconciliation sweep; the
// caller still receives the order along with the error.
func (u *CheckoutUseCase) Checkout(ctx context.Context, chatID int64, firstName, lastName string, amount float64, currency string) (*model.Order, string, error) {
	if amount <= 0 {
		return nil, "", domainErrors.ErrInvalidAmount
	}
	if currency == "" {
		currency = defaultCurrency
	} else if !validCurrency(currency) {
		return nil, "", domainErrors.ErrInvalidCurrency
	}

	if _, err := u.users.Upsert(ctx, chatID, firstName, lastName); err != nil {
		return nil, "", err
	}

	order, err := u.orders.Create(ctx, chatID, amount, currency)
	if err != nil {
		return nil, "", err
	}

	return u.requestIntent(ctx, order)
}

// RetryIntent re-requests a payment intent for an order stuck in
// CREATED. The idempotence key equals the order id, so a retry against
// the provider returns the original intent rather than a second charge.
func (u *CheckoutUseCase) RetryIntent(ctx context.Context, order model.Order) error {
	_, _, err := u.requestIntent(ctx, &order)
	return err
}

// Order fetches a single order.
func (u *CheckoutUseCase) Order(ctx context.Context, id string) (*model.Order, error) {
	parsed, err := parseOrderID(id)
	if err != nil {
		return nil, err
	}
	return u.orders.Get(ctx, parsed)
}

func (u *CheckoutUseCase) requestIntent(ctx context.Context, order *model.Order) (*model.Order, string, error) {
	intent, err := u.gateway.CreatePayment(ctx, order, fmt.Sprintf("Order %s", order.ID), u.returnURL)
	if err != nil {
		var rejected domainErrors.GatewayRejectedError
		if errors.As(err, &rejected) {
			if failed, applyErr := u.events.Apply(ctx, order.ID, model.IntentRejected()); applyErr == nil {
				order = failed
			} else {
				u.logger.Error("apply intent rejection failed", slog.String("order_id", order.ID.String()), slog.String("error", applyErr.Error()))
			}
			return order, "", err
		}
		u.logger.Warn("payment intent deferred",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()),
		)
		return order, "", err
	}

	updated, err := u.events.Apply(ctx, order.ID, model.IntentCreated(intent.ProviderRef))
	if err != nil {
		return order, "", err
	}
	return updated, intent.ConfirmationURL, nil
}
