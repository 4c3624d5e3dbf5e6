package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/valog/shopbot/internal/config"
	"github.com/valog/shopbot/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newEventUseCase,
	newCheckoutUseCase,
	newReconcileUseCase,
)

type eventParams struct {
	fx.In

	Orders   repository.OrderRepository
	Events   repository.EventRepository
	Listener Listener
	Logger   *slog.Logger
}

func newEventUseCase(p eventParams) *EventUseCase {
	return NewEventUseCase(p.Orders, p.Events, p.Listener, p.Logger)
}

type checkoutParams struct {
	fx.In

	Users   repository.UserRepository
	Orders  repository.OrderRepository
	Gateway PaymentGateway
	Events  *EventUseCase
	Config  *config.Config
	Logger  *slog.Logger
}

func newCheckoutUseCase(p checkoutParams) *CheckoutUseCase {
	return NewCheckoutUseCase(p.Users, p.Orders, p.Gateway, p.Events, p.Config.PaymentReturnURL, p.Logger)
}

type reconcileParams struct {
	fx.In

	Orders  repository.OrderRepository
	Gateway PaymentGateway
	Events  *EventUseCase
	Config  *config.Config
	Logger  *slog.Logger
}

func newReconcileUseCase(p reconcileParams) *ReconcileUseCase {
	return NewReconcileUseCase(p.Orders, p.Gateway, p.Events, p.Config.OrderExpiry, p.Logger)
}
