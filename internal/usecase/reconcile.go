package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
	"github.com/valog/shopbot/internal/domain/model"
	"github.com/valog/shopbot/internal/domain/repository"
)

// ReconcileUseCase re-derives order state from the provider. Webhooks
// are an optimization; this path is the guarantee of forward progress.
type ReconcileUseCase struct {
	orders  repository.OrderRepository
	gateway PaymentGateway
	events  *EventUseCase
	expiry  time.Duration
	logger  *slog.Logger

	now func() time.Time
}

// NewReconcileUseCase constructs ReconcileUseCase.
func NewReconcileUseCase(orders repository.OrderRepository, gateway PaymentGateway, events *EventUseCase, expiry time.Duration, logger *slog.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{
		orders:  orders,
		gateway: gateway,
		events:  events,
		expiry:  expiry,
		logger:  logger,
		now:     time.Now,
	}
}

// StaleOrders returns orders in the given state that have not been
// touched since cutoff.
func (u *ReconcileUseCase) StaleOrders(ctx context.Context, state model.OrderState, cutoff time.Time, limit int) ([]model.Order, error) {
	return u.orders.SelectStale(ctx, state, cutoff, limit)
}

// Reconcile polls the gateway for a pending order and feeds the result
// through the same event path as webhook delivery. Event ids are
// derived from the order version, so repeated sweeps over the same
// snapshot dedupe in the ledger.
func (u *ReconcileUseCase) Reconcile(ctx context.Context, order model.Order) error {
	if order.ProviderRef == nil {
		return fmt.Errorf("order %s has no provider reference", order.ID)
	}

	status, err := u.gateway.QueryStatus(ctx, *order.ProviderRef)
	if err != nil {
		// GatewayUnavailable is left for the next sweep.
		return err
	}

	if status != model.ProviderStatusPending {
		eventID := fmt.Sprintf("reconcile-%s-%d-%s", order.ID, order.Version, status)
		if _, err := u.events.ApplyRecorded(ctx, eventID, order.ID, model.ProviderNotified(status)); err != nil && !errors.Is(err, domainErrors.ErrDuplicateEvent) {
			return err
		}
		return nil
	}

	// Still pending at the provider: check the absolute deadline. The
	// gateway answer always wins over the local clock, so expiry is
	// only emitted after a same-sweep poll confirmed pending.
	if u.now().Sub(order.CreatedAt) >= u.expiry {
		eventID := fmt.Sprintf("expire-%s-%d", order.ID, order.Version)
		if _, err := u.events.ApplyRecorded(ctx, eventID, order.ID, model.ExpiryReached()); err != nil && !errors.Is(err, domainErrors.ErrDuplicateEvent) {
			return err
		}
	}
	return nil
}
