package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
	"github.com/valog/shopbot/internal/domain/lifecycle"
	"github.com/valog/shopbot/internal/domain/model"
	"github.com/valog/shopbot/internal/domain/repository"
)

// casAttempts bounds optimistic-concurrency retries before the
// conflict surfaces to the caller.
const casAttempts = 3

var errNoTransition = errors.New("no transition")

// EventUseCase applies lifecycle events to orders. Mutations go through
// the store's compare-and-swap, so concurrent webhook and
// reconciliation deliveries against the same order serialize on the
// order version rather than on a lock.
type EventUseCase struct {
	orders   repository.OrderRepository
	events   repository.EventRepository
	listener Listener
	logger   *slog.Logger
}

// NewEventUseCase constructs EventUseCase.
func NewEventUseCase(orders repository.OrderRepository, events repository.EventRepository, listener Listener, logger *slog.Logger) *EventUseCase {
	return &EventUseCase{orders: orders, events: events, listener: listener, logger: logger}
}

// HandleProviderEvent resolves the order behind a provider notification
// and applies it through the idempotency ledger.
func (u *EventUseCase) HandleProviderEvent(ctx context.Context, eventID, providerRef string, status model.ProviderStatus) (*model.Order, error) {
	order, err := u.orders.GetByProviderRef(ctx, providerRef)
	if err != nil {
		return nil, err
	}
	return u.ApplyRecorded(ctx, eventID, order.ID, model.ProviderNotified(status))
}

// ApplyRecorded applies an event exactly once per event id. A replay of
// an already-processed event returns the current order state together
// with ErrDuplicateEvent. A replay of an event whose first pass crashed
// before committing is reprocessed, which is safe because undefined
// transitions are no-ops.
func (u *EventUseCase) ApplyRecorded(ctx context.Context, eventID string, orderID uuid.UUID, ev model.Event) (*model.Order, error) {
	fresh, processed, err := u.events.RecordIfNew(ctx, eventID, orderID)
	if err != nil {
		return nil, err
	}
	if !fresh && processed {
		u.logger.Info("duplicate event ignored", slog.String("event_id", eventID), slog.String("order_id", orderID.String()))
		order, err := u.orders.Get(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return order, domainErrors.ErrDuplicateEvent
	}

	order, err := u.Apply(ctx, orderID, ev)
	if err != nil {
		return nil, err
	}

	if err := u.events.MarkProcessed(ctx, eventID); err != nil {
		// The order mutation is already durable; a replay of this
		// event id will reprocess and no-op.
		u.logger.Warn("mark processed failed", slog.String("event_id", eventID), slog.String("error", err.Error()))
	}
	return order, nil
}

// Apply runs the transition function against current order state and
// persists the outcome, retrying on version conflicts with reloaded
// state. Undefined (state, event) pairs leave the order untouched.
func (u *EventUseCase) Apply(ctx context.Context, orderID uuid.UUID, ev model.Event) (*model.Order, error) {
	for attempt := 0; attempt < casAttempts; attempt++ {
		order, err := u.orders.Get(ctx, orderID)
		if err != nil {
			return nil, err
		}

		next, effect, defined := lifecycle.Transition(order.State, ev)
		if !defined || (next == order.State && effect == lifecycle.EffectNone) {
			return order, nil
		}

		var appliedEffect lifecycle.Effect
		updated, err := u.orders.CompareAndSwap(ctx, order.ID, order.Version, func(o *model.Order) error {
			next, effect, defined := lifecycle.Transition(o.State, ev)
			if !defined || (next == o.State && effect == lifecycle.EffectNone) {
				return errNoTransition
			}
			if effect == lifecycle.EffectStoreReference {
				if o.ProviderRef != nil && *o.ProviderRef != ev.ProviderRef {
					return fmt.Errorf("provider reference already set for order %s", o.ID)
				}
				ref := ev.ProviderRef
				o.ProviderRef = &ref
			}
			o.State = next
			appliedEffect = effect
			return nil
		})
		if err != nil {
			if errors.Is(err, errNoTransition) {
				return order, nil
			}
			if errors.Is(err, domainErrors.ErrVersionConflict) {
				u.logger.Info("version conflict, retrying", slog.String("order_id", orderID.String()), slog.Int("attempt", attempt+1))
				continue
			}
			return nil, err
		}

		u.logger.Info("order transitioned",
			slog.String("order_id", updated.ID.String()),
			slog.String("state", string(updated.State)),
			slog.String("event", string(ev.Kind)),
		)
		if u.listener != nil {
			u.listener.OrderChanged(ctx, updated, appliedEffect)
		}
		return updated, nil
	}
	return nil, fmt.Errorf("apply event %s to order %s: %w", ev.Kind, orderID, domainErrors.ErrVersionConflict)
}
