package lifecycle

import "github.com/valog/shopbot/internal/domain/model"

// Effect is the side effect requested by a defined transition. Effects
// are executed by the caller only after the new state is committed.
type Effect string

const (
	EffectNone             Effect = "none"
	EffectStoreReference   Effect = "store_reference"
	EffectGrantEntitlement Effect = "grant_entitlement"
	EffectNotifyFailure    Effect = "notify_failure"
	EffectNotifyExpiry     Effect = "notify_expiry"
)

// Transition is the authoritative mapping from (state, event) to
// (next state, effect). Every pair not listed below is a no-op that
// returns the current state unchanged with defined=false, which makes
// replaying an already-applied event safe: the second application
// changes nothing and fires no effect.
func Transition(state model.OrderState, ev model.Event) (model.OrderState, Effect, bool) {
	switch state {
	case model.OrderStateCreated:
		switch ev.Kind {
		case model.EventIntentCreated:
			return model.OrderStateAwaitingPayment, EffectStoreReference, true
		case model.EventIntentRejected:
			return model.OrderStateFailed, EffectNotifyFailure, true
		}
	case model.OrderStateAwaitingPayment:
		switch ev.Kind {
		case model.EventProviderNotified:
			switch ev.Status {
			case model.ProviderStatusSucceeded:
				return model.OrderStatePaid, EffectGrantEntitlement, true
			case model.ProviderStatusFailed, model.ProviderStatusCanceled:
				return model.OrderStateFailed, EffectNotifyFailure, true
			}
		case model.EventExpiryReached:
			return model.OrderStateExpired, EffectNotifyExpiry, true
		}
	case model.OrderStatePaid:
		// Duplicate success notification: defined, but nothing to do.
		if ev.Kind == model.EventProviderNotified && ev.Status == model.ProviderStatusSucceeded {
			return model.OrderStatePaid, EffectNone, true
		}
	}
	return state, EffectNone, false
}
