package lifecycle

import (
	"testing"

	"github.com/valog/shopbot/internal/domain/model"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		name    string
		state   model.OrderState
		event   model.Event
		next    model.OrderState
		effect  Effect
		defined bool
	}{
		{"intent created", model.OrderStateCreated, model.IntentCreated("ref-1"), model.OrderStateAwaitingPayment, EffectStoreReference, true},
		{"intent rejected", model.OrderStateCreated, model.IntentRejected(), model.OrderStateFailed, EffectNotifyFailure, true},
		{"payment succeeded", model.OrderStateAwaitingPayment, model.ProviderNotified(model.ProviderStatusSucceeded), model.OrderStatePaid, EffectGrantEntitlement, true},
		{"payment failed", model.OrderStateAwaitingPayment, model.ProviderNotified(model.ProviderStatusFailed), model.OrderStateFailed, EffectNotifyFailure, true},
		{"payment canceled", model.OrderStateAwaitingPayment, model.ProviderNotified(model.ProviderStatusCanceled), model.OrderStateFailed, EffectNotifyFailure, true},
		{"expiry", model.OrderStateAwaitingPayment, model.ExpiryReached(), model.OrderStateExpired, EffectNotifyExpiry, true},
		{"duplicate success on paid", model.OrderStatePaid, model.ProviderNotified(model.ProviderStatusSucceeded), model.OrderStatePaid, EffectNone, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, effect, defined := Transition(tc.state, tc.event)
			if next != tc.next || effect != tc.effect || defined != tc.defined {
				t.Fatalf("got (%s, %s, %v), want (%s, %s, %v)", next, effect, defined, tc.next, tc.effect, tc.defined)
			}
		})
	}
}

func TestTransitionUndefinedPairsAreNoOps(t *testing.T) {
	states := []model.OrderState{
		model.OrderStateCreated,
		model.OrderStateAwaitingPayment,
		model.OrderStatePaid,
		model.OrderStateFailed,
		model.OrderStateExpired,
		model.OrderStateRefunded,
	}
	events := []model.Event{
		model.IntentCreated("ref-1"),
		model.IntentRejected(),
		model.ProviderNotified(model.ProviderStatusPending),
		model.ProviderNotified(model.ProviderStatusSucceeded),
		model.ProviderNotified(model.ProviderStatusFailed),
		model.ProviderNotified(model.ProviderStatusCanceled),
		model.ExpiryReached(),
	}

	for _, state := range states {
		for _, ev := range events {
			next, effect, defined := Transition(state, ev)
			if defined {
				continue
			}
			if next != state {
				t.Fatalf("undefined pair (%s, %s) changed state to %s", state, ev.Kind, next)
			}
			if effect != EffectNone {
				t.Fatalf("undefined pair (%s, %s) produced effect %s", state, ev.Kind, effect)
			}
		}
	}
}

func TestTerminalStatesNeverTransition(t *testing.T) {
	terminal := []model.OrderState{
		model.OrderStateFailed,
		model.OrderStateExpired,
		model.OrderStateRefunded,
	}
	events := []model.Event{
		model.IntentCreated("ref-1"),
		model.ProviderNotified(model.ProviderStatusSucceeded),
		model.ProviderNotified(model.ProviderStatusFailed),
		model.ExpiryReached(),
	}

	for _, state := range terminal {
		for _, ev := range events {
			next, effect, defined := Transition(state, ev)
			if defined || next != state || effect != EffectNone {
				t.Fatalf("terminal state %s reacted to %s", state, ev.Kind)
			}
		}
	}
}

func TestPendingNotificationIsNoOp(t *testing.T) {
	next, effect, defined := Transition(model.OrderStateAwaitingPayment, model.ProviderNotified(model.ProviderStatusPending))
	if defined || next != model.OrderStateAwaitingPayment || effect != EffectNone {
		t.Fatalf("pending notification must not move the order, got (%s, %s, %v)", next, effect, defined)
	}
}
