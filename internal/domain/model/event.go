package model

import (
	"time"

	"github.com/google/uuid"
)

// EventKind discriminates lifecycle events fed to the order state machine.
type EventKind string

const (
	EventIntentCreated    EventKind = "INTENT_CREATED"
	EventIntentRejected   EventKind = "INTENT_REJECTED"
	EventProviderNotified EventKind = "PROVIDER_NOTIFIED"
	EventExpiryReached    EventKind = "EXPIRY_REACHED"
)

// Event is a normalized lifecycle event. Webhook delivery and
// reconciliation polls both produce the same ProviderNotified shape so
// transition logic stays transport-agnostic.
type Event struct {
	Kind        EventKind
	ProviderRef string
	Status      ProviderStatus
}

// IntentCreated reports a payment intent registered at the gateway.
func IntentCreated(providerRef string) Event {
	return Event{Kind: EventIntentCreated, ProviderRef: providerRef}
}

// IntentRejected reports a terminal gateway refusal to create an intent.
func IntentRejected() Event {
	return Event{Kind: EventIntentRejected}
}

// ProviderNotified reports a payment status observed at the gateway.
func ProviderNotified(status ProviderStatus) Event {
	return Event{Kind: EventProviderNotified, Status: status}
}

// ExpiryReached reports that the pending-payment deadline passed.
func ExpiryReached() Event {
	return Event{Kind: EventExpiryReached}
}

// WebhookEvent is the idempotency record for a provider notification.
type WebhookEvent struct {
	EventID    string
	OrderID    uuid.UUID
	ReceivedAt time.Time
	Processed  bool
}
