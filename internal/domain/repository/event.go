package repository

import (
	"context"

	"github.com/google/uuid"
)

// EventRepository is the idempotency ledger for inbound notifications
// and locally synthesized lifecycle events.
type EventRepository interface {
	// RecordIfNew atomically checks-and-inserts the event id. It
	// returns fresh=true for exactly one caller per event id. For a
	// replay it additionally reports whether the previous pass got as
	// far as a durable order mutation, so a crash between recording
	// and processing leaves the event safe to reprocess.
	RecordIfNew(ctx context.Context, eventID string, orderID uuid.UUID) (fresh bool, processed bool, err error)
	// MarkProcessed is called only after the order mutation committed.
	MarkProcessed(ctx context.Context, eventID string) error
}
