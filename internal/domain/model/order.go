package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderState describes payment lifecycle.
type OrderState string

const (
	OrderStateCreated         OrderState = "CREATED"
	OrderStateAwaitingPayment OrderState = "AWAITING_PAYMENT"
	OrderStatePaid            OrderState = "PAID"
	OrderStateFailed          OrderState = "FAILED"
	OrderStateExpired         OrderState = "EXPIRED"
	OrderStateRefunded        OrderState = "REFUNDED"
)

// Terminal reports whether the state admits no further transitions.
func (s OrderState) Terminal() bool {
	switch s {
	case OrderStatePaid, OrderStateFailed, OrderStateExpired, OrderStateRefunded:
		return true
	}
	return false
}

// Order describes a single purchase attempt owned by a Telegram user.
// Version increments on every persisted mutation and is used for
// stale-write detection.
type Order struct {
	ID          uuid.UUID
	UserID      int64
	Amount      float64
	Currency    string
	State       OrderState
	ProviderRef *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
}
