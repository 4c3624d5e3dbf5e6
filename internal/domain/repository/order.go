package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/valog/shopbot/internal/domain/model"
)

// OrderRepository describes persistence operations with orders. All
// mutations go through CompareAndSwap; there is no unconditional update.
type OrderRepository interface {
	Create(ctx context.Context, userID int64, amount float64, currency string) (*model.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetByProviderRef(ctx context.Context, providerRef string) (*model.Order, error)
	// CompareAndSwap loads the order, verifies its version still equals
	// expectedVersion, applies mutate and persists the result with the
	// version incremented, all inside one transaction. A version
	// mismatch fails with ErrVersionConflict and the caller retries
	// with reloaded state.
	CompareAndSwap(ctx context.Context, id uuid.UUID, expectedVersion int64, mutate func(*model.Order) error) (*model.Order, error)
	// SelectStale returns orders in the given state whose last update
	// is at or before cutoff, oldest first.
	SelectStale(ctx context.Context, state model.OrderState, cutoff time.Time, limit int) ([]model.Order, error)
}
