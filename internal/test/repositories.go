package test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
	"github.com/valog/shopbot/internal/domain/model"
)

// OrderRepositoryStub is an in-memory order store with real
// compare-and-swap semantics so idempotence and conflict paths can be
// exercised without a database.
type OrderRepositoryStub struct {
	mu   sync.Mutex
	ByID map[uuid.UUID]*model.Order

	CreateErr error
	GetErr    error
	CasErr    error
	CasCalls  int
}

// NewOrderRepositoryStub constructs stub repository with initialized map.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{ByID: make(map[uuid.UUID]*model.Order)}
}

// Seed stores an order as-is.
func (s *OrderRepositoryStub) Seed(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := order
	s.ByID[order.ID] = &copied
}

// Create persists a new order in CREATED state.
func (s *OrderRepositoryStub) Create(ctx context.Context, userID int64, amount float64, currency string) (*model.Order, error) {
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	order := &model.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Currency:  currency,
		State:     model.OrderStateCreated,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
	s.ByID[order.ID] = order
	copied := *order
	return &copied, nil
}

// Get returns a copy of the stored order.
func (s *OrderRepositoryStub) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.ByID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

// GetByProviderRef scans stored orders for the provider reference.
func (s *OrderRepositoryStub) GetByProviderRef(ctx context.Context, providerRef string) (*model.Order, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.ByID {
		if order.ProviderRef != nil && *order.ProviderRef == providerRef {
			copied := *order
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// CompareAndSwap applies the mutator under version check.
func (s *OrderRepositoryStub) CompareAndSwap(ctx context.Context, id uuid.UUID, expectedVersion int64, mutate func(*model.Order) error) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CasCalls++
	if s.CasErr != nil {
		return nil, s.CasErr
	}
	order, ok := s.ByID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if order.Version != expectedVersion {
		return nil, domainErrors.ErrVersionConflict
	}
	working := *order
	if err := mutate(&working); err != nil {
		return nil, err
	}
	working.Version++
	working.UpdatedAt = time.Now()
	s.ByID[id] = &working
	copied := working
	return &copied, nil
}

// SelectStale filters stored orders by state and last update.
func (s *OrderRepositoryStub) SelectStale(ctx context.Context, state model.OrderState, cutoff time.Time, limit int) ([]model.Order, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, order := range s.ByID {
		if order.State == state && !order.UpdatedAt.After(cutoff) {
			result = append(result, *order)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

// EventRepositoryStub is an in-memory idempotency ledger.
type EventRepositoryStub struct {
	mu      sync.Mutex
	Records map[string]*model.WebhookEvent

	RecordErr error
	MarkErr   error
}

// NewEventRepositoryStub constructs stub ledger with initialized map.
func NewEventRepositoryStub() *EventRepositoryStub {
	return &EventRepositoryStub{Records: make(map[string]*model.WebhookEvent)}
}

// RecordIfNew inserts the event id once.
func (s *EventRepositoryStub) RecordIfNew(ctx context.Context, eventID string, orderID uuid.UUID) (bool, bool, error) {
	if s.RecordErr != nil {
		return false, false, s.RecordErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.Records[eventID]; ok {
		return false, existing.Processed, nil
	}
	s.Records[eventID] = &model.WebhookEvent{EventID: eventID, OrderID: orderID, ReceivedAt: time.Now()}
	return true, false, nil
}

// MarkProcessed flips the processed flag.
func (s *EventRepositoryStub) MarkProcessed(ctx context.Context, eventID string) error {
	if s.MarkErr != nil {
		return s.MarkErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.Records[eventID]; ok {
		record.Processed = true
	}
	return nil
}

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	mu    sync.Mutex
	Users map[int64]*model.User
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized map.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{Users: make(map[int64]*model.User)}
}

// Upsert stores or refreshes the user.
func (s *UserRepositoryStub) Upsert(ctx context.Context, chatID int64, firstName, lastName string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &model.User{ChatID: chatID, FirstName: firstName, LastName: lastName, CreatedAt: time.Now()}
	s.Users[chatID] = user
	copied := *user
	return &copied, nil
}

// GetByChatID fetches the user or returns not found.
func (s *UserRepositoryStub) GetByChatID(ctx context.Context, chatID int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.Users[chatID]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// SessionRepositoryStub keeps conversation state in-memory.
type SessionRepositoryStub struct {
	mu       sync.Mutex
	Sessions map[int64]*model.Session
	Err      error
}

// NewSessionRepositoryStub constructs stub repository with initialized map.
func NewSessionRepositoryStub() *SessionRepositoryStub {
	return &SessionRepositoryStub{Sessions: make(map[int64]*model.Session)}
}

// Get loads the session or returns not found.
func (s *SessionRepositoryStub) Get(ctx context.Context, chatID int64) (*model.Session, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.Sessions[chatID]; ok {
		copied := *session
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// Set stores the session.
func (s *SessionRepositoryStub) Set(ctx context.Context, chatID int64, session *model.Session) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.Sessions[chatID] = &copied
	return nil
}

// Clear removes the session.
func (s *SessionRepositoryStub) Clear(ctx context.Context, chatID int64) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Sessions, chatID)
	return nil
}
