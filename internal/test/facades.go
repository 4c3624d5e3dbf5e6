package test

import (
	"context"
	"sync"
	"time"

	"github.com/valog/shopbot/internal/domain/lifecycle"
	"github.com/valog/shopbot/internal/domain/model"
)

// GatewayStub implements the payment gateway port for tests.
type GatewayStub struct {
	mu sync.Mutex

	CreateFn func(context.Context, *model.Order, string, string) (*model.PaymentIntent, error)
	QueryFn  func(context.Context, string) (model.ProviderStatus, error)

	Intent    *model.PaymentIntent
	CreateErr error
	Status    model.ProviderStatus
	QueryErr  error

	CreateCalls []string
	QueryCalls  []string
}

// CreatePayment records the call and returns the configured intent.
func (s *GatewayStub) CreatePayment(ctx context.Context, order *model.Order, description, returnURL string) (*model.PaymentIntent, error) {
	s.mu.Lock()
	s.CreateCalls = append(s.CreateCalls, order.ID.String())
	s.mu.Unlock()
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order, description, returnURL)
	}
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if s.Intent != nil {
		intent := *s.Intent
		return &intent, nil
	}
	return &model.PaymentIntent{ProviderRef: "pay-" + order.ID.String(), ConfirmationURL: "https://pay.example/confirm", Status: model.ProviderStatusPending}, nil
}

// QueryStatus records the call and returns the configured status.
func (s *GatewayStub) QueryStatus(ctx context.Context, providerRef string) (model.ProviderStatus, error) {
	s.mu.Lock()
	s.QueryCalls = append(s.QueryCalls, providerRef)
	s.mu.Unlock()
	if s.QueryFn != nil {
		return s.QueryFn(ctx, providerRef)
	}
	if s.QueryErr != nil {
		return "", s.QueryErr
	}
	if s.Status != "" {
		return s.Status, nil
	}
	return model.ProviderStatusPending, nil
}

// SentMessage is one notifier invocation.
type SentMessage struct {
	ChatID int64
	Text   string
}

// NotifierStub records sent messages.
type NotifierStub struct {
	mu       sync.Mutex
	Messages []SentMessage
	Err      error
}

// SendMessage records the message.
func (s *NotifierStub) SendMessage(ctx context.Context, chatID int64, text string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, SentMessage{ChatID: chatID, Text: text})
	return nil
}

// Sent returns a snapshot of recorded messages.
func (s *NotifierStub) Sent() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMessage(nil), s.Messages...)
}

// OrderChange is one listener invocation.
type OrderChange struct {
	Order  model.Order
	Effect lifecycle.Effect
}

// ListenerStub records order change notifications.
type ListenerStub struct {
	mu      sync.Mutex
	Changes []OrderChange
}

// OrderChanged records the transition.
func (s *ListenerStub) OrderChanged(ctx context.Context, order *model.Order, effect lifecycle.Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Changes = append(s.Changes, OrderChange{Order: *order, Effect: effect})
}

// Recorded returns a snapshot of recorded changes.
func (s *ListenerStub) Recorded() []OrderChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]OrderChange(nil), s.Changes...)
}

// ReconcileFacadeStub implements the worker facade for tests.
type ReconcileFacadeStub struct {
	mu sync.Mutex

	Stale map[model.OrderState][]model.Order

	StaleErr     error
	RetryErr     error
	ReconcileErr error

	RetryCalls     []model.Order
	ReconcileCalls []model.Order
}

// StaleOrders returns the configured batch once per state.
func (s *ReconcileFacadeStub) StaleOrders(ctx context.Context, state model.OrderState, cutoff time.Time, limit int) ([]model.Order, error) {
	if s.StaleErr != nil {
		return nil, s.StaleErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Stale == nil {
		return nil, nil
	}
	orders := s.Stale[state]
	delete(s.Stale, state)
	return orders, nil
}

// RetryIntent records the call.
func (s *ReconcileFacadeStub) RetryIntent(ctx context.Context, order model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RetryCalls = append(s.RetryCalls, order)
	return s.RetryErr
}

// Reconcile records the call.
func (s *ReconcileFacadeStub) Reconcile(ctx context.Context, order model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReconcileCalls = append(s.ReconcileCalls, order)
	return s.ReconcileErr
}

// Calls returns snapshots of recorded retry and reconcile calls.
func (s *ReconcileFacadeStub) Calls() (retries, reconciles []model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order(nil), s.RetryCalls...), append([]model.Order(nil), s.ReconcileCalls...)
}

// PaymentFacadeStub implements the HTTP payment facade for tests.
type PaymentFacadeStub struct {
	CheckoutFn func(ctx context.Context, chatID int64, firstName, lastName string, amount float64, currency string) (*model.Order, string, error)
	OrderFn    func(ctx context.Context, id string) (*model.Order, error)
	WebhookFn  func(ctx context.Context, eventID, providerRef string, status model.ProviderStatus) (*model.Order, error)
}

// Checkout delegates to CheckoutFn.
func (s PaymentFacadeStub) Checkout(ctx context.Context, chatID int64, firstName, lastName string, amount float64, currency string) (*model.Order, string, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, chatID, firstName, lastName, amount, currency)
	}
	return &model.Order{UserID: chatID, Amount: amount, Currency: currency, State: model.OrderStateAwaitingPayment}, "https://pay.example/confirm", nil
}

// Order delegates to OrderFn.
func (s PaymentFacadeStub) Order(ctx context.Context, id string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return &model.Order{State: model.OrderStateCreated}, nil
}

// HandleWebhook delegates to WebhookFn.
func (s PaymentFacadeStub) HandleWebhook(ctx context.Context, eventID, providerRef string, status model.ProviderStatus) (*model.Order, error) {
	if s.WebhookFn != nil {
		return s.WebhookFn(ctx, eventID, providerRef, status)
	}
	return &model.Order{State: model.OrderStatePaid}, nil
}
