package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
	"github.com/valog/shopbot/internal/domain/model"
)

func newMockStorage(t *testing.T) (*Storage, pgxmockv3.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmockv3.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	storage := &Storage{pool: mock, logger: logger}
	return storage, mock
}

func expectSchema(mock pgxmockv3.PgxPoolIface) {
	tableStatements := []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS webhook_events",
	}
	for _, stmt := range tableStatements {
		mock.ExpectExec(stmt).WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
	}
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_orders_state ON orders").WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_orders_user ON orders").WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
}

func TestNewRejectsBadDSN(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if _, err := New(context.Background(), ":://bad", logger); err == nil {
		t.Fatal("expected error")
	}
}

func TestInitSchema(t *testing.T) {
	storage, mock := newMockStorage(t)
	expectSchema(mock)

	if err := storage.initSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrderRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	now := time.Now()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(pgxmockv3.AnyArg(), int64(42), 100.0, "RUB", model.OrderStateCreated).
		WillReturnRows(pgxmockv3.NewRows([]string{"created_at", "updated_at", "version"}).AddRow(now, now, int64(1)))

	order, err := storage.Orders().Create(context.Background(), 42, 100.0, "RUB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.State != model.OrderStateCreated {
		t.Fatalf("expected CREATED state, got %s", order.State)
	}
	if order.Version != 1 {
		t.Fatalf("expected version 1, got %d", order.Version)
	}
	if order.ProviderRef != nil {
		t.Fatalf("expected empty provider reference on creation")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrderRepositoryGetNotFound(t *testing.T) {
	storage, mock := newMockStorage(t)
	id := uuid.New()
	mock.ExpectQuery("SELECT id, user_id, amount, currency, state, provider_ref, created_at, updated_at, version FROM orders WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "user_id", "amount", "currency", "state", "provider_ref", "created_at", "updated_at", "version"}))

	if _, err := storage.Orders().Get(context.Background(), id); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderRepositoryCompareAndSwap(t *testing.T) {
	storage, mock := newMockStorage(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, user_id, amount, currency, state, provider_ref, created_at, updated_at, version FROM orders WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "user_id", "amount", "currency", "state", "provider_ref", "created_at", "updated_at", "version"}).
			AddRow(id, int64(42), 100.0, "RUB", model.OrderStateCreated, (*string)(nil), now, now, int64(1)))
	mock.ExpectQuery("UPDATE orders").
		WithArgs(model.OrderStateAwaitingPayment, pgxmockv3.AnyArg(), id, int64(1)).
		WillReturnRows(pgxmockv3.NewRows([]string{"updated_at", "version"}).AddRow(now, int64(2)))
	mock.ExpectCommit()

	ref := "pay-1"
	order, err := storage.Orders().CompareAndSwap(context.Background(), id, 1, func(o *model.Order) error {
		o.State = model.OrderStateAwaitingPayment
		o.ProviderRef = &ref
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Version != 2 {
		t.Fatalf("expected version 2, got %d", order.Version)
	}
	if order.State != model.OrderStateAwaitingPayment {
		t.Fatalf("unexpected state %s", order.State)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrderRepositoryCompareAndSwapVersionConflict(t *testing.T) {
	storage, mock := newMockStorage(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, user_id, amount, currency, state, provider_ref, created_at, updated_at, version FROM orders WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "user_id", "amount", "currency", "state", "provider_ref", "created_at", "updated_at", "version"}).
			AddRow(id, int64(42), 100.0, "RUB", model.OrderStateAwaitingPayment, (*string)(nil), now, now, int64(3)))
	mock.ExpectRollback()

	_, err := storage.Orders().CompareAndSwap(context.Background(), id, 1, func(o *model.Order) error {
		t.Fatal("mutator must not run on version conflict")
		return nil
	})
	if !errors.Is(err, domainErrors.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestOrderRepositoryCompareAndSwapMutatorError(t *testing.T) {
	storage, mock := newMockStorage(t)
	id := uuid.New()
	now := time.Now()
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, user_id, amount, currency, state, provider_ref, created_at, updated_at, version FROM orders WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "user_id", "amount", "currency", "state", "provider_ref", "created_at", "updated_at", "version"}).
			AddRow(id, int64(42), 100.0, "RUB", model.OrderStateCreated, (*string)(nil), now, now, int64(1)))
	mock.ExpectRollback()

	_, err := storage.Orders().CompareAndSwap(context.Background(), id, 1, func(*model.Order) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutator error, got %v", err)
	}
}

func TestOrderRepositorySelectStale(t *testing.T) {
	storage, mock := newMockStorage(t)
	id := uuid.New()
	now := time.Now()
	cutoff := now.Add(-time.Minute)
	ref := "pay-9"

	mock.ExpectQuery("SELECT id, user_id, amount, currency, state, provider_ref, created_at, updated_at, version FROM orders").
		WithArgs(model.OrderStateAwaitingPayment, cutoff, 5).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "user_id", "amount", "currency", "state", "provider_ref", "created_at", "updated_at", "version"}).
			AddRow(id, int64(42), 100.0, "RUB", model.OrderStateAwaitingPayment, &ref, now, now, int64(2)))

	orders, err := storage.Orders().SelectStale(context.Background(), model.OrderStateAwaitingPayment, cutoff, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected one order, got %d", len(orders))
	}
	if orders[0].ProviderRef == nil || *orders[0].ProviderRef != "pay-9" {
		t.Fatalf("unexpected provider ref %v", orders[0].ProviderRef)
	}
}

func TestEventRepositoryRecordIfNew(t *testing.T) {
	storage, mock := newMockStorage(t)
	orderID := uuid.New()

	mock.ExpectExec("INSERT INTO webhook_events").
		WithArgs("evt-1", orderID).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))

	fresh, processed, err := storage.Events().RecordIfNew(context.Background(), "evt-1", orderID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fresh || processed {
		t.Fatalf("expected fresh unprocessed event, got fresh=%v processed=%v", fresh, processed)
	}
}

func TestEventRepositoryRecordIfNewDuplicate(t *testing.T) {
	storage, mock := newMockStorage(t)
	orderID := uuid.New()

	mock.ExpectExec("INSERT INTO webhook_events").
		WithArgs("evt-1", orderID).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT processed FROM webhook_events").
		WithArgs("evt-1").
		WillReturnRows(pgxmockv3.NewRows([]string{"processed"}).AddRow(true))

	fresh, processed, err := storage.Events().RecordIfNew(context.Background(), "evt-1", orderID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fresh || !processed {
		t.Fatalf("expected processed duplicate, got fresh=%v processed=%v", fresh, processed)
	}
}

func TestEventRepositoryMarkProcessed(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectExec("UPDATE webhook_events SET processed=TRUE").
		WithArgs("evt-1").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))

	if err := storage.Events().MarkProcessed(context.Background(), "evt-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUserRepositoryUpsert(t *testing.T) {
	storage, mock := newMockStorage(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(int64(42), "Ada", "L").
		WillReturnRows(pgxmockv3.NewRows([]string{"created_at"}).AddRow(now))

	user, err := storage.Users().Upsert(context.Background(), 42, "Ada", "L")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ChatID != 42 || user.FirstName != "Ada" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestUserRepositoryGetNotFound(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectQuery("SELECT chat_id, first_name, last_name, created_at FROM users").
		WithArgs(int64(7)).
		WillReturnRows(pgxmockv3.NewRows([]string{"chat_id", "first_name", "last_name", "created_at"}))

	if _, err := storage.Users().GetByChatID(context.Background(), 7); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	storage, mock := newMockStorage(t)
	mock.ExpectPing()
	if err := storage.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
