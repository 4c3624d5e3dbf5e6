package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
	"github.com/valog/shopbot/internal/domain/model"
	"github.com/valog/shopbot/internal/domain/repository"
)

// DB is the subset of pgxpool.Pool used by the storage. Declared as an
// interface so tests can substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   DB
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type eventRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Events() repository.EventRepository {
	return &eventRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            chat_id BIGINT PRIMARY KEY,
            first_name TEXT NOT NULL DEFAULT '',
            last_name TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(chat_id),
            amount DOUBLE PRECISION NOT NULL,
            currency TEXT NOT NULL,
            state TEXT NOT NULL,
            provider_ref TEXT UNIQUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            version BIGINT NOT NULL DEFAULT 1
        )`,
		`CREATE TABLE IF NOT EXISTS webhook_events (
            event_id TEXT PRIMARY KEY,
            order_id UUID NOT NULL REFERENCES orders(id),
            received_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            processed BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_state ON orders(state, updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- UserRepository implementation ---

func (r *userRepository) Upsert(ctx context.Context, chatID int64, firstName, lastName string) (*model.User, error) {
	const query = `INSERT INTO users (chat_id, first_name, last_name) VALUES ($1, $2, $3)
                   ON CONFLICT (chat_id) DO UPDATE
                   SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name
                   RETURNING created_at`
	u := model.User{ChatID: chatID, FirstName: firstName, LastName: lastName}
	if err := r.storage.pool.QueryRow(ctx, query, chatID, firstName, lastName).Scan(&u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByChatID(ctx context.Context, chatID int64) (*model.User, error) {
	const query = `SELECT chat_id, first_name, last_name, created_at FROM users WHERE chat_id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, chatID).Scan(&u.ChatID, &u.FirstName, &u.LastName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, user_id, amount, currency, state, provider_ref, created_at, updated_at, version`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Amount, &o.Currency, &o.State, &o.ProviderRef, &o.CreatedAt, &o.UpdatedAt, &o.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, userID int64, amount float64, currency string) (*model.Order, error) {
	const query = `INSERT INTO orders (id, user_id, amount, currency, state)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING created_at, updated_at, version`
	order := model.Order{
		ID:       uuid.New(),
		UserID:   userID,
		Amount:   amount,
		Currency: currency,
		State:    model.OrderStateCreated,
	}
	err := r.storage.pool.QueryRow(ctx, query, order.ID, userID, amount, currency, order.State).
		Scan(&order.CreatedAt, &order.UpdatedAt, &order.Version)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) GetByProviderRef(ctx context.Context, providerRef string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE provider_ref=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, providerRef))
}

func (r *orderRepository) CompareAndSwap(ctx context.Context, id uuid.UUID, expectedVersion int64, mutate func(*model.Order) error) (*model.Order, error) {
	var result *model.Order
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const selectQuery = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
		order, err := scanOrder(tx.QueryRow(ctx, selectQuery, id))
		if err != nil {
			return err
		}
		if order.Version != expectedVersion {
			return domainErrors.ErrVersionConflict
		}

		if err := mutate(order); err != nil {
			return err
		}

		const updateQuery = `UPDATE orders
                             SET state=$1, provider_ref=$2, updated_at=NOW(), version=version+1
                             WHERE id=$3 AND version=$4
                             RETURNING updated_at, version`
		err = tx.QueryRow(ctx, updateQuery, order.State, order.ProviderRef, id, expectedVersion).
			Scan(&order.UpdatedAt, &order.Version)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrVersionConflict
			}
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) SelectStale(ctx context.Context, state model.OrderState, cutoff time.Time, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE state=$1 AND updated_at <= $2
                   ORDER BY updated_at
                   LIMIT $3`
	rows, err := r.storage.pool.Query(ctx, query, state, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Amount, &o.Currency, &o.State, &o.ProviderRef, &o.CreatedAt, &o.UpdatedAt, &o.Version); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- EventRepository implementation ---

func (r *eventRepository) RecordIfNew(ctx context.Context, eventID string, orderID uuid.UUID) (bool, bool, error) {
	const insertQuery = `INSERT INTO webhook_events (event_id, order_id) VALUES ($1, $2)
                         ON CONFLICT (event_id) DO NOTHING`
	tag, err := r.storage.pool.Exec(ctx, insertQuery, eventID, orderID)
	if err != nil {
		return false, false, err
	}
	if tag.RowsAffected() == 1 {
		return true, false, nil
	}

	const selectQuery = `SELECT processed FROM webhook_events WHERE event_id=$1`
	var processed bool
	if err := r.storage.pool.QueryRow(ctx, selectQuery, eventID).Scan(&processed); err != nil {
		return false, false, err
	}
	return false, processed, nil
}

func (r *eventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	const query = `UPDATE webhook_events SET processed=TRUE WHERE event_id=$1`
	_, err := r.storage.pool.Exec(ctx, query, eventID)
	return err
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
