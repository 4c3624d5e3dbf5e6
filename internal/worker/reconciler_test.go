package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/valog/shopbot/internal/domain/model"
	testhelpers "github.com/valog/shopbot/internal/test"
)

func TestNewReconcilerDefaults(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	rec := NewReconciler(&testhelpers.ReconcileFacadeStub{}, time.Second, time.Minute, 0, 0, logger)
	if rec.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", rec.batchSize)
	}
	if rec.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", rec.workers)
	}
}

func TestReconcilerRoutesOrdersByState(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	created := model.Order{ID: uuid.New(), State: model.OrderStateCreated, Version: 1}
	awaiting := model.Order{ID: uuid.New(), State: model.OrderStateAwaitingPayment, Version: 2}
	facade := &testhelpers.ReconcileFacadeStub{
		Stale: map[model.OrderState][]model.Order{
			model.OrderStateCreated:         {created},
			model.OrderStateAwaitingPayment: {awaiting},
		},
	}
	rec := NewReconciler(facade, 10*time.Millisecond, time.Minute, 2, 2, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)

	deadline := time.After(500 * time.Millisecond)
	for {
		retries, reconciles := facade.Calls()
		if len(retries) > 0 && len(reconciles) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for sweep")
		case <-time.After(10 * time.Millisecond):
		}
	}

	rec.Stop()
	retries, reconciles := facade.Calls()
	if len(retries) != 1 || retries[0].ID != created.ID {
		t.Fatalf("expected intent retry for created order, got %+v", retries)
	}
	if len(reconciles) != 1 || reconciles[0].ID != awaiting.ID {
		t.Fatalf("expected reconcile for awaiting order, got %+v", reconciles)
	}
}

func TestReconcilerStopIsIdempotent(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	rec := NewReconciler(&testhelpers.ReconcileFacadeStub{}, 10*time.Millisecond, time.Minute, 1, 1, logger)

	rec.Start(context.Background())
	rec.Stop()
	rec.Stop()
}
