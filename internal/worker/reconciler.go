package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
	"github.com/valog/shopbot/internal/domain/model"
)

// ReconcileFacade exposes the subset of application functionality required by the worker.
type ReconcileFacade interface {
	StaleOrders(ctx context.Context, state model.OrderState, cutoff time.Time, limit int) ([]model.Order, error)
	RetryIntent(ctx context.Context, order model.Order) error
	Reconcile(ctx context.Context, order model.Order) error
}

// Reconciler periodically sweeps non-terminal orders and drives them
// forward concurrently: orders stuck in CREATED get a fresh intent
// request, orders in AWAITING_PAYMENT get a provider status poll.
type Reconciler struct {
	facade       ReconcileFacade
	pollInterval time.Duration
	pendingGrace time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewReconciler constructs reconciliation worker pool.
func NewReconciler(facade ReconcileFacade, pollInterval, pendingGrace time.Duration, batchSize, workers int, logger *slog.Logger) *Reconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Reconciler{
		facade:       facade,
		pollInterval: pollInterval,
		pendingGrace: pendingGrace,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background processing.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Reconciler) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *Reconciler) fetchAndDispatch(ctx context.Context) {
	// The grace period keeps the sweep from racing freshly created
	// orders whose webhooks are still in flight.
	cutoff := time.Now().Add(-r.pendingGrace)
	for _, state := range []model.OrderState{model.OrderStateCreated, model.OrderStateAwaitingPayment} {
		orders, err := r.facade.StaleOrders(ctx, state, cutoff, r.batchSize)
		if err != nil {
			r.logger.Error("fetch stale orders failed", slog.String("state", string(state)), slog.String("error", err.Error()))
			continue
		}
		for _, order := range orders {
			select {
			case <-ctx.Done():
				return
			case r.jobs <- order:
			}
		}
	}
}

func (r *Reconciler) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-r.jobs:
			if !ok {
				return
			}
			r.handleOrder(ctx, order)
		}
	}
}

func (r *Reconciler) handleOrder(ctx context.Context, order model.Order) {
	var err error
	if order.State == model.OrderStateCreated {
		err = r.facade.RetryIntent(ctx, order)
	} else {
		err = r.facade.Reconcile(ctx, order)
	}
	if err == nil {
		return
	}
	if errors.Is(err, domainErrors.ErrGatewayUnavailable) {
		// Transient; the next sweep retries.
		r.logger.Warn("gateway unavailable during sweep", slog.String("order_id", order.ID.String()))
		return
	}
	if errors.Is(err, domainErrors.ErrVersionConflict) {
		// A webhook won the race; the order is already further along.
		return
	}
	r.logger.Error("order sweep failed", slog.String("order_id", order.ID.String()), slog.String("error", err.Error()))
}
