package worker

import (
	"context"
	"time"

	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// CartSweeper periodically reclaims cart-status orders whose
// last_updated is older than the retention window. The delete is
// scoped to status = cart, so a checkout that promotes the row
// concurrently wins: the sweep's predicate no longer matches.
type CartSweeper struct {
	store     *store.Store
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
	done      chan struct{}
}

// NewCartSweeper creates a new cart sweeper
func NewCartSweeper(store *store.Store, interval, retention time.Duration) *CartSweeper {
	return &CartSweeper{
		store:     store,
		interval:  interval,
		retention: retention,
		logger:    util.GetLogger(),
		done:      make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled
func (w *CartSweeper) Start(ctx context.Context) error {
	w.logger.Info("Starting cart sweeper",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Cart sweeper stopping")
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Stop terminates the sweep loop
func (w *CartSweeper) Stop() {
	close(w.done)
}

// sweep deletes stale carts; individual failures are logged and the
// loop continues
func (w *CartSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.retention)

	swept, err := w.store.DeleteStaleCarts(ctx, cutoff)
	if err != nil {
		w.logger.Error("Cart sweep failed", zap.Error(err))
		return
	}

	if swept > 0 {
		util.StaleCartsSweptTotal.Add(float64(swept))
		w.logger.Info("Stale carts reclaimed",
			zap.Int64("count", swept),
			zap.Time("cutoff", cutoff))
	}
}
