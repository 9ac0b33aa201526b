package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-service/internal/config"
	"github.com/spec-kit/bookstore-service/internal/events"
	"github.com/spec-kit/bookstore-service/internal/service"
)

// ReconciliationWorker resumes orphaned catalog records: products whose
// processor registration or link-back never completed. It runs on a timer and
// is also woken immediately when a product_orphaned event is published.
type ReconciliationWorker struct {
	catalog *service.CatalogService
	logger  *zap.Logger
	cfg     config.ReconcileConfig
	wake    chan struct{}
}

// NewReconciliationWorker constructs the worker and subscribes it to orphan
// events.
func NewReconciliationWorker(catalog *service.CatalogService, dispatcher events.Dispatcher, cfg config.ReconcileConfig, logger *zap.Logger) *ReconciliationWorker {
	w := &ReconciliationWorker{
		catalog: catalog,
		logger:  logger,
		cfg:     cfg,
		wake:    make(chan struct{}, 1),
	}
	if dispatcher != nil {
		dispatcher.Subscribe(events.EventProductOrphaned, func(context.Context, events.Event) error {
			w.Wake()
			return nil
		})
	}
	return w
}

// Wake schedules an immediate reconciliation pass.
func (w *ReconciliationWorker) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Run loops until ctx is cancelled.
func (w *ReconciliationWorker) Run(ctx context.Context) {
	if !w.cfg.Enabled {
		w.logger.Info("reconciliation worker disabled")
		return
	}

	ticker := time.NewTicker(w.cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-w.wake:
			// immediate pass after an orphan event; the event fires inside
			// the failing request, so give the store a beat to settle
			time.Sleep(100 * time.Millisecond)
		}
		w.runOnce(ctx)

		// drop any wake queued by our own failed retries; the ticker
		// covers those on the next interval
		select {
		case <-w.wake:
		default:
		}
	}
}

func (w *ReconciliationWorker) runOnce(ctx context.Context) {
	batch := w.cfg.BatchSize
	if batch <= 0 {
		batch = 20
	}

	orphans, err := w.catalog.ListOrphans(ctx, batch)
	if err != nil {
		w.logger.Error("list orphans failed", zap.Error(err))
		return
	}
	if len(orphans) == 0 {
		return
	}

	w.logger.Info("reconciling orphaned products", zap.Int("count", len(orphans)))
	for i := range orphans {
		product := orphans[i]
		if err := w.catalog.Register(ctx, &product); err != nil {
			w.logger.Warn("reconciliation attempt failed",
				zap.String("catalog_id", product.ID), zap.Error(err))
			continue
		}
		w.logger.Info("orphan reconciled",
			zap.String("catalog_id", product.ID),
			zap.Stringp("external_product_id", product.ExternalProductID))
	}
}
