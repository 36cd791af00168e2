package workers

import (
	"context"
	"time"

	"edupay_backend/internal/gateway"
	"edupay_backend/internal/logger"
	"edupay_backend/internal/models"
	"edupay_backend/internal/repositories"

	"gorm.io/gorm"
)

// statusQuerier is the slice of the gateway client the worker needs.
type statusQuerier interface {
	QueryStatus(ctx context.Context, merchantOrderID string) (*gateway.StatusResult, error)
}

// PaymentWorker sweeps PENDING payments whose webhook never arrived, asking
// the gateway for the real outcome. It is the safety net behind the callback
// receiver and the on-demand verification fallback.
type PaymentWorker struct {
	db          *gorm.DB
	gw          statusQuerier
	pendingRepo *repositories.PendingPaymentRepository

	interval   time.Duration // sweep frequency
	staleAfter time.Duration // min age before a PENDING row is swept
	abandonTTL time.Duration // age after which a still-pending order is marked failed
	batchSize  int
}

func NewPaymentWorker(db *gorm.DB, gw statusQuerier, expiryMins int) *PaymentWorker {
	return &PaymentWorker{
		db:          db,
		gw:          gw,
		pendingRepo: repositories.NewPendingPaymentRepository(),
		interval:    5 * time.Minute,
		staleAfter:  time.Duration(expiryMins) * time.Minute,
		abandonTTL:  24 * time.Hour,
		batchSize:   50,
	}
}

func (w *PaymentWorker) Start(ctx context.Context) {
	go w.sweepLoop(ctx)
}

func (w *PaymentWorker) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("payment worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *PaymentWorker) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	rows, err := w.pendingRepo.FindStalePending(w.db, cutoff, w.batchSize)
	if err != nil {
		logger.Error("payment worker: failed to list stale pending payments", "error", err)
		return
	}
	if len(rows) == 0 {
		return
	}

	logger.Info("payment worker: sweeping stale pending payments", "count", len(rows))
	for i := range rows {
		w.reconcileOne(ctx, &rows[i])
	}
}

func (w *PaymentWorker) reconcileOne(ctx context.Context, p *models.PendingPayment) {
	result, err := w.gw.QueryStatus(ctx, p.MerchantOrderID)
	if err != nil {
		// A transport failure says nothing about the order's outcome: the
		// gateway may have settled it already. Keep the row PENDING and let
		// the next sweep or a late callback resolve it.
		logger.Warn("payment worker: gateway status query failed",
			"merchant_order_id", p.MerchantOrderID, "error", err)
		return
	}

	var next models.PaymentState
	switch result.StatusCode {
	case gateway.StatusSuccess:
		next = models.PaymentStateCompleted
	case gateway.StatusFailed:
		next = models.PaymentStateFailed
	default:
		// The gateway itself confirms the order is still unsettled. Only
		// such confirmed-unsettled orders may be expired by age.
		w.abandonIfExpired(p)
		return
	}

	if result.Reference != "" && p.Reference == "" {
		if err := w.pendingRepo.SetReference(w.db, p.MerchantOrderID, result.Reference, nil); err != nil {
			logger.Warn("payment worker: failed to store reference",
				"merchant_order_id", p.MerchantOrderID, "error", err)
		}
	}

	final, err := w.pendingRepo.MarkTerminal(w.db, p.MerchantOrderID, next)
	if err != nil {
		logger.Error("payment worker: failed to mark pending payment terminal",
			"merchant_order_id", p.MerchantOrderID, "error", err)
		return
	}
	logger.Info("payment worker: pending payment reconciled",
		"merchant_order_id", p.MerchantOrderID, "status", final)
}

func (w *PaymentWorker) abandonIfExpired(p *models.PendingPayment) {
	if time.Since(p.CreatedAt) < w.abandonTTL {
		return
	}
	final, err := w.pendingRepo.MarkTerminal(w.db, p.MerchantOrderID, models.PaymentStateFailed)
	if err != nil {
		logger.Error("payment worker: failed to expire abandoned payment",
			"merchant_order_id", p.MerchantOrderID, "error", err)
		return
	}
	logger.Info("payment worker: abandoned payment expired",
		"merchant_order_id", p.MerchantOrderID, "status", final)
}
