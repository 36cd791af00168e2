package repositories

import (
	"errors"
	"time"

	"edupay_backend/internal/logger"
	"edupay_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPendingNotFound = errors.New("pending payment not found")
	ErrDuplicateOrder  = errors.New("merchant order id already exists")
)

// PendingPaymentRepository owns the pending-payment rows. Uniqueness of
// merchant_order_id and conditional status updates are the concurrency
// control; there are no in-process locks.
type PendingPaymentRepository struct{}

func NewPendingPaymentRepository() *PendingPaymentRepository {
	return &PendingPaymentRepository{}
}

// CreatePending inserts a new PENDING row. A duplicate merchant order id
// surfaces as ErrDuplicateOrder so the caller can regenerate the id.
func (r *PendingPaymentRepository) CreatePending(db *gorm.DB, p *models.PendingPayment) error {
	if p.Status == "" {
		p.Status = models.PaymentStatePending
	}
	if err := db.Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateOrder
		}
		return err
	}
	return nil
}

func (r *PendingPaymentRepository) FindByOrderID(db *gorm.DB, merchantOrderID string) (*models.PendingPayment, error) {
	var p models.PendingPayment
	err := db.First(&p, "merchant_order_id = ?", merchantOrderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PendingPaymentRepository) FindByReference(db *gorm.DB, reference string) (*models.PendingPayment, error) {
	var p models.PendingPayment
	err := db.First(&p, "reference = ?", reference).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByAnyReference resolves a pending payment by gateway reference first,
// then by merchant order id — callers supply whichever they have.
func (r *PendingPaymentRepository) FindByAnyReference(db *gorm.DB, reference string) (*models.PendingPayment, error) {
	p, err := r.FindByReference(db, reference)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrPendingNotFound) {
		return nil, err
	}
	return r.FindByOrderID(db, reference)
}

// SetReference stores the gateway-assigned reference and creation artifacts
// after a successful CreateTransaction call.
func (r *PendingPaymentRepository) SetReference(db *gorm.DB, merchantOrderID, reference string, metadata datatypes.JSON) error {
	updates := map[string]interface{}{
		"reference":  reference,
		"updated_at": time.Now(),
	}
	if metadata != nil {
		updates["metadata"] = metadata
	}
	result := db.Model(&models.PendingPayment{}).
		Where("merchant_order_id = ?", merchantOrderID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPendingNotFound
	}
	return nil
}

// MarkTerminal transitions PENDING to the given terminal status and returns
// the status the row holds afterwards. Idempotent: re-applying the status a
// row already holds is a no-op success. A *different* terminal status is an
// anomaly — it is logged and the existing status wins (first final wins;
// a healthy transaction never gets two different finals from the gateway).
func (r *PendingPaymentRepository) MarkTerminal(db *gorm.DB, merchantOrderID string, next models.PaymentState) (models.PaymentState, error) {
	if !next.IsTerminal() {
		return "", errors.New("markTerminal: target status must be terminal")
	}

	var final models.PaymentState
	err := db.Transaction(func(tx *gorm.DB) error {
		// The status guard makes concurrent callbacks race safely: only one
		// update can move the row out of PENDING.
		result := tx.Model(&models.PendingPayment{}).
			Where("merchant_order_id = ? AND status = ?", merchantOrderID, models.PaymentStatePending).
			Updates(map[string]interface{}{
				"status":     next,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 {
			final = next
			return nil
		}

		// No PENDING row updated: either unknown order or already terminal.
		var existing models.PendingPayment
		if err := tx.First(&existing, "merchant_order_id = ?", merchantOrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPendingNotFound
			}
			return err
		}

		final = existing.Status
		if existing.Status != next {
			logger.Warn("conflicting terminal status for pending payment, keeping existing",
				"merchant_order_id", merchantOrderID,
				"existing_status", existing.Status,
				"requested_status", next,
			)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return final, nil
}

// Delete removes a reconciled row. Intended to run inside the registration
// transaction.
func (r *PendingPaymentRepository) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.PendingPayment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPendingNotFound
	}
	return nil
}

// FindStalePending returns PENDING rows older than the given cutoff, for the
// reconcile worker's gateway-status sweep.
func (r *PendingPaymentRepository) FindStalePending(db *gorm.DB, olderThan time.Time, limit int) ([]models.PendingPayment, error) {
	var rows []models.PendingPayment
	err := db.Where("status = ? AND created_at < ?", models.PaymentStatePending, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
