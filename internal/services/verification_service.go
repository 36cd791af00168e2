package services

import (
	"context"
	"errors"

	"edupay_backend/internal/gateway"
	"edupay_backend/internal/logger"
	"edupay_backend/internal/models"
	"edupay_backend/internal/repositories"
	"edupay_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// VerificationService answers "is this payment settled and may the buyer
// register". The registration page calls it when the buyer lands back from
// the gateway, possibly before (or instead of) the webhook.
type VerificationService struct {
	gw             GatewayAPI
	pendingRepo    *repositories.PendingPaymentRepository
	paymentRepo    *repositories.PaymentRepository
	userRepo       *repositories.UserRepository
	courseRepo     *repositories.CourseRepository
	enrollmentRepo *repositories.EnrollmentRepository
}

func NewVerificationService(
	gw GatewayAPI,
	pendingRepo *repositories.PendingPaymentRepository,
	paymentRepo *repositories.PaymentRepository,
	userRepo *repositories.UserRepository,
	courseRepo *repositories.CourseRepository,
	enrollmentRepo *repositories.EnrollmentRepository,
) *VerificationService {
	return &VerificationService{
		gw:             gw,
		pendingRepo:    pendingRepo,
		paymentRepo:    paymentRepo,
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// Verify resolves the reference against the pending store, falls back to a
// live gateway status query when the row is still PENDING (webhooks get
// lost), and reports whether the payment was already converted into an
// account.
func (s *VerificationService) Verify(ctx context.Context, db *gorm.DB, reference string) (*models.VerifyResponse, error) {
	pending, err := s.pendingRepo.FindByAnyReference(db, reference)
	if err != nil {
		if errors.Is(err, repositories.ErrPendingNotFound) {
			return s.verifyReconciled(db, reference)
		}
		return nil, err
	}

	status := pending.Status
	if status == models.PaymentStatePending {
		status = s.refreshFromGateway(ctx, db, pending)
	}

	if status != models.PaymentStateCompleted {
		logger.CtxInfo(ctx, "payment verification: not completed",
			"merchant_order_id", pending.MerchantOrderID,
			"status", status,
		)
		return &models.VerifyResponse{Success: false}, nil
	}

	registered, err := s.enrollmentRepo.ExistsByEmail(db, pending.CustomerEmail, pending.CourseID)
	if err != nil {
		return nil, err
	}
	if registered {
		return &models.VerifyResponse{
			Success:           true,
			AlreadyRegistered: true,
			UserEmail:         pending.CustomerEmail,
		}, nil
	}

	verified := &models.VerifiedPayment{
		Reference:       pending.Reference,
		MerchantOrderID: pending.MerchantOrderID,
		CourseID:        pending.CourseID,
		CustomerEmail:   pending.CustomerEmail,
		CustomerName:    pending.CustomerName,
		Amount:          pending.Amount,
		Currency:        pending.Currency,
	}
	if course, err := s.courseRepo.FindByID(db, pending.CourseID); err == nil {
		verified.CourseTitle = course.Title
	}

	return &models.VerifyResponse{Success: true, Payment: verified}, nil
}

// verifyReconciled handles references with no pending row left: if a Payment
// exists the order was already reconciled and the buyer should sign in.
func (s *VerificationService) verifyReconciled(db *gorm.DB, reference string) (*models.VerifyResponse, error) {
	payment, err := s.paymentRepo.FindByReference(db, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("payment", "Payment not found")
		}
		return nil, err
	}
	user, err := s.userRepo.FindByID(db, payment.UserID)
	if err != nil {
		return nil, err
	}
	return &models.VerifyResponse{
		Success:           true,
		AlreadyRegistered: true,
		UserEmail:         user.Email,
	}, nil
}

// refreshFromGateway queries the gateway for a still-PENDING row and promotes
// the local status when the gateway already reached a terminal one. Gateway
// unavailability keeps the local status; the caller sees "not completed yet".
func (s *VerificationService) refreshFromGateway(ctx context.Context, db *gorm.DB, pending *models.PendingPayment) models.PaymentState {
	result, err := s.gw.QueryStatus(ctx, pending.MerchantOrderID)
	if err != nil {
		logger.CtxWithError(ctx, "gateway status query failed, keeping local status", err,
			"merchant_order_id", pending.MerchantOrderID)
		return pending.Status
	}

	var next models.PaymentState
	switch result.StatusCode {
	case gateway.StatusSuccess:
		next = models.PaymentStateCompleted
	case gateway.StatusFailed:
		next = models.PaymentStateFailed
	default:
		return pending.Status
	}

	if result.Reference != "" && pending.Reference == "" {
		if err := s.pendingRepo.SetReference(db, pending.MerchantOrderID, result.Reference, nil); err != nil {
			logger.CtxWithError(ctx, "failed to store queried reference", err,
				"merchant_order_id", pending.MerchantOrderID)
		} else {
			pending.Reference = result.Reference
		}
	}

	final, err := s.pendingRepo.MarkTerminal(db, pending.MerchantOrderID, next)
	if err != nil {
		logger.CtxWithError(ctx, "failed to promote pending payment from gateway status", err,
			"merchant_order_id", pending.MerchantOrderID)
		return pending.Status
	}
	logger.CtxInfo(ctx, "pending payment promoted from gateway status",
		"merchant_order_id", pending.MerchantOrderID,
		"status", final,
	)
	pending.Status = final
	return final
}
