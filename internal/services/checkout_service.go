package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"edupay_backend/internal/gateway"
	"edupay_backend/internal/logger"
	"edupay_backend/internal/models"
	"edupay_backend/internal/repositories"
	"edupay_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// orderIDAttempts bounds regeneration when a generated merchant order id
// collides. Collisions are practically impossible but not assumed to be.
const orderIDAttempts = 3

// CheckoutService creates the signed gateway transaction and the pending
// payment row that precedes any user account.
type CheckoutService struct {
	gw          GatewayAPI
	pendingRepo *repositories.PendingPaymentRepository
	courseRepo  *repositories.CourseRepository
}

func NewCheckoutService(
	gw GatewayAPI,
	pendingRepo *repositories.PendingPaymentRepository,
	courseRepo *repositories.CourseRepository,
) *CheckoutService {
	return &CheckoutService{
		gw:          gw,
		pendingRepo: pendingRepo,
		courseRepo:  courseRepo,
	}
}

// ListPaymentMethods proxies the gateway's method listing for the course
// price. Read-only, so the caller may retry on GATEWAY_UNAVAILABLE.
func (s *CheckoutService) ListPaymentMethods(ctx context.Context, amount int64) ([]gateway.PaymentMethod, error) {
	methods, err := s.gw.ListPaymentMethods(ctx, amount)
	if err != nil {
		return nil, apperrors.NewGatewayUnavailableError(err)
	}
	return methods, nil
}

// Checkout prices the order from the course, reserves a unique merchant
// order id in the store, then creates the gateway transaction exactly once.
// The gateway call is mutating and not known to be idempotent, so it is
// never retried here; if it fails the pending row stays PENDING for a later
// callback or the reconcile worker.
func (s *CheckoutService) Checkout(ctx context.Context, db *gorm.DB, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	course, err := s.courseRepo.FindByID(db, req.CourseID)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.NewNotFoundError("course", "Course not found")
		}
		return nil, err
	}
	if !course.IsPublished {
		return nil, apperrors.NewNotFoundError("course", "Course not found")
	}

	pending := &models.PendingPayment{
		CourseID:      course.ID,
		CustomerEmail: strings.ToLower(req.Customer.Email),
		CustomerName:  req.Customer.Name,
		Amount:        course.Price,
		Currency:      course.Currency,
		PaymentMethod: req.PaymentMethod,
		Status:        models.PaymentStatePending,
	}

	// The unique index on merchant_order_id is the collision detector; on
	// conflict we regenerate and insert again.
	var created bool
	for attempt := 0; attempt < orderIDAttempts; attempt++ {
		pending.MerchantOrderID = generateMerchantOrderID()
		err = s.pendingRepo.CreatePending(db, pending)
		if err == nil {
			created = true
			break
		}
		if !errors.Is(err, repositories.ErrDuplicateOrder) {
			return nil, err
		}
		logger.CtxWarn(ctx, "merchant order id collision, regenerating", "merchant_order_id", pending.MerchantOrderID)
	}
	if !created {
		return nil, apperrors.DatabaseError(repositories.ErrDuplicateOrder)
	}

	result, err := s.gw.CreateTransaction(ctx, gateway.TransactionOrder{
		MerchantOrderID: pending.MerchantOrderID,
		Amount:          pending.Amount,
		PaymentMethod:   pending.PaymentMethod,
		ProductDetails:  course.Title,
		CustomerName:    pending.CustomerName,
		CustomerEmail:   pending.CustomerEmail,
	})
	if err != nil {
		logger.CtxWithError(ctx, "gateway transaction creation failed, pending row kept for reconciliation", err,
			"merchant_order_id", pending.MerchantOrderID)
		return nil, apperrors.NewGatewayUnavailableError(err)
	}

	metadata, _ := json.Marshal(map[string]string{
		"payment_url": result.PaymentURL,
		"va_number":   result.VANumber,
		"qr_string":   result.QRString,
	})
	if err := s.pendingRepo.SetReference(db, pending.MerchantOrderID, result.Reference, datatypes.JSON(metadata)); err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "checkout created",
		"merchant_order_id", pending.MerchantOrderID,
		"reference", result.Reference,
		"course_id", course.ID,
		"amount", pending.Amount,
	)

	return &models.CheckoutResponse{
		MerchantOrderID: pending.MerchantOrderID,
		Reference:       result.Reference,
		PaymentURL:      result.PaymentURL,
		VANumber:        result.VANumber,
		QRString:        result.QRString,
		Amount:          pending.Amount,
		Currency:        pending.Currency,
	}, nil
}

// generateMerchantOrderID builds a correlation key from the checkout
// timestamp and a random suffix.
func generateMerchantOrderID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("EDU%s%s", time.Now().Format("20060102150405"), suffix)
}
