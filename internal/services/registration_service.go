package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"edupay_backend/internal/auth"
	"edupay_backend/internal/email"
	"edupay_backend/internal/identity"
	"edupay_backend/internal/logger"
	"edupay_backend/internal/models"
	"edupay_backend/internal/repositories"
	"edupay_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// errConcurrentRegistration signals from inside the transaction that another
// request reconciled the same payment first. Not a failure: the enrollment
// exists, so no compensation runs.
var errConcurrentRegistration = errors.New("registration already completed concurrently")

// RegistrationService reconciles a COMPLETED payment into a user account and
// an enrollment. External account creation happens first; the local writes
// run in one transaction; a local failure compensates by deleting the remote
// account.
type RegistrationService struct {
	identity       identity.Provider
	pendingRepo    *repositories.PendingPaymentRepository
	userRepo       *repositories.UserRepository
	courseRepo     *repositories.CourseRepository
	paymentRepo    *repositories.PaymentRepository
	enrollmentRepo *repositories.EnrollmentRepository
	mailer         email.Provider
}

func NewRegistrationService(
	idp identity.Provider,
	pendingRepo *repositories.PendingPaymentRepository,
	userRepo *repositories.UserRepository,
	courseRepo *repositories.CourseRepository,
	paymentRepo *repositories.PaymentRepository,
	enrollmentRepo *repositories.EnrollmentRepository,
	mailer email.Provider,
) *RegistrationService {
	return &RegistrationService{
		identity:       idp,
		pendingRepo:    pendingRepo,
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		paymentRepo:    paymentRepo,
		enrollmentRepo: enrollmentRepo,
		mailer:         mailer,
	}
}

// CompleteRegistration converts a COMPLETED pending payment into User,
// Payment and Enrollment rows and deletes the pending row, all in one
// transaction. The (user, course) unique constraint makes the whole
// operation idempotent under races: the loser of a concurrent run gets
// ALREADY_REGISTERED, not a duplicate enrollment.
func (s *RegistrationService) CompleteRegistration(ctx context.Context, db *gorm.DB, req *models.CompleteRegistrationRequest) (*models.RegistrationResult, error) {
	reqEmail := strings.ToLower(req.Customer.Email)

	pending, err := s.pendingRepo.FindByAnyReference(db, req.PaymentReference)
	if err != nil {
		if errors.Is(err, repositories.ErrPendingNotFound) {
			return nil, s.reconciledOrMissing(db, req.PaymentReference)
		}
		return nil, err
	}

	// Preconditions, cheapest and most-final first.
	if pending.Status != models.PaymentStateCompleted {
		return nil, apperrors.NewNotCompletedError(string(pending.Status))
	}
	if pending.CourseID != req.CourseID {
		return nil, apperrors.NewBadRequestError("Course does not match the one paid for")
	}
	if pending.CustomerEmail != reqEmail {
		return nil, apperrors.NewBadRequestError("Email does not match the one used at checkout")
	}

	course, err := s.courseRepo.FindByID(db, pending.CourseID)
	if err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.FindByEmail(db, reqEmail)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}
	if existingUser != nil {
		enrolled, err := s.enrollmentRepo.Exists(db, existingUser.ID, pending.CourseID)
		if err != nil {
			return nil, err
		}
		if enrolled {
			return nil, apperrors.NewAlreadyRegisteredError(existingUser.Email)
		}
	}

	passwordHash, err := auth.HashPassword(req.Customer.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Step 1 of the saga: the external account. Only runs when no local user
	// exists yet; its compensation is DeleteAccount below.
	var externalID string
	var createdExternal bool
	if existingUser == nil {
		externalID, err = s.identity.CreateAccount(ctx, reqEmail, req.Customer.Password)
		if err != nil {
			logger.CtxWithError(ctx, "identity account creation failed", err, "email", reqEmail)
			return nil, apperrors.Wrap(err, apperrors.CodeExternalServiceError, "identity",
				"Account provider is unavailable, please retry", http.StatusBadGateway)
		}
		createdExternal = true
	} else {
		externalID = existingUser.ExternalID
	}

	// Step 2: local writes, atomically.
	var user models.User
	paidAt := pending.UpdatedAt
	invoiceNumber := generateInvoiceNumber(pending.CreatedAt, pending.MerchantOrderID)

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if existingUser != nil {
			user = *existingUser
		} else {
			user = models.User{
				Email:        reqEmail,
				PasswordHash: passwordHash,
				FirstName:    req.Customer.FirstName,
				LastName:     req.Customer.LastName,
				Role:         models.UserRoleStudent,
				Status:       models.UserStatusActive,
				ExternalID:   externalID,
			}
			if err := s.userRepo.Create(tx, &user); err != nil {
				if errors.Is(err, repositories.ErrUserAlreadyExists) {
					return errConcurrentRegistration
				}
				return err
			}
		}

		payment := models.Payment{
			UserID:           user.ID,
			CourseID:         pending.CourseID,
			GatewayReference: pending.Reference,
			Amount:           pending.Amount,
			Currency:         pending.Currency,
			Status:           models.PaymentStatusCompleted,
			InvoiceNumber:    invoiceNumber,
			PaidAt:           &paidAt,
		}
		if err := s.paymentRepo.Create(tx, &payment); err != nil {
			return err
		}

		enrollment := models.Enrollment{
			UserID:     user.ID,
			CourseID:   pending.CourseID,
			EnrolledAt: time.Now(),
		}
		if err := s.enrollmentRepo.Create(tx, &enrollment); err != nil {
			if errors.Is(err, repositories.ErrAlreadyEnrolled) {
				return errConcurrentRegistration
			}
			return err
		}

		// A vanished pending row means another request reconciled this
		// payment and already removed it.
		if err := s.pendingRepo.Delete(tx, pending.ID); err != nil {
			if errors.Is(err, repositories.ErrPendingNotFound) {
				return errConcurrentRegistration
			}
			return err
		}
		return nil
	})

	if txErr != nil {
		if errors.Is(txErr, errConcurrentRegistration) {
			// The constraint says the enrollment already exists, so the saga's
			// goal is met. The remote account (if we just created one) belongs
			// to the winning registration's user — keep it.
			return nil, apperrors.NewAlreadyRegisteredError(reqEmail)
		}
		if createdExternal {
			s.compensateAccount(ctx, externalID)
		}
		logger.CtxWithError(ctx, "registration transaction failed", txErr,
			"merchant_order_id", pending.MerchantOrderID)
		return nil, apperrors.DatabaseError(txErr)
	}

	logger.CtxInfo(ctx, "registration completed",
		"merchant_order_id", pending.MerchantOrderID,
		"user_id", user.ID,
		"course_id", course.ID,
		"invoice_number", invoiceNumber,
	)

	s.sendReceipt(ctx, &user, course, invoiceNumber, pending.Amount, pending.Currency)

	return &models.RegistrationResult{
		User:          &user,
		Course:        course,
		InvoiceNumber: invoiceNumber,
	}, nil
}

// reconciledOrMissing classifies a reference with no pending row: already
// reconciled into a Payment, or simply unknown.
func (s *RegistrationService) reconciledOrMissing(db *gorm.DB, reference string) error {
	payment, err := s.paymentRepo.FindByReference(db, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("payment", "Payment not found")
		}
		return err
	}
	user, err := s.userRepo.FindByID(db, payment.UserID)
	if err != nil {
		return err
	}
	return apperrors.NewAlreadyRegisteredError(user.Email)
}

// compensateAccount deletes the just-created identity account after a local
// transaction failure. Best effort: a failure here is logged for manual
// cleanup, the caller still gets the retryable transaction error.
func (s *RegistrationService) compensateAccount(ctx context.Context, externalID string) {
	if err := s.identity.DeleteAccount(ctx, externalID); err != nil {
		logger.CtxWithError(ctx, "saga compensation failed, orphaned identity account", err,
			"external_id", externalID)
		return
	}
	logger.CtxInfo(ctx, "saga compensation: identity account deleted", "external_id", externalID)
}

// sendReceipt delivers the payment receipt. Best effort, after commit.
func (s *RegistrationService) sendReceipt(ctx context.Context, user *models.User, course *models.Course, invoiceNumber string, amount int64, currency string) {
	if s.mailer == nil {
		return
	}
	msg := &email.Email{
		To:      []string{user.Email},
		Subject: fmt.Sprintf("Payment receipt %s", invoiceNumber),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour payment of %s %d for %q was received.\nInvoice number: %s\n\nYou can now sign in and start learning.",
			user.FirstName, currency, amount, course.Title, invoiceNumber,
		),
	}
	if err := s.mailer.Send(msg); err != nil {
		logger.CtxWithError(ctx, "failed to send receipt email", err,
			"user_id", user.ID, "invoice_number", invoiceNumber)
	}
}

// generateInvoiceNumber derives a stable invoice id from the checkout
// timestamp and the order id, so a retried registration of the same payment
// produces the same invoice.
func generateInvoiceNumber(checkoutAt time.Time, merchantOrderID string) string {
	suffix := merchantOrderID
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	return fmt.Sprintf("INV/%s/%s", checkoutAt.Format("20060102"), strings.ToUpper(suffix))
}
