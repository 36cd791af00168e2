package services

import (
	"context"
	"testing"
	"time"

	"edupay_backend/internal/gateway"
	"edupay_backend/internal/models"
	"edupay_backend/internal/repositories"
	"edupay_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerificationService(gw *fakeGateway) *VerificationService {
	return NewVerificationService(
		gw,
		repositories.NewPendingPaymentRepository(),
		repositories.NewPaymentRepository(),
		repositories.NewUserRepository(),
		repositories.NewCourseRepository(),
		repositories.NewEnrollmentRepository(),
	)
}

func TestVerify_CompletedPayment(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{}
	svc := newVerificationService(gw)
	course := seedCourse(t, db)
	seedPending(t, db, course.ID, "ORDER-1", "REF-1", models.PaymentStateCompleted)

	resp, err := svc.Verify(context.Background(), db, "REF-1")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.False(t, resp.AlreadyRegistered)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, course.ID, resp.Payment.CourseID)
	assert.Equal(t, "Go Backend Course", resp.Payment.CourseTitle)
	assert.Equal(t, "buyer@test.com", resp.Payment.CustomerEmail)
	assert.Equal(t, int64(299000), resp.Payment.Amount)
	// Local status was terminal, no gateway round trip needed.
	assert.Zero(t, gw.queryCalls)
}

func TestVerify_ResolvesByMerchantOrderID(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(&fakeGateway{})
	course := seedCourse(t, db)
	seedPending(t, db, course.ID, "ORDER-2", "REF-2", models.PaymentStateCompleted)

	resp, err := svc.Verify(context.Background(), db, "ORDER-2")
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

// The fallback path: the webhook never arrived but the gateway already
// settled the payment. Verification promotes the local row.
func TestVerify_PendingPromotedByGatewayQuery(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{statusResult: &gateway.StatusResult{
		Reference:  "REF-3",
		StatusCode: gateway.StatusSuccess,
		Amount:     299000,
	}}
	svc := newVerificationService(gw)
	course := seedCourse(t, db)
	seedPending(t, db, course.ID, "ORDER-3", "", models.PaymentStatePending)

	resp, err := svc.Verify(context.Background(), db, "ORDER-3")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, gw.queryCalls)

	var p models.PendingPayment
	require.NoError(t, db.First(&p, "merchant_order_id = ?", "ORDER-3").Error)
	assert.Equal(t, models.PaymentStateCompleted, p.Status)
	assert.Equal(t, "REF-3", p.Reference)
}

func TestVerify_PendingStaysPendingWhenGatewaySaysPending(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{statusResult: &gateway.StatusResult{StatusCode: gateway.StatusPending}}
	svc := newVerificationService(gw)
	course := seedCourse(t, db)
	seedPending(t, db, course.ID, "ORDER-4", "REF-4", models.PaymentStatePending)

	resp, err := svc.Verify(context.Background(), db, "REF-4")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Nil(t, resp.Payment)
}

func TestVerify_GatewayDownKeepsLocalStatus(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{statusErr: errGatewayDown}
	svc := newVerificationService(gw)
	course := seedCourse(t, db)
	seedPending(t, db, course.ID, "ORDER-5", "REF-5", models.PaymentStatePending)

	resp, err := svc.Verify(context.Background(), db, "REF-5")
	require.NoError(t, err)
	assert.False(t, resp.Success)

	var p models.PendingPayment
	require.NoError(t, db.First(&p, "merchant_order_id = ?", "ORDER-5").Error)
	assert.Equal(t, models.PaymentStatePending, p.Status)
}

func TestVerify_FailedPayment(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(&fakeGateway{})
	course := seedCourse(t, db)
	seedPending(t, db, course.ID, "ORDER-6", "REF-6", models.PaymentStateFailed)

	resp, err := svc.Verify(context.Background(), db, "REF-6")
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestVerify_AlreadyRegisteredViaEnrollment(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(&fakeGateway{})
	course := seedCourse(t, db)
	seedPending(t, db, course.ID, "ORDER-7", "REF-7", models.PaymentStateCompleted)

	user := &models.User{Email: "buyer@test.com", PasswordHash: "x", FirstName: "Buyer"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Enrollment{UserID: user.ID, CourseID: course.ID, EnrolledAt: time.Now()}).Error)

	resp, err := svc.Verify(context.Background(), db, "REF-7")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, resp.AlreadyRegistered)
	assert.Equal(t, "buyer@test.com", resp.UserEmail)
}

// After reconciliation the pending row is gone but the Payment remains; a
// revisit of the registration link must say "already registered".
func TestVerify_ReconciledPayment(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(&fakeGateway{})
	course := seedCourse(t, db)

	user := &models.User{Email: "done@test.com", PasswordHash: "x", FirstName: "Done"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Payment{
		UserID:           user.ID,
		CourseID:         course.ID,
		GatewayReference: "REF-8",
		Amount:           299000,
		Currency:         "IDR",
		Status:           models.PaymentStatusCompleted,
	}).Error)

	resp, err := svc.Verify(context.Background(), db, "REF-8")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, resp.AlreadyRegistered)
	assert.Equal(t, "done@test.com", resp.UserEmail)
}

func TestVerify_UnknownReference(t *testing.T) {
	db := newTestDB(t)
	svc := newVerificationService(&fakeGateway{})

	_, err := svc.Verify(context.Background(), db, "REF-GHOST")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
