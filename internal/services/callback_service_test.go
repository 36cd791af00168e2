package services

import (
	"context"
	"testing"

	"edupay_backend/internal/models"
	"edupay_backend/internal/repositories"
	"edupay_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCallbackService() *CallbackService {
	return NewCallbackService(&fakeGateway{}, repositories.NewPendingPaymentRepository())
}

func TestProcessCallback_SuccessMarksCompleted(t *testing.T) {
	db := newTestDB(t)
	svc := newCallbackService()
	course := seedCourse(t, db)
	seedPending(t, db, course.ID, "ORDER-1", "", models.PaymentStatePending)

	data := signedCallback(t, "ORDER-1", "299000", "00", "REF-1")
	require.NoError(t, svc.ProcessCallback(context.Background(), db, data))

	var p models.PendingPayment
	require.NoError(t, db.First(&p, "merchant_order_id = ?", "ORDER-1").Error)
	assert.Equal(t, models.PaymentStateCompleted, p.Status)
	assert.Equal(t, "REF-1", p.Reference)
}

func TestProcessCallback_FailureMarksFailed(t *testing.T) {
	db := newTestDB(t)
	svc := newCallbackService()
	course := seedCourse(t, db)
	seedPending(t, db, course.ID, "ORDER-2", "REF-2", models.PaymentStatePending)

	data := signedCallback(t, "ORDER-2", "299000", "02", "REF-2")
	require.NoError(t, svc.ProcessCallback(context.Background(), db, data))

	var p models.PendingPayment
	require.NoError(t, db.First(&p, "merchant_order_id = ?", "ORDER-2").Error)
	assert.Equal(t, models.PaymentStateFailed, p.Status)
}

// The gateway retries until acknowledged, so replays must succeed without
// changing anything.
func TestProcessCallback_ReplayIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newCallbackService()
	course := seedCourse(t, db)
	seedPending(t, db, course.ID, "ORDER-3", "", models.PaymentStatePending)

	data := signedCallback(t, "ORDER-3", "299000", "00", "REF-3")
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.ProcessCallback(context.Background(), db, data))
	}

	var p models.PendingPayment
	require.NoError(t, db.First(&p, "merchant_order_id = ?", "ORDER-3").Error)
	assert.Equal(t, models.PaymentStateCompleted, p.Status)
}

// A success callback followed by a contradictory failure callback must not
// flip the status back.
func TestProcessCallback_ConflictingFinalKeepsFirst(t *testing.T) {
	db := newTestDB(t)
	svc := newCallbackService()
	course := seedCourse(t, db)
	seedPending(t, db, course.ID, "ORDER-4", "", models.PaymentStatePending)

	require.NoError(t, svc.ProcessCallback(context.Background(), db, signedCallback(t, "ORDER-4", "299000", "00", "")))
	require.NoError(t, svc.ProcessCallback(context.Background(), db, signedCallback(t, "ORDER-4", "299000", "02", "")))

	var p models.PendingPayment
	require.NoError(t, db.First(&p, "merchant_order_id = ?", "ORDER-4").Error)
	assert.Equal(t, models.PaymentStateCompleted, p.Status)
}

func TestProcessCallback_BadSignatureRejectsWithoutMutation(t *testing.T) {
	db := newTestDB(t)
	svc := newCallbackService()
	course := seedCourse(t, db)
	seedPending(t, db, course.ID, "ORDER-5", "", models.PaymentStatePending)

	data := signedCallback(t, "ORDER-5", "299000", "00", "")
	data.Signature = "deadbeefdeadbeefdeadbeefdeadbeef"

	err := svc.ProcessCallback(context.Background(), db, data)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeSignatureMismatch, appErr.Code)

	var p models.PendingPayment
	require.NoError(t, db.First(&p, "merchant_order_id = ?", "ORDER-5").Error)
	assert.Equal(t, models.PaymentStatePending, p.Status)
}

// Tampering with the amount invalidates the signature even if the signature
// itself was once valid for other values.
func TestProcessCallback_TamperedAmountRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newCallbackService()
	course := seedCourse(t, db)
	seedPending(t, db, course.ID, "ORDER-6", "", models.PaymentStatePending)

	data := signedCallback(t, "ORDER-6", "299000", "00", "")
	data.Amount = "1"

	err := svc.ProcessCallback(context.Background(), db, data)
	require.Error(t, err)

	var p models.PendingPayment
	require.NoError(t, db.First(&p, "merchant_order_id = ?", "ORDER-6").Error)
	assert.Equal(t, models.PaymentStatePending, p.Status)
}

// Valid-signature callbacks for unknown orders are acknowledged so the
// gateway stops retrying.
func TestProcessCallback_UnknownOrderIsAcknowledged(t *testing.T) {
	db := newTestDB(t)
	svc := newCallbackService()

	data := signedCallback(t, "GHOST-ORDER", "299000", "00", "")
	assert.NoError(t, svc.ProcessCallback(context.Background(), db, data))
}

func TestProcessCallback_MissingFields(t *testing.T) {
	db := newTestDB(t)
	svc := newCallbackService()

	err := svc.ProcessCallback(context.Background(), db, &models.GatewayCallbackData{
		MerchantCode: testMerchantCode,
		Amount:       "299000",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
}
