package services

import (
	"context"
	"testing"

	"edupay_backend/internal/gateway"
	"edupay_backend/internal/models"
	"edupay_backend/internal/repositories"
	"edupay_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutService(gw *fakeGateway) *CheckoutService {
	return NewCheckoutService(gw, repositories.NewPendingPaymentRepository(), repositories.NewCourseRepository())
}

func checkoutRequest(courseID string) *models.CheckoutRequest {
	return &models.CheckoutRequest{
		CourseID:      courseID,
		PaymentMethod: "VC",
		Customer: models.CheckoutCustomer{
			Name:  "Buyer Test",
			Email: "Buyer@Test.com",
		},
	}
}

func TestCheckout_HappyPath(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{createResult: &gateway.TransactionResult{
		Reference:  "REF-100",
		PaymentURL: "https://pay.test/abc",
		StatusCode: gateway.StatusSuccess,
	}}
	svc := newCheckoutService(gw)
	course := seedCourse(t, db)

	resp, err := svc.Checkout(context.Background(), db, checkoutRequest(course.ID))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.MerchantOrderID)
	assert.Equal(t, "REF-100", resp.Reference)
	assert.Equal(t, "https://pay.test/abc", resp.PaymentURL)
	// The amount comes from the course, never from the client.
	assert.Equal(t, int64(299000), resp.Amount)
	assert.Equal(t, "IDR", resp.Currency)
	assert.Equal(t, 1, gw.createCalls)

	var p models.PendingPayment
	require.NoError(t, db.First(&p, "merchant_order_id = ?", resp.MerchantOrderID).Error)
	assert.Equal(t, models.PaymentStatePending, p.Status)
	assert.Equal(t, "REF-100", p.Reference)
	assert.Equal(t, "buyer@test.com", p.CustomerEmail)
	assert.Equal(t, course.ID, p.CourseID)
	assert.Contains(t, string(p.Metadata), "https://pay.test/abc")
}

func TestCheckout_UnknownCourse(t *testing.T) {
	db := newTestDB(t)
	svc := newCheckoutService(&fakeGateway{})

	_, err := svc.Checkout(context.Background(), db, checkoutRequest("ghost"))
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestCheckout_UnpublishedCourseIsHidden(t *testing.T) {
	db := newTestDB(t)
	svc := newCheckoutService(&fakeGateway{})
	course := &models.Course{Title: "Draft", Slug: "draft", Price: 100, IsPublished: false}
	require.NoError(t, db.Create(course).Error)

	_, err := svc.Checkout(context.Background(), db, checkoutRequest(course.ID))
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

// A failed gateway call leaves the PENDING row in place: the order id was
// reserved and a late callback or the worker can still resolve it.
func TestCheckout_GatewayFailureKeepsPendingRow(t *testing.T) {
	db := newTestDB(t)
	gw := &fakeGateway{createErr: errGatewayDown}
	svc := newCheckoutService(gw)
	course := seedCourse(t, db)

	_, err := svc.Checkout(context.Background(), db, checkoutRequest(course.ID))
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeGatewayUnavailable, appErr.Code)
	assert.Equal(t, 1, gw.createCalls)

	var count int64
	db.Model(&models.PendingPayment{}).Where("status = ?", models.PaymentStatePending).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestListPaymentMethods_TranslatesGatewayError(t *testing.T) {
	svc := newCheckoutService(&fakeGateway{methodsErr: errGatewayDown})

	_, err := svc.ListPaymentMethods(context.Background(), 299000)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeGatewayUnavailable, appErr.Code)
}
