package services

import (
	"context"
	"errors"
	"testing"

	"edupay_backend/internal/email"
	"edupay_backend/internal/gateway"
	"edupay_backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

const (
	testMerchantCode = "DS24219"
	testAPIKey       = "d2547323e018a40ddfd10d81923823ca"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.PendingPayment{},
		&models.Payment{},
		&models.Enrollment{},
	))
	return db
}

// --- Fakes ---

type fakeGateway struct {
	methods      []gateway.PaymentMethod
	methodsErr   error
	createResult *gateway.TransactionResult
	createErr    error
	createCalls  int
	statusResult *gateway.StatusResult
	statusErr    error
	queryCalls   int
}

func (f *fakeGateway) ListPaymentMethods(ctx context.Context, amount int64) ([]gateway.PaymentMethod, error) {
	return f.methods, f.methodsErr
}

func (f *fakeGateway) CreateTransaction(ctx context.Context, order gateway.TransactionOrder) (*gateway.TransactionResult, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeGateway) QueryStatus(ctx context.Context, merchantOrderID string) (*gateway.StatusResult, error) {
	f.queryCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.statusResult, nil
}

func (f *fakeGateway) MerchantCode() string { return testMerchantCode }
func (f *fakeGateway) APIKey() string       { return testAPIKey }

type fakeIdentity struct {
	nextID      string
	createErr   error
	created     []string
	deleted     []string
	createCalls int
}

func (f *fakeIdentity) CreateAccount(ctx context.Context, userEmail, password string) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	id := f.nextID
	if id == "" {
		id = "ext-1"
	}
	f.created = append(f.created, id)
	return id, nil
}

func (f *fakeIdentity) DeleteAccount(ctx context.Context, accountID string) error {
	f.deleted = append(f.deleted, accountID)
	return nil
}

type fakeMailer struct {
	sent []*email.Email
	err  error
}

func (f *fakeMailer) Send(e *email.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	return nil
}

func (f *fakeMailer) Close() error { return nil }

// --- Seed helpers ---

func seedCourse(t *testing.T, db *gorm.DB) *models.Course {
	t.Helper()
	course := &models.Course{
		Title:       "Go Backend Course",
		Slug:        "go-backend",
		Description: "Build production backends",
		Price:       299000,
		Currency:    "IDR",
		IsPublished: true,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func seedPending(t *testing.T, db *gorm.DB, courseID, orderID, reference string, status models.PaymentState) *models.PendingPayment {
	t.Helper()
	p := &models.PendingPayment{
		MerchantOrderID: orderID,
		Reference:       reference,
		CourseID:        courseID,
		CustomerEmail:   "buyer@test.com",
		CustomerName:    "Buyer Test",
		Amount:          299000,
		Currency:        "IDR",
		PaymentMethod:   "VC",
		Status:          status,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// signedCallback builds a callback payload with a valid signature.
func signedCallback(t *testing.T, orderID, amount, resultCode, reference string) *models.GatewayCallbackData {
	t.Helper()
	sig, err := gateway.Sign(gateway.OpCallback, gateway.SignatureFields{
		MerchantCode:    testMerchantCode,
		Amount:          amount,
		MerchantOrderID: orderID,
	}, testAPIKey)
	require.NoError(t, err)

	return &models.GatewayCallbackData{
		MerchantCode:    testMerchantCode,
		Amount:          amount,
		MerchantOrderID: orderID,
		ResultCode:      resultCode,
		Reference:       reference,
		Signature:       sig,
	}
}

var errGatewayDown = errors.New("connection refused")
