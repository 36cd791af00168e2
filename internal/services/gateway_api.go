package services

import (
	"context"

	"edupay_backend/internal/gateway"
)

// GatewayAPI is the surface of the payment gateway the services depend on.
// Satisfied by *gateway.Client; faked in tests.
type GatewayAPI interface {
	ListPaymentMethods(ctx context.Context, amount int64) ([]gateway.PaymentMethod, error)
	CreateTransaction(ctx context.Context, order gateway.TransactionOrder) (*gateway.TransactionResult, error)
	QueryStatus(ctx context.Context, merchantOrderID string) (*gateway.StatusResult, error)
	MerchantCode() string
	APIKey() string
}
