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

// CallbackService processes the gateway's payment notification webhook.
// Authentication is the recomputed signature; the webhook is otherwise
// unauthenticated and may arrive repeated, delayed or out of order.
type CallbackService struct {
	gw          GatewayAPI
	pendingRepo *repositories.PendingPaymentRepository
}

func NewCallbackService(gw GatewayAPI, pendingRepo *repositories.PendingPaymentRepository) *CallbackService {
	return &CallbackService{gw: gw, pendingRepo: pendingRepo}
}

// ProcessCallback validates the signature and records the terminal status.
// The signature check happens before any lookup or mutation; a mismatch is
// returned as an error and the handler must not acknowledge the webhook.
// Everything after a valid signature resolves to a nil return so the gateway
// gets its acknowledgement and stops retrying — including callbacks for
// orders we have never seen.
func (s *CallbackService) ProcessCallback(ctx context.Context, db *gorm.DB, data *models.GatewayCallbackData) error {
	if data.MerchantCode == "" || data.Amount == "" || data.MerchantOrderID == "" || data.Signature == "" {
		return apperrors.NewBadRequestError("Missing required callback fields")
	}

	ok := gateway.Verify(gateway.OpCallback, gateway.SignatureFields{
		MerchantCode:    data.MerchantCode,
		Amount:          data.Amount,
		MerchantOrderID: data.MerchantOrderID,
	}, s.gw.APIKey(), data.Signature)
	if !ok || data.MerchantCode != s.gw.MerchantCode() {
		logger.CtxWarn(ctx, "callback signature mismatch",
			"merchant_order_id", data.MerchantOrderID,
			"result_code", data.ResultCode,
		)
		return apperrors.NewSignatureMismatchError()
	}

	next := models.PaymentStateFailed
	if data.ResultCode == gateway.StatusSuccess {
		next = models.PaymentStateCompleted
	}

	pending, err := s.pendingRepo.FindByOrderID(db, data.MerchantOrderID)
	if err != nil {
		if errors.Is(err, repositories.ErrPendingNotFound) {
			// Orphan callback: signed by our key but unknown to us. Could be a
			// replay of an already reconciled (deleted) order or an order from
			// another environment sharing the merchant account. Ack it.
			logger.CtxWarn(ctx, "callback for unknown merchant order, acknowledging",
				"merchant_order_id", data.MerchantOrderID,
				"result_code", data.ResultCode,
			)
			return nil
		}
		logger.CtxWithError(ctx, "callback lookup failed", err, "merchant_order_id", data.MerchantOrderID)
		return nil
	}

	// Some methods only assign the gateway reference at settlement time.
	if data.Reference != "" && pending.Reference == "" {
		if err := s.pendingRepo.SetReference(db, data.MerchantOrderID, data.Reference, nil); err != nil {
			logger.CtxWithError(ctx, "failed to store callback reference", err, "merchant_order_id", data.MerchantOrderID)
		}
	}

	final, err := s.pendingRepo.MarkTerminal(db, data.MerchantOrderID, next)
	if err != nil {
		logger.CtxWithError(ctx, "failed to mark pending payment terminal", err,
			"merchant_order_id", data.MerchantOrderID,
			"requested_status", next,
		)
		return nil
	}

	logger.CtxInfo(ctx, "callback processed",
		"merchant_order_id", data.MerchantOrderID,
		"result_code", data.ResultCode,
		"status", final,
	)
	return nil
}
