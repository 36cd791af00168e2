package handlers

import (
	"net/http"
	"strconv"

	"edupay_backend/internal/models"
	"edupay_backend/internal/services"
	"edupay_backend/internal/validator"
	"edupay_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// callbackAck is the literal body the gateway expects on a processed webhook.
// Anything else makes it retry.
const callbackAck = "SUCCESS"

// PaymentHandler exposes the payment-first registration flow: checkout, the
// gateway webhook, verification and registration completion.
type PaymentHandler struct {
	*BaseHandler
	checkout     *services.CheckoutService
	callback     *services.CallbackService
	verification *services.VerificationService
	registration *services.RegistrationService
}

func NewPaymentHandler(
	v *validator.Validator,
	checkout *services.CheckoutService,
	callback *services.CallbackService,
	verification *services.VerificationService,
	registration *services.RegistrationService,
) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:  NewBaseHandler(v),
		checkout:     checkout,
		callback:     callback,
		verification: verification,
		registration: registration,
	}
}

func (h *PaymentHandler) RegisterRoutes(api *gin.RouterGroup) {
	payments := api.Group("/payments")
	{
		payments.GET("/methods", h.ListPaymentMethods)
		payments.POST("/checkout", h.Checkout)
		// Unauthenticated by design: the gateway authenticates with the
		// payload signature, not a bearer token.
		payments.POST("/callback", h.Callback)
		payments.POST("/verify", h.Verify)
		payments.POST("/complete-registration", h.CompleteRegistration)
	}
}

// ListPaymentMethods godoc
// GET /api/v1/payments/methods?amount=299000
func (h *PaymentHandler) ListPaymentMethods(c *gin.Context) {
	amountStr := c.Query("amount")
	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil || amount <= 0 {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Query parameter 'amount' must be a positive integer"))
		return
	}

	methods, svcErr := h.checkout.ListPaymentMethods(c.Request.Context(), amount)
	if svcErr != nil {
		h.HandleServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"methods": methods})
}

func (h *PaymentHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.checkout.Checkout(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Callback receives the gateway webhook. The response body is the plain-text
// acknowledgement, not JSON.
func (h *PaymentHandler) Callback(c *gin.Context) {
	var data models.GatewayCallbackData
	if err := c.ShouldBind(&data); err != nil {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Invalid callback payload: "+err.Error()))
		return
	}

	if err := h.callback.ProcessCallback(c.Request.Context(), h.GetDB(c), &data); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.String(http.StatusOK, callbackAck)
}

func (h *PaymentHandler) Verify(c *gin.Context) {
	var req models.VerifyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.verification.Verify(c.Request.Context(), h.GetDB(c), req.PaymentReference)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) CompleteRegistration(c *gin.Context) {
	var req models.CompleteRegistrationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.registration.CompleteRegistration(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
