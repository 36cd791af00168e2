package handlers

import (
	"net/http"

	"edupay_backend/internal/middleware"
	"edupay_backend/internal/services"
	"edupay_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	*BaseHandler
	enrollments *services.EnrollmentService
}

func NewEnrollmentHandler(v *validator.Validator, enrollments *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler: NewBaseHandler(v),
		enrollments: enrollments,
	}
}

func (h *EnrollmentHandler) RegisterRoutes(api *gin.RouterGroup) {
	me := api.Group("")
	me.Use(middleware.AuthMiddleware())
	{
		me.GET("/enrollments/my", h.MyEnrollments)
		me.GET("/payments/my", h.MyPayments)
	}
}

func (h *EnrollmentHandler) MyEnrollments(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	enrollments, err := h.enrollments.MyEnrollments(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": enrollments})
}

func (h *EnrollmentHandler) MyPayments(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	payments, err := h.enrollments.MyPayments(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
