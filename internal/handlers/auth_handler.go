package handlers

import (
	"net/http"

	"edupay_backend/internal/models"
	"edupay_backend/internal/services"
	"edupay_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	auth *services.AuthService
}

func NewAuthHandler(v *validator.Validator, auth *services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(v),
		auth:        auth,
	}
}

func (h *AuthHandler) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Login)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
