package handlers

import (
	"net/http"

	"edupay_backend/internal/middleware"
	"edupay_backend/internal/models"
	"edupay_backend/internal/services"
	"edupay_backend/internal/validator"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	*BaseHandler
	courses *services.CourseService
}

func NewCourseHandler(v *validator.Validator, courses *services.CourseService) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(v),
		courses:     courses,
	}
}

func (h *CourseHandler) RegisterRoutes(api *gin.RouterGroup) {
	courses := api.Group("/courses")
	{
		courses.GET("", h.ListCourses)
		courses.GET("/:slug", h.GetCourse)
	}

	admin := api.Group("/admin/courses")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		admin.POST("", h.CreateCourse)
		admin.PUT("/:id", h.UpdateCourse)
	}
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courses.ListPublished(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courses.GetBySlug(h.GetDB(c), c.Param("slug"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req models.CreateCourseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	course, err := h.courses.Create(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req models.UpdateCourseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	course, err := h.courses.Update(h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}
