package handlers

import (
	"edupay_backend/internal/services"
	"edupay_backend/internal/validator"
)

// AppHandlers holds all HTTP handlers of the application.
type AppHandlers struct {
	PaymentHandler    *PaymentHandler
	CourseHandler     *CourseHandler
	AuthHandler       *AuthHandler
	EnrollmentHandler *EnrollmentHandler
}

func NewAppHandlers(v *validator.Validator, svc *services.ServiceContainer) *AppHandlers {
	return &AppHandlers{
		PaymentHandler: NewPaymentHandler(v,
			svc.CheckoutService,
			svc.CallbackService,
			svc.VerificationService,
			svc.RegistrationService,
		),
		CourseHandler:     NewCourseHandler(v, svc.CourseService),
		AuthHandler:       NewAuthHandler(v, svc.AuthService),
		EnrollmentHandler: NewEnrollmentHandler(v, svc.EnrollmentService),
	}
}
