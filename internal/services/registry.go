package services

import (
	"edupay_backend/internal/email"
	"edupay_backend/internal/identity"
	"edupay_backend/internal/repositories"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	CheckoutService     *CheckoutService
	CallbackService     *CallbackService
	VerificationService *VerificationService
	RegistrationService *RegistrationService
	AuthService         *AuthService
	CourseService       *CourseService
	EnrollmentService   *EnrollmentService
}

// NewServiceContainer wires repositories and external collaborators into the
// service layer.
func NewServiceContainer(gw GatewayAPI, idp identity.Provider, mailer email.Provider) *ServiceContainer {
	pendingRepo := repositories.NewPendingPaymentRepository()
	userRepo := repositories.NewUserRepository()
	courseRepo := repositories.NewCourseRepository()
	paymentRepo := repositories.NewPaymentRepository()
	enrollmentRepo := repositories.NewEnrollmentRepository()

	verification := NewVerificationService(gw, pendingRepo, paymentRepo, userRepo, courseRepo, enrollmentRepo)

	return &ServiceContainer{
		CheckoutService:     NewCheckoutService(gw, pendingRepo, courseRepo),
		CallbackService:     NewCallbackService(gw, pendingRepo),
		VerificationService: verification,
		RegistrationService: NewRegistrationService(idp, pendingRepo, userRepo, courseRepo, paymentRepo, enrollmentRepo, mailer),
		AuthService:         NewAuthService(userRepo),
		CourseService:       NewCourseService(courseRepo),
		EnrollmentService:   NewEnrollmentService(enrollmentRepo, paymentRepo),
	}
}
