package services

import (
	"edupay_backend/internal/models"
	"edupay_backend/internal/repositories"

	"gorm.io/gorm"
)

type EnrollmentService struct {
	enrollmentRepo *repositories.EnrollmentRepository
	paymentRepo    *repositories.PaymentRepository
}

func NewEnrollmentService(enrollmentRepo *repositories.EnrollmentRepository, paymentRepo *repositories.PaymentRepository) *EnrollmentService {
	return &EnrollmentService{enrollmentRepo: enrollmentRepo, paymentRepo: paymentRepo}
}

func (s *EnrollmentService) MyEnrollments(db *gorm.DB, userID string) ([]models.Enrollment, error) {
	return s.enrollmentRepo.FindByUser(db, userID)
}

func (s *EnrollmentService) MyPayments(db *gorm.DB, userID string) ([]models.Payment, error) {
	return s.paymentRepo.FindByUser(db, userID)
}
