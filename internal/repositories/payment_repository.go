package repositories

import (
	"edupay_backend/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct{}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{}
}

func (r *PaymentRepository) Create(db *gorm.DB, payment *models.Payment) error {
	return db.Create(payment).Error
}

func (r *PaymentRepository) FindByUser(db *gorm.DB, userID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := db.Preload("Course").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) FindByReference(db *gorm.DB, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := db.First(&payment, "gateway_reference = ?", reference).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
