package database

import (
	"edupay_backend/internal/models"

	"gorm.io/gorm"
)

// Migrate creates or updates the schema. The unique indexes it creates are
// load-bearing: merchant_order_id uniqueness and the (user_id, course_id)
// enrollment constraint are the subsystem's concurrency control.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.PendingPayment{},
		&models.Payment{},
		&models.Enrollment{},
	)
}
