package repositories

import (
	"errors"

	"edupay_backend/internal/models"

	"gorm.io/gorm"
)

// ErrAlreadyEnrolled surfaces the (user_id, course_id) unique constraint —
// the idempotency guard of the reconciliation subsystem.
var ErrAlreadyEnrolled = errors.New("user already enrolled in course")

type EnrollmentRepository struct{}

func NewEnrollmentRepository() *EnrollmentRepository {
	return &EnrollmentRepository{}
}

func (r *EnrollmentRepository) Create(db *gorm.DB, enrollment *models.Enrollment) error {
	if err := db.Create(enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyEnrolled
		}
		return err
	}
	return nil
}

func (r *EnrollmentRepository) Exists(db *gorm.DB, userID, courseID string) (bool, error) {
	var count int64
	err := db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// ExistsByEmail checks enrollment through the user's email — the signal the
// verification service uses before a caller has any user id.
func (r *EnrollmentRepository) ExistsByEmail(db *gorm.DB, email, courseID string) (bool, error) {
	var count int64
	err := db.Model(&models.Enrollment{}).
		Joins("JOIN users ON users.id = enrollments.user_id").
		Where("users.email = ? AND enrollments.course_id = ?", email, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *EnrollmentRepository) FindByUser(db *gorm.DB, userID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := db.Preload("Course").Where("user_id = ?", userID).
		Order("enrolled_at DESC").Find(&enrollments).Error
	return enrollments, err
}
