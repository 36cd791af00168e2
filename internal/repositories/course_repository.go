package repositories

import (
	"errors"

	"edupay_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseAlreadyExists = errors.New("course already exists")
)

type CourseRepository struct{}

func NewCourseRepository() *CourseRepository {
	return &CourseRepository{}
}

func (r *CourseRepository) FindByID(db *gorm.DB, id string) (*models.Course, error) {
	var course models.Course
	err := db.First(&course, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindBySlug(db *gorm.DB, slug string) (*models.Course, error) {
	var course models.Course
	err := db.First(&course, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindPublished(db *gorm.DB) ([]models.Course, error) {
	var courses []models.Course
	err := db.Where("is_published = ?", true).Order("created_at DESC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Create(db *gorm.DB, course *models.Course) error {
	if err := db.Create(course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCourseAlreadyExists
		}
		return err
	}
	return nil
}

func (r *CourseRepository) Update(db *gorm.DB, course *models.Course) error {
	result := db.Model(course).Updates(map[string]interface{}{
		"title":        course.Title,
		"description":  course.Description,
		"price":        course.Price,
		"is_published": course.IsPublished,
		"features":     course.Features,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}
