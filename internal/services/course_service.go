package services

import (
	"encoding/json"
	"errors"

	"edupay_backend/internal/models"
	"edupay_backend/internal/repositories"
	"edupay_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseService struct {
	courseRepo *repositories.CourseRepository
}

func NewCourseService(courseRepo *repositories.CourseRepository) *CourseService {
	return &CourseService{courseRepo: courseRepo}
}

func (s *CourseService) ListPublished(db *gorm.DB) ([]models.Course, error) {
	return s.courseRepo.FindPublished(db)
}

func (s *CourseService) GetBySlug(db *gorm.DB, slug string) (*models.Course, error) {
	course, err := s.courseRepo.FindBySlug(db, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.NewNotFoundError("course", "Course not found")
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Create(db *gorm.DB, req *models.CreateCourseRequest) (*models.Course, error) {
	course := &models.Course{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
	}
	if course.Currency == "" {
		course.Currency = "IDR"
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}
	if req.Features != nil {
		raw, err := json.Marshal(req.Features)
		if err != nil {
			return nil, apperrors.NewBadRequestError("Invalid course features")
		}
		course.Features = datatypes.JSON(raw)
	}

	if err := s.courseRepo.Create(db, course); err != nil {
		if errors.Is(err, repositories.ErrCourseAlreadyExists) {
			return nil, apperrors.New(apperrors.CodeConflict, "course", "Course slug already in use", 409)
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Update(db *gorm.DB, id string, req *models.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.courseRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.NewNotFoundError("course", "Course not found")
		}
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}
	if req.Features != nil {
		raw, err := json.Marshal(req.Features)
		if err != nil {
			return nil, apperrors.NewBadRequestError("Invalid course features")
		}
		course.Features = datatypes.JSON(raw)
	}

	if err := s.courseRepo.Update(db, course); err != nil {
		return nil, err
	}
	return course, nil
}
