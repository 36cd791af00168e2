package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"edupay_backend/internal/auth"
	"edupay_backend/internal/logger"
	"edupay_backend/internal/models"
	"edupay_backend/internal/repositories"
	"edupay_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// AuthService signs users in. There is no self-service signup: accounts only
// come into existence through payment reconciliation or seeding.
type AuthService struct {
	userRepo *repositories.UserRepository
}

func NewAuthService(userRepo *repositories.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

func (s *AuthService) Login(ctx context.Context, db *gorm.DB, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(db, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.NewForbiddenError("Account is suspended")
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, invalidCredentials()
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user logged in", "user_id", user.ID)
	return &models.LoginResponse{AccessToken: token, User: user}, nil
}

func invalidCredentials() *apperrors.AppError {
	// Same message for unknown email and wrong password.
	return apperrors.New(apperrors.CodeInvalidCredentials, "auth", "Invalid email or password", http.StatusUnauthorized)
}
