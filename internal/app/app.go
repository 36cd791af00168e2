package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edupay_backend/database"
	"edupay_backend/internal/auth"
	"edupay_backend/internal/config"
	"edupay_backend/internal/email"
	"edupay_backend/internal/gateway"
	"edupay_backend/internal/handlers"
	"edupay_backend/internal/identity"
	"edupay_backend/internal/logger"
	"edupay_backend/internal/middleware"
	"edupay_backend/internal/models"
	"edupay_backend/internal/routes"
	"edupay_backend/internal/services"
	"edupay_backend/internal/validator"
	"edupay_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		// Unique-constraint violations must surface as gorm.ErrDuplicatedKey;
		// the reconciliation flow branches on them.
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	gw := newGatewayClient(cfg)
	ginRouter := SetupRouter(cfg, gormDB, gw)

	worker := workers.NewPaymentWorker(gormDB, gw, cfg.Gateway.ExpiryMins)
	worker.Start(context.Background())

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB, gw services.GatewayAPI) *gin.Engine {
	idp := identity.NewHTTPProvider(
		cfg.Identity.BaseURL,
		cfg.Identity.APIKey,
		time.Duration(cfg.Identity.TimeoutSec)*time.Second,
	)

	var mailer email.Provider
	if cfg.Email.SMTPHost != "" {
		mailer = email.NewSMTPProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
	} else {
		logger.Warn("SMTP is not configured, receipt emails disabled")
	}

	serviceContainer := services.NewServiceContainer(gw, idp, mailer)

	customValidator := validator.New()
	appHandlers := handlers.NewAppHandlers(customValidator, serviceContainer)

	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

func newGatewayClient(cfg *config.Config) *gateway.Client {
	return gateway.NewClient(gateway.ClientConfig{
		BaseURL:      cfg.Gateway.BaseURL,
		MerchantCode: cfg.Gateway.MerchantCode,
		APIKey:       cfg.Gateway.APIKey,
		CallbackURL:  cfg.Gateway.CallbackURL,
		ReturnURL:    cfg.Gateway.ReturnURL,
		Timeout:      time.Duration(cfg.Gateway.TimeoutSec) * time.Second,
		ExpiryMins:   cfg.Gateway.ExpiryMins,
	})
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hashedPassword, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		FirstName:    "Admin",
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}
	return nil
}
