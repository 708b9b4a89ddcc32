package main

import (
	"net/http"
	"os"
	"time"

	"authflow/api/handler"
	apiMiddleware "authflow/api/middleware"
	"authflow/api/routes"
	"authflow/config"
	"authflow/internal/repository"
	"authflow/internal/service"
	"authflow/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg := config.Load()
	if len(cfg.JWTSecret) == 0 {
		logger.Fatal("JWT_SECRET is required")
	}

	db, err := config.ConnectDatabase(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}

	validate := validator.New()

	jwtManager := utils.JWTManager{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		SessionTTL: cfg.SessionTTL,
	}

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	emailSender := service.NewResendEmailSender(cfg.ResendAPIKey, cfg.EmailFrom, cfg.ClientBaseURL)

	authService := service.NewAuthService(
		userRepo,
		auditRepo,
		emailSender,
		service.BcryptPasswordHasher{},
		service.JWTSessionIssuer{Manager: &jwtManager},
		service.RealClock{},
		service.AuthConfig{
			VerificationCodeTTL: cfg.VerificationCodeTTL,
			ResetTokenTTL:       cfg.ResetTokenTTL,
			SessionTTL:          cfg.SessionTTL,
		},
	)

	authHandler := handler.NewAuthHandler(authService, validate)
	authHandler.CookieDomain = cfg.CookieDomain
	authHandler.SecureCookies = cfg.SecureCookies

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{JWT: &jwtManager, CookieName: authHandler.SessionCookieName}
	router := routes.NewRouter(app, authHandler, authMiddleware)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
