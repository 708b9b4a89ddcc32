package routes

import (
	"time"

	"authflow/api/handler"
	"authflow/api/middleware"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	AuthMiddleware middleware.AuthMiddleware
	SignupRate     *middleware.RateLimiter
	CodeRate       *middleware.RateLimiter
}

func NewRouter(e *echo.Echo, authHandler *handler.AuthHandler, authMiddleware middleware.AuthMiddleware) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		AuthMiddleware: authMiddleware,
		SignupRate:     middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		CodeRate:       middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	e.POST("/auth/signup", r.Auth.Signup, r.SignupRate.Middleware())
	e.POST("/auth/verify-email", r.Auth.VerifyEmail, r.CodeRate.Middleware())
	e.POST("/auth/login", r.Auth.Login, r.CodeRate.Middleware())
	e.POST("/auth/logout", r.Auth.Logout)
	e.POST("/auth/forgot-password", r.Auth.ForgotPassword, r.CodeRate.Middleware())
	e.POST("/auth/reset-password/:token", r.Auth.ResetPassword, r.CodeRate.Middleware())

	e.GET("/auth/check", r.Auth.Check, r.AuthMiddleware.RequireSession)
}
