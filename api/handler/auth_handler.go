package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"authflow/api/middleware"
	"authflow/internal/dto"
	"authflow/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Service           *service.AuthService
	Validate          *validator.Validate
	SessionCookieName string
	CookieDomain      string
	SecureCookies     bool
	SameSite          http.SameSite
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{
		Service:           svc,
		Validate:          validate,
		SessionCookieName: "token",
		SecureCookies:     true,
		SameSite:          http.SameSiteStrictMode,
	}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeFailure(c, http.StatusBadRequest, service.ErrInvalidInput.Error())
	}
	if err := h.validate(req); err != nil {
		return writeFailure(c, http.StatusBadRequest, service.ErrInvalidInput.Error())
	}
	input := service.RegisterInput{Email: req.Email, Password: req.Password, Name: req.Name}
	result, err := h.Service.Register(c.Request().Context(), input, stringPtr(c.RealIP()))
	if err != nil {
		return writeServiceError(c, err)
	}
	h.setSessionCookie(c, result.SessionToken, result.SessionTTL)
	return c.JSON(http.StatusCreated, dto.Envelope{
		Success: true,
		Message: "user created successfully",
		User:    dto.UserResponseFromEntity(result.User),
	})
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req dto.VerifyEmailRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeFailure(c, http.StatusBadRequest, service.ErrInvalidInput.Error())
	}
	if err := h.validate(req); err != nil {
		// Malformed codes can never match a stored one; collapse to the same
		// error a wrong code produces.
		return writeFailure(c, http.StatusBadRequest, service.ErrInvalidOrExpiredToken.Error())
	}
	user, err := h.Service.VerifyEmail(c.Request().Context(), req.Code, stringPtr(c.RealIP()))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.Envelope{
		Success: true,
		Message: "email verified successfully",
		User:    dto.UserResponseFromEntity(user),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeFailure(c, http.StatusBadRequest, service.ErrInvalidInput.Error())
	}
	if err := h.validate(req); err != nil {
		return writeFailure(c, http.StatusBadRequest, service.ErrInvalidInput.Error())
	}
	input := service.LoginInput{Email: req.Email, Password: req.Password}
	result, err := h.Service.Login(c.Request().Context(), input, stringPtr(c.RealIP()))
	if err != nil {
		return writeServiceError(c, err)
	}
	h.setSessionCookie(c, result.SessionToken, result.SessionTTL)
	return c.JSON(http.StatusOK, dto.Envelope{
		Success: true,
		Message: "logged in successfully",
		User:    dto.UserResponseFromEntity(result.User),
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, dto.Envelope{Success: true, Message: "logged out successfully"})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req dto.ForgotPasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeFailure(c, http.StatusBadRequest, service.ErrInvalidInput.Error())
	}
	if err := h.validate(req); err != nil {
		return writeFailure(c, http.StatusBadRequest, service.ErrInvalidInput.Error())
	}
	if err := h.Service.RequestPasswordReset(c.Request().Context(), req.Email, stringPtr(c.RealIP())); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.Envelope{Success: true, Message: "password reset link sent to your email"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	token := c.Param("token")
	var req dto.ResetPasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeFailure(c, http.StatusBadRequest, service.ErrInvalidInput.Error())
	}
	if err := h.validate(req); err != nil {
		return writeFailure(c, http.StatusBadRequest, service.ErrInvalidInput.Error())
	}
	if err := h.Service.ResetPassword(c.Request().Context(), token, req.Password, stringPtr(c.RealIP())); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.Envelope{Success: true, Message: "password reset successful"})
}

func (h *AuthHandler) Check(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeFailure(c, http.StatusBadRequest, service.ErrUserNotFound.Error())
	}
	user, err := h.Service.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.Envelope{
		Success: true,
		User:    dto.UserResponseFromEntity(user),
	})
}

func (h *AuthHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, ttl time.Duration) {
	if token == "" {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     h.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeFailure(c echo.Context, status int, message string) error {
	return c.JSON(status, dto.Envelope{Success: false, Message: message})
}

// writeServiceError converts every service failure into the uniform 400
// envelope; nothing propagates past the handler boundary.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmailAlreadyRegistered),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidOrExpiredToken),
		errors.Is(err, service.ErrUserNotFound):
		return writeFailure(c, http.StatusBadRequest, err.Error())
	}
	return writeFailure(c, http.StatusBadRequest, "request could not be processed")
}

func stringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
