package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"authflow/api/middleware"
	"authflow/internal/dto"
	"authflow/internal/repository"
	"authflow/internal/service"
	"authflow/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubEmailSender struct {
	lastCode       string
	lastResetToken string
}

func (s *stubEmailSender) SendVerificationEmail(_ context.Context, _, _, code string) error {
	s.lastCode = code
	return nil
}

func (s *stubEmailSender) SendWelcomeEmail(_ context.Context, _, _ string) error {
	return nil
}

func (s *stubEmailSender) SendPasswordResetEmail(_ context.Context, _, token string) error {
	s.lastResetToken = token
	return nil
}

func (s *stubEmailSender) SendPasswordResetSuccessEmail(_ context.Context, _ string) error {
	return nil
}

type testServer struct {
	app    *echo.Echo
	emails *stubEmailSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	emails := &stubEmailSender{}
	jwtManager := utils.JWTManager{Secret: []byte("test-secret"), SessionTTL: 7 * 24 * time.Hour}

	svc := service.NewAuthService(
		repository.NewMemoryUserRepository(),
		repository.NewMemoryAuditLogRepository(),
		emails,
		service.BcryptPasswordHasher{Cost: bcrypt.MinCost},
		service.JWTSessionIssuer{Manager: &jwtManager},
		service.RealClock{},
		service.AuthConfig{},
	)

	h := NewAuthHandler(svc, validator.New())
	authMiddleware := middleware.AuthMiddleware{JWT: &jwtManager, CookieName: h.SessionCookieName}

	app := echo.New()
	app.POST("/auth/signup", h.Signup)
	app.POST("/auth/verify-email", h.VerifyEmail)
	app.POST("/auth/login", h.Login)
	app.POST("/auth/logout", h.Logout)
	app.POST("/auth/forgot-password", h.ForgotPassword)
	app.POST("/auth/reset-password/:token", h.ResetPassword)
	app.GET("/auth/check", h.Check, authMiddleware.RequireSession)

	return &testServer{app: app, emails: emails}
}

func (s *testServer) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) dto.Envelope {
	t.Helper()
	var envelope dto.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "token" {
			return cookie
		}
	}
	return nil
}

const signupBody = `{"email":"a@x.com","password":"Pw1!","name":"Ann"}`

func TestSignup(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/signup", signupBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
	require.NotNil(t, envelope.User)
	assert.Equal(t, "a@x.com", envelope.User.Email)
	assert.False(t, envelope.User.IsVerified)

	// The credential never leaves the server.
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestSignup_Duplicate(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/auth/signup", signupBody)

	rec := s.do(t, http.MethodPost, "/auth/signup", signupBody)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.False(t, envelope.Success)
	assert.Equal(t, "user already exists", envelope.Message)
}

func TestSignup_InvalidBody(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{"email":"not-an-email","password":"Pw1!","name":"Ann"}`,
		`{"email":"a@x.com","password":"","name":"Ann"}`,
		`{"email":"a@x.com","password":"Pw1!"}`,
		`{broken`,
	} {
		rec := s.do(t, http.MethodPost, "/auth/signup", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
		assert.False(t, decodeEnvelope(t, rec).Success)
	}
}

func TestVerifyEmail(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/auth/signup", signupBody)

	wrong := s.do(t, http.MethodPost, "/auth/verify-email", `{"code":"999999"}`)
	if s.emails.lastCode == "999999" {
		t.Skip("generated code collided with the probe value")
	}
	require.Equal(t, http.StatusBadRequest, wrong.Code)
	assert.Equal(t, "invalid or expired token", decodeEnvelope(t, wrong).Message)

	rec := s.do(t, http.MethodPost, "/auth/verify-email", `{"code":"`+s.emails.lastCode+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
	require.NotNil(t, envelope.User)
	assert.True(t, envelope.User.IsVerified)
}

func TestLogin_UniformFailureBody(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/auth/signup", signupBody)

	wrongPass := s.do(t, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"nope-nope"}`)
	unknown := s.do(t, http.MethodPost, "/auth/login", `{"email":"nobody@x.com","password":"nope-nope"}`)

	require.Equal(t, http.StatusBadRequest, wrongPass.Code)
	require.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, wrongPass.Body.String(), unknown.Body.String())
}

func TestLogout_ClearsCookie(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

func TestCheck(t *testing.T) {
	s := newTestServer(t)
	signup := s.do(t, http.MethodPost, "/auth/signup", signupBody)
	cookie := sessionCookie(signup)
	require.NotNil(t, cookie)

	rec := s.do(t, http.MethodGet, "/auth/check", "", &http.Cookie{Name: cookie.Name, Value: cookie.Value})
	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
	require.NotNil(t, envelope.User)
	assert.Equal(t, "a@x.com", envelope.User.Email)
}

func TestCheck_WithoutSession(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/auth/check", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/auth/forgot-password", `{"email":"nobody@x.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user not found", decodeEnvelope(t, rec).Message)
}

func TestEndToEndFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/signup", signupBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/verify-email", `{"code":"`+s.emails.lastCode+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"Pw1!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, decodeEnvelope(t, rec).User.LastLoginAt)

	rec = s.do(t, http.MethodPost, "/auth/forgot-password", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/reset-password/"+s.emails.lastResetToken, `{"password":"Pw2!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "password reset successful", decodeEnvelope(t, rec).Message)

	rec = s.do(t, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"Pw1!"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"Pw2!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}
