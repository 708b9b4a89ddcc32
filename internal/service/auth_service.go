package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"authflow/internal/entity"
	"authflow/internal/repository"
	"authflow/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult pairs the affected user with a freshly issued session token.
// The handler is responsible for attaching the token to the transport.
type AuthResult struct {
	User         *entity.User
	SessionToken string
	SessionTTL   time.Duration
}

type AuthService struct {
	users     repository.UserRepository
	auditLogs repository.AuditLogRepository

	emailSender   EmailSender
	passwordHash  PasswordHasher
	sessionTokens SessionTokenIssuer
	clock         Clock
	config        AuthConfig
}

func NewAuthService(
	users repository.UserRepository,
	auditLogs repository.AuditLogRepository,
	emailSender EmailSender,
	passwordHash PasswordHasher,
	sessionTokens SessionTokenIssuer,
	clock Clock,
	config AuthConfig,
) *AuthService {
	return &AuthService{
		users:         users,
		auditLogs:     auditLogs,
		emailSender:   emailSender,
		passwordHash:  passwordHash,
		sessionTokens: sessionTokens,
		clock:         clock,
		config:        config,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput, ipAddress *string) (*AuthResult, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" || strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidInput
	}

	email := utils.NormalizeEmail(input.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return nil, err
	}
	codeExpiry := s.now().Add(s.verificationCodeTTL())

	user := &entity.User{
		Email:                 email,
		PasswordHash:          hash,
		Name:                  strings.TrimSpace(input.Name),
		VerificationCode:      &code,
		VerificationExpiresAt: &codeExpiry,
	}

	// The existence check above and this insert are not atomic; a concurrent
	// duplicate signup loses here on the unique email index instead.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	result, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	if err := s.sendVerificationEmail(ctx, user, code); err != nil {
		// Best-effort notify: the created account stands, the request fails.
		return nil, err
	}

	_ = s.logAudit(ctx, &user.ID, ipAddress, entity.Signup, nil)
	return result, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, code string, ipAddress *string) (*entity.User, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrInvalidInput
	}

	// Wrong and expired codes collapse into one error so callers cannot
	// probe which accounts exist.
	user, err := s.users.FindByVerificationCode(ctx, code, s.now())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidOrExpiredToken
	}

	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationExpiresAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if s.emailSender != nil {
		if err := s.emailSender.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			return nil, err
		}
	}

	_ = s.logAudit(ctx, &user.ID, ipAddress, entity.EmailVerified, nil)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput, ipAddress *string) (*AuthResult, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidInput
	}

	email := utils.NormalizeEmail(input.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Burn a hash comparison so unknown emails take as long as wrong
		// passwords.
		_ = s.passwordHash.Verify(dummyPasswordHash, input.Password)
		_ = s.logAudit(ctx, nil, ipAddress, entity.LoginFailed, map[string]any{"email": email})
		return nil, ErrInvalidCredentials
	}

	if !s.passwordHash.Verify(user.PasswordHash, input.Password) {
		_ = s.logAudit(ctx, &user.ID, ipAddress, entity.LoginFailed, map[string]any{"email": email})
		return nil, ErrInvalidCredentials
	}

	result, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	_ = s.logAudit(ctx, &user.ID, ipAddress, entity.LoginSuccess, nil)
	return result, nil
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string, ipAddress *string) error {
	if strings.TrimSpace(email) == "" {
		return ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return err
	}
	tokenExpiry := s.now().Add(s.resetTokenTTL())

	user.ResetToken = &token
	user.ResetExpiresAt = &tokenExpiry
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if s.emailSender != nil {
		if err := s.emailSender.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
			return err
		}
	}

	_ = s.logAudit(ctx, &user.ID, ipAddress, entity.PasswordResetRequested, nil)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token string, newPassword string, ipAddress *string) error {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(newPassword) == "" {
		return ErrInvalidInput
	}

	user, err := s.users.FindByResetToken(ctx, token, s.now())
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidOrExpiredToken
	}

	hash, err := s.passwordHash.Hash(newPassword)
	if err != nil {
		return err
	}

	// Replacing the hash and clearing the token in one write keeps the token
	// single-use.
	user.PasswordHash = hash
	user.ResetToken = nil
	user.ResetExpiresAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if s.emailSender != nil {
		if err := s.emailSender.SendPasswordResetSuccessEmail(ctx, user.Email); err != nil {
			return err
		}
	}

	_ = s.logAudit(ctx, &user.ID, ipAddress, entity.PasswordResetCompleted, nil)
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) issueSession(user *entity.User) (*AuthResult, error) {
	token, ttl, err := s.sessionTokens.IssueSessionToken(user.ID.String())
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, SessionToken: token, SessionTTL: ttl}, nil
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, user *entity.User, code string) error {
	if s.emailSender == nil {
		return nil
	}
	return s.emailSender.SendVerificationEmail(ctx, user.Email, user.Name, code)
}

func (s *AuthService) logAudit(
	ctx context.Context,
	userID *uuid.UUID,
	ipAddress *string,
	action entity.AuditAction,
	metadata map[string]any,
) error {
	if s.auditLogs == nil {
		return nil
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(bytes)
	}

	log := &entity.AuditLog{
		UserID:    userID,
		IPAddress: ipAddress,
		Action:    action,
		Metadata:  payload,
	}
	return s.auditLogs.Log(ctx, log)
}

func (s *AuthService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func (s *AuthService) verificationCodeTTL() time.Duration {
	if s.config.VerificationCodeTTL > 0 {
		return s.config.VerificationCodeTTL
	}
	return 5 * time.Minute
}

func (s *AuthService) resetTokenTTL() time.Duration {
	if s.config.ResetTokenTTL > 0 {
		return s.config.ResetTokenTTL
	}
	return time.Hour
}
