package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	VerificationCodeTTL time.Duration
	ResetTokenTTL       time.Duration
	SessionTTL          time.Duration
}

type EmailSender interface {
	SendVerificationEmail(ctx context.Context, email string, name string, code string) error
	SendWelcomeEmail(ctx context.Context, email string, name string) error
	SendPasswordResetEmail(ctx context.Context, email string, token string) error
	SendPasswordResetSuccessEmail(ctx context.Context, email string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type SessionTokenIssuer interface {
	IssueSessionToken(userID string) (string, time.Duration, error)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
