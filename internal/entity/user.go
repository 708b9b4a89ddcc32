package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	Name         string    `gorm:"type:varchar(100);not null"`

	// Verification is one-way: once IsVerified flips to true the code fields
	// are cleared and never set again.
	IsVerified            bool    `gorm:"default:false;not null"`
	VerificationCode      *string `gorm:"type:varchar(6);index"`
	VerificationExpiresAt *time.Time

	// Reset fields exist only between a forgot-password request and its
	// consumption; cleared on successful reset.
	ResetToken     *string `gorm:"type:varchar(64);index"`
	ResetExpiresAt *time.Time

	LastLoginAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPendingVerification reports whether an unconsumed verification code is
// attached, regardless of expiry.
func (u *User) HasPendingVerification() bool {
	return !u.IsVerified && u.VerificationCode != nil
}

// HasPendingReset reports whether an unconsumed reset token is attached,
// regardless of expiry.
func (u *User) HasPendingReset() bool {
	return u.ResetToken != nil
}
