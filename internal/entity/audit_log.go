package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditAction string

const (
	Signup                 AuditAction = "signup"
	LoginSuccess           AuditAction = "login_success"
	LoginFailed            AuditAction = "login_failed"
	EmailVerified          AuditAction = "email_verified"
	PasswordResetRequested AuditAction = "password_reset_requested"
	PasswordResetCompleted AuditAction = "password_reset_completed"
)

type AuditLog struct {
	ID        uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    *uuid.UUID  `gorm:"type:uuid;index"`
	IPAddress *string     `gorm:"type:varchar(45)"`
	Action    AuditAction `gorm:"type:varchar(50);not null;index"`
	Metadata  datatypes.JSON

	CreatedAt time.Time
}
