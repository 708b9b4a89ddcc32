package repository

import (
	"context"
	"errors"
	"time"

	"authflow/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByVerificationCode(ctx context.Context, code string, now time.Time) (*entity.User, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *userRepository) FindByVerificationCode(ctx context.Context, code string, now time.Time) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("verification_code = ? AND verification_expires_at > ?", code, now).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (r *userRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("reset_token = ? AND reset_expires_at > ?", token, now).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

// Update persists the full record, including clearing code/token fields back
// to NULL when they were consumed.
func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).
		Model(user).
		Select("password_hash", "is_verified", "verification_code", "verification_expires_at",
			"reset_token", "reset_expires_at", "last_login_at", "updated_at").
		Updates(user).Error
}
