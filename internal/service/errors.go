package service

import "errors"

var (
	ErrInvalidInput           = errors.New("all fields are required")
	ErrEmailAlreadyRegistered = errors.New("user already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidOrExpiredToken  = errors.New("invalid or expired token")
	ErrUserNotFound           = errors.New("user not found")
)
