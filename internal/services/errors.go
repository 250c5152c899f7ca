package services

import "errors"

var (
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileRequired = errors.New("verified profile required")
	ErrNotVerified     = errors.New("user not verified")
	ErrBlocked         = errors.New("users have blocked each other")

	ErrStorageUnavailable = errors.New("photo storage is not configured")
)
