package services

import "errors"

var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrListingNotFound    = errors.New("listing not found")
	ErrInvalidStatus      = errors.New("invalid status")
)
