package user

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrInvalidRoleCode   = errors.New("invalid role code")
	ErrCannotAssignRole  = errors.New("cannot assign role")
	ErrEmailAlreadyUsed  = errors.New("email already used")
	ErrInvalidName       = errors.New("name is required")
	ErrPasswordTooShort  = errors.New("password is too short")
)
