package account

import "errors"

var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAccountCreation = errors.New("account creation failed")
	ErrClaimsWrite     = errors.New("failed to write claims")
	ErrAccountNotFound = errors.New("account not found")
	ErrDeletion        = errors.New("account deletion failed")
	ErrBootstrapped    = errors.New("super admin already initialized")
)
