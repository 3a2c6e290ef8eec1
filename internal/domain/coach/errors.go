package coach

import "errors"

var (
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrClassTypeExists   = errors.New("class type already exists")
	ErrClassTypeNotFound = errors.New("class type not found")
	ErrCoachNotFound     = errors.New("coach not found")
)
