package roster

import "errors"

var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrDayNotFound     = errors.New("no classes on that date")
	ErrSlotNotFound    = errors.New("class not found")
	ErrDuplicateSlot   = errors.New("class already exists")
	ErrDayExists       = errors.New("date already has classes")
	ErrClassFull       = errors.New("class is full")
	ErrAlreadyEnrolled = errors.New("already enrolled")
	ErrTimeImmutable   = errors.New("class time cannot be changed")
)
