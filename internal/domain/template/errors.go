package template

import "errors"

var (
	ErrBadRequest    = errors.New("bad request")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrSlotNotFound  = errors.New("template class not found")
	ErrDuplicateSlot = errors.New("template class already exists")
	ErrTimeImmutable = errors.New("class time cannot be changed")
	ErrInvalidRange  = errors.New("start date is after end date")
)
