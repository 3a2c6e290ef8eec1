package http

import (
	"errors"
	"log"
	"net/http"

	"gym-manager/backend/internal/domain/account"
	"gym-manager/backend/internal/domain/coach"
	"gym-manager/backend/internal/domain/roster"
	"gym-manager/backend/internal/domain/template"
)

func mapAccountError(err error) (int, string) {
	switch {
	case errors.Is(err, account.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, account.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, account.ErrAccountNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, account.ErrBootstrapped):
		return http.StatusConflict, err.Error()
	case errors.Is(err, account.ErrAccountCreation),
		errors.Is(err, account.ErrClaimsWrite),
		errors.Is(err, account.ErrDeletion):
		return http.StatusInternalServerError, err.Error()
	}
	log.Printf("account error: %v", err)
	return http.StatusInternalServerError, "internal error"
}

func mapRosterError(err error) (int, string) {
	switch {
	case errors.Is(err, roster.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, roster.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, roster.ErrDayNotFound), errors.Is(err, roster.ErrSlotNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, roster.ErrDuplicateSlot),
		errors.Is(err, roster.ErrDayExists),
		errors.Is(err, roster.ErrClassFull),
		errors.Is(err, roster.ErrAlreadyEnrolled):
		return http.StatusConflict, err.Error()
	case errors.Is(err, roster.ErrTimeImmutable):
		return http.StatusBadRequest, err.Error()
	}
	log.Printf("roster error: %v", err)
	return http.StatusInternalServerError, "internal error"
}

func mapTemplateError(err error) (int, string) {
	switch {
	case errors.Is(err, template.ErrBadRequest),
		errors.Is(err, template.ErrInvalidRange),
		errors.Is(err, template.ErrTimeImmutable):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, template.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, template.ErrSlotNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, template.ErrDuplicateSlot):
		return http.StatusConflict, err.Error()
	}
	// template slot validation reuses the roster sentinels
	return mapRosterError(err)
}

func mapCoachError(err error) (int, string) {
	switch {
	case errors.Is(err, coach.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, coach.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, coach.ErrClassTypeNotFound), errors.Is(err, coach.ErrCoachNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, coach.ErrClassTypeExists):
		return http.StatusConflict, err.Error()
	}
	log.Printf("coach error: %v", err)
	return http.StatusInternalServerError, "internal error"
}
