package http

import (
	"net/http"

	"gym-manager/backend/internal/httpjson"
)

// APIError is the error envelope every handler and the auth middleware share.
type APIError struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	httpjson.Write(w, status, v)
}

func Fail(w http.ResponseWriter, status int, msg string) {
	httpjson.Write(w, status, APIError{Message: msg})
}
