package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

type ErrorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

func NewErrorResponse(errType string, message string) *ErrorResponse {
	return &ErrorResponse{
		Type: errType,
		Msg:  message,
	}
}

func SetResponse[T any](obj *T, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)

	if err := json.NewEncoder(w).Encode(obj); err != nil {
		return err
	}

	return nil
}

func SetErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := NewErrorResponse(errType, err.Error())
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		return encodeErr
	}

	return nil
}

// SetWebErrorResponse writes err with the status of the WebError it wraps, or 500.
func SetWebErrorResponse(errType string, err error, w http.ResponseWriter) error {
	var webErr *eventmodels.WebError
	if errors.As(err, &webErr) {
		return SetErrorResponse(errType, webErr.StatusCode, err, w)
	}

	return SetErrorResponse(errType, http.StatusInternalServerError, err, w)
}
