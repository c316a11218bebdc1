package eventmodels

import (
	"errors"
	"net/http"
)

type WebError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *WebError) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}

	return e.Message
}

func (e *WebError) Unwrap() error {
	return e.Cause
}

func NewWebError(statusCode int, message string, cause error) *WebError {
	return &WebError{
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// ToWebError maps pipeline errors to an HTTP status. Bad input is a 400, everything else a 500.
func ToWebError(message string, err error) *WebError {
	var webErr *WebError
	if errors.As(err, &webErr) {
		return webErr
	}

	var insufficientErr *InsufficientDataError
	var alignmentErr *DataAlignmentError
	var paramErr *InvalidParameterError
	if errors.As(err, &insufficientErr) || errors.As(err, &alignmentErr) || errors.As(err, &paramErr) {
		return NewWebError(http.StatusBadRequest, message, err)
	}

	return NewWebError(http.StatusInternalServerError, message, err)
}
