package utils

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies request failures. Every kind is recovered at the
// request boundary; none is fatal to the process.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NotFound"
	KindInvalidInput      ErrorKind = "InvalidInput"
	KindItemUnavailable   ErrorKind = "ItemUnavailable"
	KindInvalidTransition ErrorKind = "InvalidTransition"
	KindConflict          ErrorKind = "Conflict"
)

func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindItemUnavailable:
		return http.StatusUnprocessableEntity
	case KindInvalidTransition, KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NotFoundf(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidInputf(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func ItemUnavailablef(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindItemUnavailable, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransitionf(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}
