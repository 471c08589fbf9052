package app_error

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type AppError struct {
	Code    int               `json:"-"`
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
	Details map[string]string `json:"errors,omitempty"`
}

func (e AppError) Error() string {
	return e.Message
}

func (e AppError) JSON(w http.ResponseWriter) error {
	return json.NewEncoder(w).Encode(e)
}

// IsValidation reports whether the error was caused by bad client input.
func (e *AppError) IsValidation() bool {
	return e != nil && e.Code == http.StatusBadRequest
}

func NewAppError(code int, msg, field string) *AppError {
	return &AppError{
		Code:    code,
		Message: msg,
		Field:   field,
	}
}

func NewValidationError(msg, field string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: msg,
		Field:   field,
		Details: map[string]string{field: msg},
	}
}

// FromValidation turns validator.ValidationErrors into a 400 AppError keyed by
// the json path of every failing field (e.g. "files[0].url": "url").
func FromValidation(err error) *AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewAppError(http.StatusBadRequest, err.Error(), "validation")
	}

	details := make(map[string]string, len(verrs))
	first := ""
	for _, fe := range verrs {
		key := fieldPath(fe.Namespace())
		if first == "" {
			first = key
		}
		details[key] = fe.Tag()
	}

	return &AppError{
		Code:    http.StatusBadRequest,
		Message: "invalid fields",
		Field:   first,
		Details: details,
	}
}

// drop the top-level struct name from the namespace
func fieldPath(ns string) string {
	if idx := strings.Index(ns, "."); idx != -1 {
		return ns[idx+1:]
	}
	return ns
}
