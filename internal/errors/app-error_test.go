package app_error

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Items []struct {
		URL string `json:"url" validate:"url"`
	} `json:"items" validate:"dive"`
}

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

func TestFromValidation_CollectsFieldPaths(t *testing.T) {
	s := sample{}
	s.Items = append(s.Items, struct {
		URL string `json:"url" validate:"url"`
	}{URL: "not a url"})

	err := newValidate().Struct(s)
	require.Error(t, err)

	appErr := FromValidation(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.True(t, appErr.IsValidation())
	assert.Equal(t, "required", appErr.Details["name"])
	assert.Equal(t, "url", appErr.Details["items[0].url"])
	assert.Equal(t, "name", appErr.Field)
}

func TestFromValidation_PlainError(t *testing.T) {
	appErr := FromValidation(errors.New("boom"))

	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "boom", appErr.Message)
	assert.Empty(t, appErr.Details)
}

func TestNewValidationError(t *testing.T) {
	appErr := NewValidationError("room not found", "chat_group")

	assert.True(t, appErr.IsValidation())
	assert.Equal(t, "room not found", appErr.Error())
	assert.Equal(t, map[string]string{"chat_group": "room not found"}, appErr.Details)
}

func TestIsValidation_NonClientErrors(t *testing.T) {
	var nilErr *AppError
	assert.False(t, nilErr.IsValidation())
	assert.False(t, NewAppError(http.StatusInternalServerError, "db down", "db-error").IsValidation())
}
