package handlers

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/elearning-chat/internal/dtos"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
	"github.com/xenn00/elearning-chat/internal/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// DecodeJSON reads the request body into dst.
func DecodeJSON(r *http.Request, dst any) *app_error.AppError {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}
	return nil
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request) *app_error.AppError

func WrapHandler(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			reqID := middleware.GetRequestId(r)
			if err.Code >= http.StatusInternalServerError {
				log.Error().Str("request_id", reqID).Str("field", err.Field).Msg(err.Message)
			} else {
				log.Debug().Str("request_id", reqID).Str("field", err.Field).Msg(err.Message)
			}

			WriteJSON(w, err.Code, dtos.Response[any]{
				Message: "Error occur",
				Errors: &dtos.ErrorResponse{
					Code:    err.Code,
					Message: err.Message,
					Field:   err.Field,
					Details: err.Details,
				},
				RequestID: reqID,
			})
		}
	}
}

func CreateResponse[T any](message string, data T, requestId string) dtos.Response[T] {
	return dtos.Response[T]{
		Message:   message,
		Data:      data,
		RequestID: requestId,
	}
}
