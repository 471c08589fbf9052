package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
	"github.com/xenn00/elearning-chat/internal/utils"
)

type claimsKey string

const UserClaimsKey claimsKey = "userClaims"

// JWTAuth requires a bearer access token and stores its subject under
// UserClaimsKey.
func JWTAuth(verifier *utils.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAppError(w, app_error.NewAppError(http.StatusUnauthorized, "Missing Authorization header", "auth"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeAppError(w, app_error.NewAppError(http.StatusUnauthorized, "Invalid Authorization header format", "auth"))
				return
			}

			claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("jwt verify failed")
				writeAppError(w, app_error.NewAppError(http.StatusUnauthorized, "Invalid or expired token", "auth"))
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims.SubjectID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserId returns the subject stored by JWTAuth.
func GetUserId(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(UserClaimsKey).(string)
	return userID, ok && userID != ""
}

func writeAppError(w http.ResponseWriter, appErr *app_error.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	_ = appErr.JSON(w)
}
