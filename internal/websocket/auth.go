package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/xenn00/elearning-chat/internal/entity"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
	"github.com/xenn00/elearning-chat/internal/utils"
)

var ErrUnauthenticated = errors.New("ws: unauthenticated")

// Identity is who a session speaks for. The zero value is anonymous.
type Identity struct {
	UserID string
}

func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

type UserResolver interface {
	ResolveUser(ctx context.Context, userID string) (*entity.User, *app_error.AppError)
}

// Authenticator turns a handshake request into an Identity. It never writes
// to the response or mutates state.
type Authenticator struct {
	verifier *utils.TokenVerifier
	users    UserResolver
}

func NewAuthenticator(verifier *utils.TokenVerifier, users UserResolver) *Authenticator {
	return &Authenticator{verifier: verifier, users: users}
}

// Authenticate returns the anonymous identity together with an error wrapping
// ErrUnauthenticated whenever the token is absent, invalid, expired or names
// an unknown or inactive user.
func (a *Authenticator) Authenticate(r *http.Request) (Identity, error) {
	claims, err := a.verifier.Verify(getTokenFromRequest(r))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	userID := claims.SubjectID()
	user, appErr := a.users.ResolveUser(r.Context(), userID)
	if appErr != nil {
		return Identity{}, fmt.Errorf("%w: user %s: %s", ErrUnauthenticated, userID, appErr.Message)
	}

	return Identity{UserID: user.ID}, nil
}

func getTokenFromRequest(r *http.Request) string {
	// query parameter, since browsers cannot set headers on a websocket handshake
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}

	return ""
}
