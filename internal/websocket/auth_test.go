package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/elearning-chat/internal/entity"
	app_error "github.com/xenn00/elearning-chat/internal/errors"
	"github.com/xenn00/elearning-chat/internal/utils"
)

var testSigningKey = []byte("ws-test-key")

type stubUsers map[string]*entity.User

func (s stubUsers) ResolveUser(_ context.Context, userID string) (*entity.User, *app_error.AppError) {
	user, ok := s[userID]
	if !ok || !user.IsActive {
		return nil, app_error.NewAppError(http.StatusNotFound, "cannot find user", "user-id")
	}
	return user, nil
}

func newTestAuthenticator() *Authenticator {
	users := stubUsers{
		"1": {ID: "1", IsActive: true},
		"2": {ID: "2", IsActive: false},
	}
	return NewAuthenticator(utils.NewTokenVerifier(testSigningKey, nil), users)
}

func issue(t *testing.T, userID string, ttl time.Duration) string {
	t.Helper()
	token, err := utils.IssueAccessToken(userID, testSigningKey, ttl)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	auth := newTestAuthenticator()

	wrongKey, err := utils.IssueAccessToken("1", []byte("someone-else"), time.Hour)
	require.NoError(t, err)
	valid := issue(t, "1", time.Hour)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString(testSigningKey)
	require.NoError(t, err)

	tests := []struct {
		name     string
		target   string
		header   string
		wantUser string
	}{
		{name: "valid query token", target: "/socket/chat/r1/?token=" + valid, wantUser: "1"},
		{name: "valid bearer header", target: "/socket/chat/r1/", header: "Bearer " + valid, wantUser: "1"},
		{name: "missing token", target: "/socket/chat/r1/"},
		{name: "expired", target: "/socket/chat/r1/?token=" + issue(t, "1", -time.Minute)},
		{name: "tampered", target: "/socket/chat/r1/?token=" + valid[:len(valid)-3] + "abc"},
		{name: "wrong key", target: "/socket/chat/r1/?token=" + wrongKey},
		{name: "without exp", target: "/socket/chat/r1/?token=" + noExp},
		{name: "unknown user", target: "/socket/chat/r1/?token=" + issue(t, "404", time.Hour)},
		{name: "inactive user", target: "/socket/chat/r1/?token=" + issue(t, "2", time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			identity, err := auth.Authenticate(req)
			if tt.wantUser == "" {
				assert.ErrorIs(t, err, ErrUnauthenticated)
				assert.True(t, identity.IsAnonymous())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, identity.UserID)
		})
	}
}

func TestGetTokenFromRequest_QueryWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/socket/chat/r1/?token=from-query", nil)
	req.Header.Set("Authorization", "Bearer from-header")

	assert.Equal(t, "from-query", getTokenFromRequest(req))
}
