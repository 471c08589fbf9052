package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xenn00/elearning-chat/internal/utils"
)

func TestWithRequestId(t *testing.T) {
	var seen string
	handler := WithRequestId(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestId(r)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "upstream-id", seen)
}

func TestJWTAuth(t *testing.T) {
	key := []byte("middleware-key")
	verifier := utils.NewTokenVerifier(key, nil)

	var userID string
	handler := JWTAuth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ = GetUserId(r)
	}))

	valid, err := utils.IssueAccessToken("7", key, time.Hour)
	assert.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		user   string
	}{
		{name: "valid", header: "Bearer " + valid, status: http.StatusOK, user: "7"},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer abc.def.ghi", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.user, userID)
		})
	}
}

func TestAccessLog_PassesThroughStatus(t *testing.T) {
	handler := WithRequestId(AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brew", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
