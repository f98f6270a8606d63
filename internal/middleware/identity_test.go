package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

type authenticatorFunc func(r *http.Request) (models.Identity, error)

func (f authenticatorFunc) Authenticate(r *http.Request) (models.Identity, error) {
	return f(r)
}

func identityEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(identity.AccountID))
	})
}

func TestRequireIdentityAttachesIdentity(t *testing.T) {
	gate := authenticatorFunc(func(r *http.Request) (models.Identity, error) {
		return models.Identity{AccountID: "alice-id", Username: "alice"}, nil
	})
	rec := httptest.NewRecorder()
	RequireIdentity(gate)(identityEcho(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice-id", rec.Body.String())
}

func TestRequireIdentityRejects(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{name: "unauthorized", err: auth.ErrUnauthorized, status: http.StatusUnauthorized, body: "unauthorized request"},
		{name: "expired", err: auth.ErrTokenExpired, status: http.StatusUnauthorized},
		{name: "internal", err: apperr.Internalf(errors.New("db down"), "load account"), status: http.StatusInternalServerError, body: "internal server error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gate := authenticatorFunc(func(r *http.Request) (models.Identity, error) {
				return models.Identity{}, tc.err
			})
			rec := httptest.NewRecorder()
			RequireIdentity(gate)(identityEcho(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			require.Equal(t, tc.status, rec.Code)
			var payload map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
			assert.NotEmpty(t, payload["error"])
			if tc.body != "" {
				assert.Equal(t, tc.body, payload["error"])
			}
			assert.NotContains(t, payload["error"], "db down")
		})
	}
}

func TestOptionalIdentity(t *testing.T) {
	calls := 0
	gate := authenticatorFunc(func(r *http.Request) (models.Identity, error) {
		calls++
		if r.Header.Get("Authorization") == "Bearer good" {
			return models.Identity{AccountID: "bob-id"}, nil
		}
		return models.Identity{}, auth.ErrTokenInvalid
	})
	handler := OptionalIdentity(gate)(identityEcho(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, calls, "anonymous requests skip the gate")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "bob-id", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code, "bad credentials degrade to anonymous")
}
