package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

const (
	// AccessCookie carries the access token when browsers talk to the API.
	AccessCookie = "accessToken"
	// RefreshCookie carries the refresh token.
	RefreshCookie = "refreshToken"
)

// ErrUnauthorized is returned by the gate for every authentication failure.
var ErrUnauthorized = apperr.New(apperr.Unauthorized, "unauthorized request")

// AccessVerifier validates access tokens.
type AccessVerifier interface {
	VerifyAccess(token string) (*AccessClaims, error)
}

// AccountLookup loads accounts by id.
type AccountLookup interface {
	FindByID(ctx context.Context, id string) (models.Account, error)
}

// Gate resolves the calling identity of a request.
type Gate struct {
	Tokens   AccessVerifier
	Accounts AccountLookup
}

// NewGate constructs a Gate.
func NewGate(tokens AccessVerifier, accounts AccountLookup) *Gate {
	return &Gate{Tokens: tokens, Accounts: accounts}
}

// Authenticate verifies the request's access token and loads the account it
// names. The accessToken cookie takes precedence over the Authorization header.
func (g *Gate) Authenticate(r *http.Request) (models.Identity, error) {
	token := AccessTokenFromRequest(r)
	if token == "" {
		return models.Identity{}, ErrUnauthorized
	}

	claims, err := g.Tokens.VerifyAccess(token)
	if err != nil {
		return models.Identity{}, err
	}

	account, err := g.Accounts.FindByID(r.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Identity{}, ErrUnauthorized
		}
		return models.Identity{}, apperr.Internalf(err, "load account")
	}

	return account.Identity(), nil
}

// AccessTokenFromRequest extracts the access token from the cookie or the
// bearer header.
func AccessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AccessCookie); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value)
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
