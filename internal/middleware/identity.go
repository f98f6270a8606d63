package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// Authenticator resolves the identity behind a request.
type Authenticator interface {
	Authenticate(r *http.Request) (models.Identity, error)
}

// RequireIdentity rejects unauthenticated requests with 401 and stores the
// caller's identity on the request context otherwise.
func RequireIdentity(gate Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := gate.Authenticate(r)
			if err != nil {
				kind := apperr.KindOf(err)
				logger := logging.FromContext(r.Context())
				if kind == apperr.Internal {
					logger.Error("authenticate request", slog.String("error", err.Error()))
				} else {
					logger.Debug("rejected credentials", slog.String("reason", kind.String()))
				}
				writeError(w, apperr.HTTPStatus(kind), apperr.Message(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r, identity)))
		})
	}
}

// OptionalIdentity attaches the caller's identity when valid credentials are
// present and serves anonymous requests unchanged.
func OptionalIdentity(gate Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.AccessTokenFromRequest(r) == "" {
				next.ServeHTTP(w, r)
				return
			}
			identity, err := gate.Authenticate(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r, identity)))
		})
	}
}

func withIdentity(r *http.Request, identity models.Identity) context.Context {
	ctx := auth.WithIdentity(r.Context(), identity)
	logger := logging.FromContext(ctx).With(slog.String("account_id", identity.AccountID))
	return logging.WithLogger(ctx, logger)
}
