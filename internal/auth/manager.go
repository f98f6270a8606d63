package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

var (
	// ErrTokenInvalid indicates a bad signature or otherwise unverifiable token.
	ErrTokenInvalid = apperr.New(apperr.Unauthorized, "invalid token")
	// ErrTokenExpired indicates the token is past its expiry instant.
	ErrTokenExpired = apperr.New(apperr.Unauthorized, "token expired")
	// ErrTokenMalformed indicates the input is not a structurally valid token.
	ErrTokenMalformed = apperr.New(apperr.Unauthorized, "malformed token")
	// ErrSessionRevoked indicates the refresh token is no longer the one stored for the account.
	ErrSessionRevoked = apperr.New(apperr.SessionRevoked, "refresh token is expired or used")
)

// Config carries the signing secrets and lifetimes of issued tokens.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Validate reports whether the configuration can sign tokens.
func (c Config) Validate() error {
	switch {
	case c.AccessSecret == "" || c.RefreshSecret == "":
		return errors.New("auth: access and refresh secrets must be set")
	case c.AccessSecret == c.RefreshSecret:
		return errors.New("auth: access and refresh secrets must differ")
	case c.AccessTTL <= 0 || c.RefreshTTL <= 0:
		return errors.New("auth: token lifetimes must be positive")
	}
	return nil
}

// AccountStore is the slice of account persistence the manager relies on.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (models.Account, error)
	SetRefreshToken(ctx context.Context, accountID, token string) error
}

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	AccountID   string `json:"accountId"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	AccountID string `json:"accountId"`
	jwt.RegisteredClaims
}

// Manager issues, verifies, rotates and revokes access/refresh token pairs.
// Only the most recently issued refresh token of an account is trusted, so a
// second login supersedes the first session.
type Manager struct {
	cfg      Config
	accounts AccountStore
	now      func() time.Time
}

// Option customises a Manager.
type Option func(*Manager)

// WithNowFunc overrides the clock used for issuing and verifying tokens.
func WithNowFunc(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager constructs a Manager. It panics when accounts is nil.
func NewManager(cfg Config, accounts AccountStore, opts ...Option) *Manager {
	if accounts == nil {
		panic("auth: account store must not be nil")
	}
	m := &Manager{
		cfg:      cfg,
		accounts: accounts,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IssuePair signs a new token pair for the account and stores the refresh
// token on it, superseding any earlier one.
func (m *Manager) IssuePair(ctx context.Context, accountID string) (models.SessionTokens, error) {
	return m.issue(ctx, accountID, "login")
}

func (m *Manager) issue(ctx context.Context, accountID, reason string) (models.SessionTokens, error) {
	if accountID == "" {
		return models.SessionTokens{}, apperr.New(apperr.InvalidArgument, "account id must be provided")
	}

	account, err := m.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.SessionTokens{}, apperr.New(apperr.NotFound, "account not found")
		}
		return models.SessionTokens{}, apperr.Internalf(err, "load account")
	}

	tokens, err := m.sign(account)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.accounts.SetRefreshToken(ctx, account.ID, tokens.RefreshToken); err != nil {
		return models.SessionTokens{}, apperr.Internalf(err, "store refresh token")
	}

	metrics.RecordTokensIssued(reason)
	return tokens, nil
}

func (m *Manager) sign(account models.Account) (models.SessionTokens, error) {
	now := m.now().UTC()
	accessExpires := now.Add(m.cfg.AccessTTL)
	refreshExpires := now.Add(m.cfg.RefreshTTL)

	access := AccessClaims{
		AccountID:   account.ID,
		Email:       account.Email,
		Username:    account.Username,
		DisplayName: account.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpires),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString([]byte(m.cfg.AccessSecret))
	if err != nil {
		return models.SessionTokens{}, apperr.Internalf(err, "sign access token")
	}

	refresh := refreshClaims{
		AccountID: account.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExpires),
		},
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString([]byte(m.cfg.RefreshSecret))
	if err != nil {
		return models.SessionTokens{}, apperr.Internalf(err, "sign refresh token")
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpires,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpires,
	}, nil
}

// VerifyAccess validates an access token and returns its claims.
func (m *Manager) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(token, claims, m.cfg.AccessSecret); err != nil {
		metrics.RecordTokenRejected("access", rejectionReason(err))
		return nil, err
	}
	if claims.AccountID == "" {
		metrics.RecordTokenRejected("access", "invalid")
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token and returns the account id it names.
func (m *Manager) VerifyRefresh(token string) (string, error) {
	claims := &refreshClaims{}
	if err := m.parse(token, claims, m.cfg.RefreshSecret); err != nil {
		metrics.RecordTokenRejected("refresh", rejectionReason(err))
		return "", err
	}
	if claims.AccountID == "" {
		metrics.RecordTokenRejected("refresh", "invalid")
		return "", ErrTokenInvalid
	}
	return claims.AccountID, nil
}

func (m *Manager) parse(token string, claims jwt.Claims, secret string) error {
	if token == "" {
		return ErrTokenMalformed
	}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}

// Rotate exchanges the account's current refresh token for a new pair. A token
// that verifies but is not the stored one fails with ErrSessionRevoked.
// Two concurrent rotations of the same token may both succeed; the later
// write wins.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	accountID, err := m.VerifyRefresh(refreshToken)
	if err != nil {
		return models.SessionTokens{}, err
	}

	account, err := m.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.RecordTokenRejected("refresh", "unknown_account")
			return models.SessionTokens{}, ErrTokenInvalid
		}
		return models.SessionTokens{}, apperr.Internalf(err, "load account")
	}

	if account.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(account.RefreshToken), []byte(refreshToken)) != 1 {
		metrics.RecordTokenRejected("refresh", "revoked")
		return models.SessionTokens{}, ErrSessionRevoked
	}

	return m.issue(ctx, account.ID, "rotate")
}

// Revoke clears the account's stored refresh token.
func (m *Manager) Revoke(ctx context.Context, accountID string) error {
	if err := m.accounts.SetRefreshToken(ctx, accountID, ""); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.New(apperr.NotFound, "account not found")
		}
		return apperr.Internalf(err, "clear refresh token")
	}
	metrics.SessionsRevokedTotal.Inc()
	return nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
