package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

// CookieSecurity decides whether session cookies carry the Secure flag.
type CookieSecurity string

const (
	CookieSecureAuto   CookieSecurity = "auto"
	CookieSecureAlways CookieSecurity = "always"
	CookieSecureNever  CookieSecurity = "never"
)

func (c CookieSecurity) secure(r *http.Request) bool {
	switch c {
	case CookieSecureAlways:
		return true
	case CookieSecureNever:
		return false
	}
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func setSessionCookies(w http.ResponseWriter, r *http.Request, mode CookieSecurity, tokens models.SessionTokens) {
	secure := mode.secure(r)
	http.SetCookie(w, sessionCookie(auth.AccessCookie, tokens.AccessToken, tokens.AccessExpiresAt, secure))
	http.SetCookie(w, sessionCookie(auth.RefreshCookie, tokens.RefreshToken, tokens.RefreshExpiresAt, secure))
}

func clearSessionCookies(w http.ResponseWriter, r *http.Request, mode CookieSecurity) {
	secure := mode.secure(r)
	for _, name := range []string{auth.AccessCookie, auth.RefreshCookie} {
		cookie := sessionCookie(name, "", time.Unix(0, 0), secure)
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
	}
}

func sessionCookie(name, value string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}
