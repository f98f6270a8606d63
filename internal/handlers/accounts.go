package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

const minPasswordLength = 8

var (
	errInvalidCredentials = apperr.New(apperr.Unauthorized, "invalid credentials")
	errAccountExists      = apperr.New(apperr.Conflict, "user with email or username already exists")
	errWrongPassword      = apperr.New(apperr.InvalidArgument, "invalid old password")
)

// AccountHandler implements registration, sessions and profile endpoints.
type AccountHandler struct {
	Accounts       repositories.AccountRepository
	Sessions       SessionManager
	Media          MediaStore
	Views          ViewEngine
	Cookies        CookieSecurity
	MaxUploadBytes int64
	NowFunc        func() time.Time
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateAccountRequest struct {
	DisplayName string `json:"fullName"`
	Email       string `json:"email"`
}

type loginResponse struct {
	User   models.Identity      `json:"user"`
	Tokens models.SessionTokens `json:"tokens"`
}

type tokensResponse struct {
	Tokens models.SessionTokens `json:"tokens"`
}

// Register handles POST /api/v1/users/register. The body is multipart with
// fullName, email, username, password, an avatar file and an optional coverImage.
func (h AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
		respondError(ctx, w, err)
		return
	}

	displayName := strings.TrimSpace(r.FormValue("fullName"))
	email := normalizeEmail(r.FormValue("email"))
	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	password := r.FormValue("password")

	if err := required(map[string]string{"fullName": displayName, "email": email, "username": username, "password": password}); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := validateEmail(email); err != nil {
		respondError(ctx, w, err)
		return
	}
	if len(password) < minPasswordLength {
		respondError(ctx, w, apperr.Newf(apperr.InvalidArgument, "password must be at least %d characters", minPasswordLength))
		return
	}

	avatarFile := formFile(r, "avatar")
	if avatarFile == nil {
		respondError(ctx, w, apperr.New(apperr.InvalidArgument, "avatar file is required"))
		return
	}

	if err := h.ensureAvailable(r, username, email); err != nil {
		respondError(ctx, w, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, w, apperr.Internalf(err, "hash password"))
		return
	}

	avatarURL, err := h.Media.Save(ctx, media.KindAvatar, avatarFile)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var coverURL string
	if coverFile := formFile(r, "coverImage"); coverFile != nil {
		coverURL, err = h.Media.Save(ctx, media.KindCoverImage, coverFile)
		if err != nil {
			h.Media.Discard(ctx, avatarURL)
			respondError(ctx, w, err)
			return
		}
	}

	now := h.now()
	account := models.Account{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		DisplayName:   displayName,
		PasswordHash:  string(hashed),
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.Accounts.Create(ctx, account); err != nil {
		h.Media.Discard(ctx, avatarURL, coverURL)
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, errAccountExists)
			return
		}
		respondError(ctx, w, apperr.Internalf(err, "create account"))
		return
	}

	logging.FromContext(ctx).Info("account registered", "accountId", account.ID, "username", account.Username)
	respondJSON(ctx, w, http.StatusCreated, account.Identity())
}

func (h AccountHandler) ensureAvailable(r *http.Request, username, email string) error {
	if _, err := h.Accounts.FindByUsername(r.Context(), username); err == nil {
		return errAccountExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return apperr.Internalf(err, "check username")
	}
	if _, err := h.Accounts.FindByEmail(r.Context(), email); err == nil {
		return errAccountExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return apperr.Internalf(err, "check email")
	}
	return nil
}

// Login handles POST /api/v1/users/login with either an email or a username.
func (h AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Email == "" && req.Username == "" {
		respondError(ctx, w, apperr.New(apperr.InvalidArgument, "username or email is required"))
		return
	}
	if req.Password == "" {
		respondError(ctx, w, apperr.New(apperr.InvalidArgument, "password is required"))
		return
	}

	var (
		account models.Account
		err     error
	)
	if req.Username != "" {
		account, err = h.Accounts.FindByUsername(ctx, req.Username)
	} else {
		account, err = h.Accounts.FindByEmail(ctx, req.Email)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("login for unknown account", "username", req.Username, "email", req.Email)
			respondError(ctx, w, errInvalidCredentials)
			return
		}
		respondError(ctx, w, apperr.Internalf(err, "load account"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "accountId", account.ID)
		respondError(ctx, w, errInvalidCredentials)
		return
	}

	tokens, err := h.Sessions.IssuePair(ctx, account.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setSessionCookies(w, r, h.Cookies, tokens)
	respondJSON(ctx, w, http.StatusOK, loginResponse{User: account.Identity(), Tokens: tokens})
}

// Logout handles POST /api/v1/users/logout.
func (h AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Sessions.Revoke(ctx, caller.AccountID); err != nil {
		respondError(ctx, w, err)
		return
	}

	clearSessionCookies(w, r, h.Cookies)
	respondJSON(ctx, w, http.StatusOK, messageResponse{Message: "user logged out"})
}

// RefreshToken handles POST /api/v1/users/refresh-token. The refresh token is
// read from its cookie, falling back to the JSON body.
func (h AccountHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := ""
	if cookie, err := r.Cookie(auth.RefreshCookie); err == nil {
		token = strings.TrimSpace(cookie.Value)
	}
	if token == "" && r.ContentLength != 0 {
		var req refreshRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(ctx, w, err)
			return
		}
		token = strings.TrimSpace(req.RefreshToken)
	}
	if token == "" {
		respondError(ctx, w, auth.ErrUnauthorized)
		return
	}

	tokens, err := h.Sessions.Rotate(ctx, token)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setSessionCookies(w, r, h.Cookies, tokens)
	respondJSON(ctx, w, http.StatusOK, tokensResponse{Tokens: tokens})
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := required(map[string]string{"oldPassword": req.OldPassword, "newPassword": req.NewPassword}); err != nil {
		respondError(ctx, w, err)
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		respondError(ctx, w, apperr.Newf(apperr.InvalidArgument, "password must be at least %d characters", minPasswordLength))
		return
	}

	account, err := h.Accounts.FindByID(ctx, caller.AccountID)
	if err != nil {
		respondError(ctx, w, lookupError(err, "account"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.OldPassword)); err != nil {
		respondError(ctx, w, errWrongPassword)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, w, apperr.Internalf(err, "hash password"))
		return
	}
	account.PasswordHash = string(hashed)
	account.UpdatedAt = h.now()

	if err := h.Accounts.Update(ctx, account); err != nil {
		respondError(ctx, w, writeError(err, "account"))
		return
	}
	respondJSON(ctx, w, http.StatusOK, messageResponse{Message: "password changed successfully"})
}

// CurrentUser handles GET /api/v1/users/current-user.
func (h AccountHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, caller)
}

// UpdateAccount handles PATCH /api/v1/users/update-account.
func (h AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req updateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.Email = normalizeEmail(req.Email)
	if err := required(map[string]string{"fullName": req.DisplayName, "email": req.Email}); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := validateEmail(req.Email); err != nil {
		respondError(ctx, w, err)
		return
	}

	account, err := h.Accounts.FindByID(ctx, caller.AccountID)
	if err != nil {
		respondError(ctx, w, lookupError(err, "account"))
		return
	}
	account.DisplayName = req.DisplayName
	account.Email = req.Email
	account.UpdatedAt = h.now()

	if err := h.Accounts.Update(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, apperr.New(apperr.Conflict, "email already in use"))
			return
		}
		respondError(ctx, w, writeError(err, "account"))
		return
	}
	respondJSON(ctx, w, http.StatusOK, account.Identity())
}

// UpdateAvatar handles PATCH /api/v1/users/avatar.
func (h AccountHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", media.KindAvatar, func(a *models.Account) *string { return &a.AvatarURL })
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image.
func (h AccountHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", media.KindCoverImage, func(a *models.Account) *string { return &a.CoverImageURL })
}

func (h AccountHandler) replaceImage(w http.ResponseWriter, r *http.Request, field string, kind media.Kind, slot func(*models.Account) *string) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
		respondError(ctx, w, err)
		return
	}
	file := formFile(r, field)
	if file == nil {
		respondError(ctx, w, apperr.Newf(apperr.InvalidArgument, "%s file is required", field))
		return
	}

	account, err := h.Accounts.FindByID(ctx, caller.AccountID)
	if err != nil {
		respondError(ctx, w, lookupError(err, "account"))
		return
	}

	location, err := h.Media.Save(ctx, kind, file)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	current := slot(&account)
	previous := *current
	*current = location
	account.UpdatedAt = h.now()

	if err := h.Accounts.Update(ctx, account); err != nil {
		h.Media.Discard(ctx, location)
		respondError(ctx, w, writeError(err, "account"))
		return
	}

	h.Media.Discard(ctx, previous)
	respondJSON(ctx, w, http.StatusOK, account.Identity())
}

// ChannelProfile handles GET /api/v1/users/c/{username}.
func (h AccountHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := strings.ToLower(strings.TrimSpace(r.PathValue("username")))
	if username == "" {
		respondError(ctx, w, apperr.New(apperr.InvalidArgument, "username is missing"))
		return
	}

	profile, err := h.Views.ChannelProfile(ctx, viewerID(r), username)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, profile)
}

// WatchHistory handles GET /api/v1/users/history.
func (h AccountHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	history, err := h.Views.WatchHistory(ctx, caller.AccountID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, history)
}

func (h AccountHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail accepts a bare address only, without display name or angle
// brackets.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.New(apperr.InvalidArgument, "invalid email address")
	}
	return nil
}
