package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

func TestRegisterLoginAndTweet(t *testing.T) {
	api := newTestAPI(t)

	alice := api.register("alice")
	assert.Equal(t, "alice", alice.Username)
	assert.Contains(t, alice.AvatarURL, "/media/avatars/")

	rec := api.json(http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    "ALICE@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login loginResponse
	decodeBody(t, rec, &login)
	assert.Equal(t, alice.AccountID, login.User.AccountID)
	require.NotEmpty(t, login.Tokens.AccessToken)

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Contains(t, cookies, auth.AccessCookie)
	require.Contains(t, cookies, auth.RefreshCookie)
	assert.True(t, cookies[auth.AccessCookie].HttpOnly)

	rec = api.json(http.MethodPost, "/api/v1/tweets", login.Tokens.AccessToken, map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.json(http.MethodGet, "/api/v1/tweets/user/"+alice.AccountID, login.Tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tweets []models.Tweet
	decodeBody(t, rec, &tweets)
	require.Len(t, tweets, 1)
	assert.Equal(t, "hello", tweets[0].Content)
	assert.Equal(t, alice.AccountID, tweets[0].OwnerID)
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice")

	avatar := multipartFile{field: "avatar", name: "avatar.png", content: "png"}
	fields := func(username, email, password string) map[string]string {
		return map[string]string{"fullName": "Someone", "username": username, "email": email, "password": password}
	}

	tests := []struct {
		name    string
		fields  map[string]string
		files   []multipartFile
		status  int
		message string
	}{
		{name: "missing avatar", fields: fields("bob", "bob@example.com", testPassword), status: http.StatusBadRequest, message: "avatar file is required"},
		{name: "missing fields", fields: map[string]string{"fullName": "Bob"}, files: []multipartFile{avatar}, status: http.StatusBadRequest, message: "email, password, username required"},
		{name: "short password", fields: fields("bob", "bob@example.com", "short"), files: []multipartFile{avatar}, status: http.StatusBadRequest},
		{name: "bad email", fields: fields("bob", "not-an-email", testPassword), files: []multipartFile{avatar}, status: http.StatusBadRequest},
		{name: "display name email", fields: fields("mallory", "Mallory <alice@example.com>", testPassword), files: []multipartFile{avatar}, status: http.StatusBadRequest, message: "invalid email address"},
		{name: "angle bracket email", fields: fields("mallory", "<mallory@example.com>", testPassword), files: []multipartFile{avatar}, status: http.StatusBadRequest, message: "invalid email address"},
		{name: "taken username", fields: fields("ALICE", "new@example.com", testPassword), files: []multipartFile{avatar}, status: http.StatusConflict, message: "user with email or username already exists"},
		{name: "taken email", fields: fields("carol", "alice@example.com", testPassword), files: []multipartFile{avatar}, status: http.StatusConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.multipart(http.MethodPost, "/api/v1/users/register", "", tc.fields, tc.files...)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.message != "" {
				assert.Equal(t, tc.message, errorMessage(t, rec))
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	for _, email := range []string{"alice@example.com", "a.b+tag@sub.example.com"} {
		assert.NoError(t, validateEmail(normalizeEmail(email)), email)
	}
	for _, email := range []string{"", "alice", "mallory <alice@example.com>", "<alice@example.com>", "alice@example.com, bob@example.com"} {
		assert.Error(t, validateEmail(normalizeEmail(email)), email)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice")

	for _, body := range []map[string]string{
		{"username": "alice", "password": "wrong-password"},
		{"username": "nobody", "password": testPassword},
	} {
		rec := api.json(http.MethodPost, "/api/v1/users/login", "", body)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid credentials", errorMessage(t, rec))
	}

	rec := api.json(http.MethodPost, "/api/v1/users/login", "", map[string]string{"password": testPassword})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	api := newTestAPI(t, func(d *Dependencies) { d.Limiter = denyLimiter{} })

	rec := api.json(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "alice", "password": testPassword})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSessionLifecycle(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice")

	rec := api.json(http.MethodGet, "/api/v1/users/current-user", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.json(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "alice", "password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	var login loginResponse
	decodeBody(t, rec, &login)

	rec = api.json(http.MethodGet, "/api/v1/users/current-user", login.Tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current models.Identity
	decodeBody(t, rec, &current)
	assert.Equal(t, "alice", current.Username)

	rec = api.json(http.MethodPost, "/api/v1/users/refresh-token", "", refreshRequest{RefreshToken: login.Tokens.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rotated tokensResponse
	decodeBody(t, rec, &rotated)
	assert.NotEqual(t, login.Tokens.RefreshToken, rotated.Tokens.RefreshToken)

	rec = api.json(http.MethodPost, "/api/v1/users/refresh-token", "", refreshRequest{RefreshToken: login.Tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.json(http.MethodPost, "/api/v1/users/logout", rotated.Tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.json(http.MethodPost, "/api/v1/users/refresh-token", "", refreshRequest{RefreshToken: rotated.Tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordAndUpdateAccount(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signUp("alice")
	api.register("bob")

	rec := api.json(http.MethodPost, "/api/v1/users/change-password", token, changePasswordRequest{OldPassword: "nope-nope", NewPassword: "brand-new-pass"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid old password", errorMessage(t, rec))

	rec = api.json(http.MethodPost, "/api/v1/users/change-password", token, changePasswordRequest{OldPassword: testPassword, NewPassword: "brand-new-pass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.json(http.MethodPost, "/api/v1/users/login", "", map[string]string{"username": "alice", "password": "brand-new-pass"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.json(http.MethodPatch, "/api/v1/users/update-account", token, updateAccountRequest{DisplayName: "Alice A", Email: "bob@example.com"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = api.json(http.MethodPatch, "/api/v1/users/update-account", token, updateAccountRequest{DisplayName: "Alice A", Email: "alice.a@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Identity
	decodeBody(t, rec, &updated)
	assert.Equal(t, "Alice A", updated.DisplayName)
	assert.Equal(t, "alice.a@example.com", updated.Email)
}

func TestChannelProfileAndHistory(t *testing.T) {
	api := newTestAPI(t)
	_, aliceToken := api.signUp("alice")
	_, bobToken := api.signUp("bob")
	video := api.publish(aliceToken, "Go Basics")

	rec := api.json(http.MethodGet, "/api/v1/videos/"+video.ID, bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.json(http.MethodGet, "/api/v1/users/history", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var history []map[string]any
	decodeBody(t, rec, &history)
	require.Len(t, history, 1)
	assert.Equal(t, video.ID, history[0]["_id"])

	rec = api.json(http.MethodGet, "/api/v1/users/c/alice", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.json(http.MethodGet, "/api/v1/users/c/nobody", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAvatarReplacesImage(t *testing.T) {
	api := newTestAPI(t)
	alice, token := api.signUp("alice")

	rec := api.multipart(http.MethodPatch, "/api/v1/users/avatar", token, nil, multipartFile{field: "avatar", name: "new.jpg", content: "jpg"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.Identity
	decodeBody(t, rec, &updated)
	assert.NotEqual(t, alice.AvatarURL, updated.AvatarURL)
	assert.Contains(t, updated.AvatarURL, ".jpg")

	rec = api.multipart(http.MethodPatch, "/api/v1/users/avatar", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
