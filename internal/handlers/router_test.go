package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/social"
	"github.com/vidtube/backend/internal/storage"
	"github.com/vidtube/backend/internal/views"
)

const testPassword = "correct-horse"

type testAPI struct {
	t       *testing.T
	handler http.Handler
	store   repositories.Store
}

type apiOption func(*Dependencies)

func newTestAPI(t *testing.T, opts ...apiOption) *testAPI {
	t.Helper()

	store := repositories.NewMemoryStore().Store()
	manager := auth.NewManager(auth.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}, store.Accounts)

	disk, err := storage.NewDiskStorage(t.TempDir(), "/media")
	require.NoError(t, err)

	deps := Dependencies{
		Store:          store,
		Sessions:       manager,
		Gate:           auth.NewGate(manager, store.Accounts),
		Media:          media.NewUploader(disk, nil, nil),
		Views:          views.NewEngine(store),
		Graph:          social.NewGraph(store),
		Cookies:        CookieSecureNever,
		MaxUploadBytes: 1 << 20,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	mux := http.NewServeMux()
	RegisterRoutes(mux, deps)
	return &testAPI{t: t, handler: mux, store: store}
}

type multipartFile struct {
	field, name, content string
}

func (a *testAPI) multipart(method, path, token string, fields map[string]string, files ...multipartFile) *httptest.ResponseRecorder {
	a.t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(a.t, writer.WriteField(name, value))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(a.t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(a.t, err)
	}
	require.NoError(a.t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return a.serve(req, token)
}

func (a *testAPI) json(method, path, token string, payload any) *httptest.ResponseRecorder {
	a.t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(a.t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return a.serve(req, token)
}

func (a *testAPI) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) register(username string) models.Identity {
	a.t.Helper()
	rec := a.multipart(http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"fullName": username + " Example",
		"email":    username + "@example.com",
		"username": username,
		"password": testPassword,
	}, multipartFile{field: "avatar", name: "avatar.png", content: "png"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	var identity models.Identity
	decodeBody(a.t, rec, &identity)
	return identity
}

func (a *testAPI) login(username string) string {
	a.t.Helper()
	rec := a.json(http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"username": username,
		"password": testPassword,
	})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp loginResponse
	decodeBody(a.t, rec, &resp)
	return resp.Tokens.AccessToken
}

func (a *testAPI) signUp(username string) (models.Identity, string) {
	a.t.Helper()
	identity := a.register(username)
	return identity, a.login(username)
}

func (a *testAPI) publish(token, title string) models.Video {
	a.t.Helper()
	rec := a.multipart(http.MethodPost, "/api/v1/videos", token, map[string]string{
		"title":       title,
		"description": title + " description",
	}, multipartFile{field: "videoFile", name: "clip.mp4", content: "mp4"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	var video models.Video
	decodeBody(a.t, rec, &video)
	return video
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	decodeBody(t, rec, &resp)
	return resp.Error
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) bool { return false }
