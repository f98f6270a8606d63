package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}

// respondError maps err onto its status and client-safe message. Server
// failures log at error level and client failures at warn level.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	logger := logging.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", slog.Int("status", status), slog.String("error", err.Error()))
	} else {
		logger.Warn("request returned client error", slog.Int("status", status), slog.String("kind", kind.String()), slog.String("error", err.Error()))
	}

	respondJSON(ctx, w, status, errorResponse{Error: apperr.Message(err)})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.InvalidArgument, "request body is required")
		}
		return apperr.Wrap(err, apperr.InvalidArgument, "invalid request body")
	}
	return nil
}

func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Newf(apperr.InvalidArgument, "upload exceeds %d bytes", maxBytes)
		}
		return apperr.Wrap(err, apperr.InvalidArgument, "invalid multipart body")
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// formFile returns the first file under field, or nil when absent.
func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func pathID(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	if _, err := uuid.Parse(raw); err != nil {
		return "", apperr.Newf(apperr.InvalidArgument, "invalid %s", name)
	}
	return raw, nil
}

// identity returns the caller attached by the identity middleware.
func identity(r *http.Request) (models.Identity, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return models.Identity{}, auth.ErrUnauthorized
	}
	return id, nil
}

// viewerID is the caller's account id, or empty for anonymous requests.
func viewerID(r *http.Request) string {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return ""
	}
	return id.AccountID
}

func required(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return apperr.Newf(apperr.InvalidArgument, "%s required", strings.Join(missing, ", "))
}
