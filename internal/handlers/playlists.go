package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/ownership"
	"github.com/vidtube/backend/internal/repositories"
)

// PlaylistHandler implements playlist curation endpoints.
type PlaylistHandler struct {
	Playlists repositories.PlaylistRepository
	Videos    repositories.VideoRepository
	Accounts  repositories.AccountRepository
	Views     ViewEngine
	NowFunc   func() time.Time
}

type playlistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	name, description := trimmed(req.Name), trimmed(req.Description)
	if err := required(map[string]string{"name": name, "description": description}); err != nil {
		respondError(ctx, w, err)
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     caller.AccountID,
		Name:        name,
		Description: description,
		VideoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondError(ctx, w, writeError(err, "playlist"))
		return
	}
	respondJSON(ctx, w, http.StatusCreated, playlist)
}

// Get handles GET /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	detail, err := h.Views.PlaylistDetail(ctx, viewerID(r), playlistID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, detail)
}

// Update handles PATCH /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, ok := h.loadOwned(w, r, "playlistId")
	if !ok {
		return
	}

	var req playlistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	name, description := trimmed(req.Name), trimmed(req.Description)
	if name == "" && description == "" {
		respondError(ctx, w, apperr.New(apperr.InvalidArgument, "name or description required"))
		return
	}
	if name != "" {
		playlist.Name = name
	}
	if description != "" {
		playlist.Description = description
	}

	h.save(w, r, playlist)
}

// Delete handles DELETE /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, ok := h.loadOwned(w, r, "playlistId")
	if !ok {
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondError(ctx, w, lookupError(err, "playlist"))
		return
	}
	respondJSON(ctx, w, http.StatusOK, messageResponse{Message: "playlist deleted"})
}

// AddVideo handles PATCH /api/v1/playlists/add/{videoId}/{playlistId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, ok := h.loadOwned(w, r, "playlistId")
	if !ok {
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, lookupError(err, "video"))
		return
	}
	if !video.IsPublished && video.OwnerID != playlist.OwnerID {
		respondError(ctx, w, apperr.New(apperr.NotFound, "video not found"))
		return
	}
	if err := playlist.AddVideo(video.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	h.save(w, r, playlist)
}

// RemoveVideo handles PATCH /api/v1/playlists/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, ok := h.loadOwned(w, r, "playlistId")
	if !ok {
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := playlist.RemoveVideo(videoID); err != nil {
		respondError(ctx, w, err)
		return
	}

	h.save(w, r, playlist)
}

// ListByUser handles GET /api/v1/playlists/user/{userId}.
func (h PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := pathID(r, "userId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if _, err := h.Accounts.FindByID(ctx, userID); err != nil {
		respondError(ctx, w, lookupError(err, "user"))
		return
	}

	playlists, err := h.Playlists.ListByOwner(ctx, userID)
	if err != nil {
		respondError(ctx, w, lookupError(err, "playlists"))
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	respondJSON(ctx, w, http.StatusOK, playlists)
}

func (h PlaylistHandler) save(w http.ResponseWriter, r *http.Request, playlist models.Playlist) {
	ctx := r.Context()
	playlist.UpdatedAt = h.now()
	if err := h.Playlists.Update(ctx, playlist); err != nil {
		respondError(ctx, w, writeError(err, "playlist"))
		return
	}
	respondJSON(ctx, w, http.StatusOK, playlist)
}

func (h PlaylistHandler) loadOwned(w http.ResponseWriter, r *http.Request, param string) (models.Playlist, bool) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return models.Playlist{}, false
	}
	playlistID, err := pathID(r, param)
	if err != nil {
		respondError(ctx, w, err)
		return models.Playlist{}, false
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, lookupError(err, "playlist"))
		return models.Playlist{}, false
	}
	if err := ownership.AssertOwner(playlist, caller); err != nil {
		respondError(ctx, w, err)
		return models.Playlist{}, false
	}
	return playlist, true
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
