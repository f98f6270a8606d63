package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// DashboardHandler serves the signed-in channel's own statistics.
type DashboardHandler struct {
	Videos repositories.VideoRepository
	Views  ViewEngine
}

// Stats handles GET /api/v1/dashboard/stats.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	stats, err := h.Views.DashboardStats(ctx, caller.AccountID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, stats)
}

// ListVideos handles GET /api/v1/dashboard/videos, including unpublished uploads.
func (h DashboardHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	videos, err := h.Videos.ListByOwner(ctx, caller.AccountID)
	if err != nil {
		respondError(ctx, w, apperr.Internalf(err, "list videos"))
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	respondJSON(ctx, w, http.StatusOK, videos)
}
