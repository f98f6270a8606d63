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
	"github.com/vidtube/backend/internal/views"
)

// CommentHandler implements the comment thread endpoints.
type CommentHandler struct {
	Comments repositories.CommentRepository
	Videos   repositories.VideoRepository
	Views    ViewEngine
	NowFunc  func() time.Time
}

type contentRequest struct {
	Content string `json:"content"`
}

func (req contentRequest) validate() (string, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return "", apperr.New(apperr.InvalidArgument, "content is required")
	}
	return content, nil
}

// List handles GET /api/v1/comments/{videoId}?page=&limit=.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	page, err := views.ParsePage(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	comments, err := h.Views.VideoComments(ctx, videoID, page)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, comments)
}

// Add handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	content, err := req.validate()
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, lookupError(err, "video"))
		return
	}
	if !video.IsPublished && video.OwnerID != caller.AccountID {
		respondError(ctx, w, apperr.New(apperr.NotFound, "video not found"))
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		OwnerID:   caller.AccountID,
		VideoID:   video.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, writeError(err, "comment"))
		return
	}
	respondJSON(ctx, w, http.StatusCreated, comment)
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comment, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	content, err := req.validate()
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	comment.Content = content
	comment.UpdatedAt = h.now()
	if err := h.Comments.Update(ctx, comment); err != nil {
		respondError(ctx, w, writeError(err, "comment"))
		return
	}
	respondJSON(ctx, w, http.StatusOK, comment)
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comment, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondError(ctx, w, lookupError(err, "comment"))
		return
	}
	respondJSON(ctx, w, http.StatusOK, messageResponse{Message: "comment deleted"})
}

func (h CommentHandler) loadOwned(w http.ResponseWriter, r *http.Request) (models.Comment, bool) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return models.Comment{}, false
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		respondError(ctx, w, err)
		return models.Comment{}, false
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondError(ctx, w, lookupError(err, "comment"))
		return models.Comment{}, false
	}
	if err := ownership.AssertOwner(comment, caller); err != nil {
		respondError(ctx, w, err)
		return models.Comment{}, false
	}
	return comment, true
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
