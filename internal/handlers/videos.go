package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/ownership"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/views"
)

// VideoHandler implements the video catalogue endpoints.
type VideoHandler struct {
	Videos         repositories.VideoRepository
	Accounts       repositories.AccountRepository
	Media          MediaStore
	Views          ViewEngine
	MaxUploadBytes int64
	NowFunc        func() time.Time
}

type videoPage struct {
	Items       []models.Video `json:"items"`
	TotalDocs   int            `json:"totalDocs"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Limit       int            `json:"limit"`
	HasNextPage bool           `json:"hasNextPage"`
	HasPrevPage bool           `json:"hasPrevPage"`
}

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type publishStatus struct {
	VideoID     string `json:"_id"`
	IsPublished bool   `json:"isPublished"`
}

// List handles GET /api/v1/videos. Query parameters: page, limit, query,
// sortBy (createdAt|views|duration|title), sortType (asc|desc) and userId.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	page, err := views.ParsePage(q.Get("page"), q.Get("limit"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	query := repositories.VideoQuery{
		Search:   strings.TrimSpace(q.Get("query")),
		ViewerID: viewerID(r),
		SortBy:   repositories.SortByCreatedAt,
		Offset:   page.Offset(),
		Limit:    page.Limit,
	}

	if sortBy := q.Get("sortBy"); sortBy != "" {
		switch field := repositories.VideoSortField(sortBy); field {
		case repositories.SortByCreatedAt, repositories.SortByViews, repositories.SortByDuration, repositories.SortByTitle:
			query.SortBy = field
		default:
			respondError(ctx, w, apperr.Newf(apperr.InvalidArgument, "unsupported sortBy %q", sortBy))
			return
		}
	}

	switch strings.ToLower(q.Get("sortType")) {
	case "", "desc":
	case "asc":
		query.Ascending = true
	default:
		respondError(ctx, w, apperr.New(apperr.InvalidArgument, "sortType must be asc or desc"))
		return
	}

	if userID := strings.TrimSpace(q.Get("userId")); userID != "" {
		if _, err := uuid.Parse(userID); err != nil {
			respondError(ctx, w, apperr.New(apperr.InvalidArgument, "invalid userId"))
			return
		}
		query.OwnerID = userID
	}

	items, total, err := h.Videos.List(ctx, query)
	if err != nil {
		respondError(ctx, w, apperr.Internalf(err, "list videos"))
		return
	}
	if items == nil {
		items = []models.Video{}
	}

	totalPages := page.TotalPages(total)
	respondJSON(ctx, w, http.StatusOK, videoPage{
		Items:       items,
		TotalDocs:   total,
		TotalPages:  totalPages,
		CurrentPage: page.Number,
		Limit:       page.Limit,
		HasNextPage: page.Number < totalPages,
		HasPrevPage: page.Number > 1,
	})
}

// Publish handles POST /api/v1/videos. The multipart body carries title,
// description, videoFile and an optional thumbnail.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
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

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if err := required(map[string]string{"title": title, "description": description}); err != nil {
		respondError(ctx, w, err)
		return
	}

	videoFile := formFile(r, "videoFile")
	if videoFile == nil {
		respondError(ctx, w, apperr.New(apperr.InvalidArgument, "videoFile is required"))
		return
	}

	videoURL, duration, err := h.Media.SaveVideo(ctx, videoFile)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	thumbnailURL := videoURL
	if thumb := formFile(r, "thumbnail"); thumb != nil {
		thumbnailURL, err = h.Media.Save(ctx, media.KindThumbnail, thumb)
		if err != nil {
			h.Media.Discard(ctx, videoURL)
			respondError(ctx, w, err)
			return
		}
	}

	now := h.now()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      caller.AccountID,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		Title:        title,
		Description:  description,
		Duration:     duration,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		h.Media.Discard(ctx, mediaLocations(video)...)
		respondError(ctx, w, writeError(err, "video"))
		return
	}

	logging.FromContext(ctx).Info("video published", "videoId", video.ID, "duration", duration)
	respondJSON(ctx, w, http.StatusCreated, video)
}

// Get handles GET /api/v1/videos/{videoId}. Each successful read counts a view
// and moves the video to the front of the caller's watch history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	viewer := viewerID(r)
	detail, err := h.Views.VideoDetail(ctx, viewer, videoID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		respondError(ctx, w, lookupError(err, "video"))
		return
	}
	detail.Views++

	if viewer != "" {
		if err := h.Accounts.RecordWatch(ctx, viewer, videoID); err != nil {
			logging.FromContext(ctx).Warn("record watch history", "videoId", videoID, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, detail)
}

// Update handles PATCH /api/v1/videos/{videoId}. Title and description arrive
// as JSON or multipart fields; a multipart thumbnail replaces the current one.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	video, caller, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var (
		req       updateVideoRequest
		thumbFile *multipart.FileHeader
	)
	if isMultipart(r) {
		if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
			respondError(ctx, w, err)
			return
		}
		req.Title = r.FormValue("title")
		req.Description = r.FormValue("description")
		thumbFile = formFile(r, "thumbnail")
	} else if err := decodeJSON(w, r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" && req.Description == "" && thumbFile == nil {
		respondError(ctx, w, apperr.New(apperr.InvalidArgument, "title, description or thumbnail is required"))
		return
	}

	if req.Title != "" {
		video.Title = req.Title
	}
	if req.Description != "" {
		video.Description = req.Description
	}

	previousThumb := video.ThumbnailURL
	if thumbFile != nil {
		location, err := h.Media.Save(ctx, media.KindThumbnail, thumbFile)
		if err != nil {
			respondError(ctx, w, err)
			return
		}
		video.ThumbnailURL = location
	}
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		if thumbFile != nil {
			h.Media.Discard(ctx, video.ThumbnailURL)
		}
		respondError(ctx, w, writeError(err, "video"))
		return
	}

	if thumbFile != nil && previousThumb != video.VideoURL {
		h.Media.Discard(ctx, previousThumb)
	}

	logging.FromContext(ctx).Info("video updated", "videoId", video.ID, "accountId", caller.AccountID)
	respondJSON(ctx, w, http.StatusOK, video)
}

// Delete handles DELETE /api/v1/videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	video, _, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondError(ctx, w, lookupError(err, "video"))
		return
	}

	h.Media.Discard(ctx, mediaLocations(video)...)
	respondJSON(ctx, w, http.StatusOK, messageResponse{Message: "video deleted"})
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	video, _, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	video.IsPublished = !video.IsPublished
	video.UpdatedAt = h.now()
	if err := h.Videos.Update(ctx, video); err != nil {
		respondError(ctx, w, writeError(err, "video"))
		return
	}
	respondJSON(ctx, w, http.StatusOK, publishStatus{VideoID: video.ID, IsPublished: video.IsPublished})
}

// loadOwned resolves {videoId} and checks the caller owns it, writing the
// error response itself when it does not.
func (h VideoHandler) loadOwned(w http.ResponseWriter, r *http.Request) (models.Video, models.Identity, bool) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return models.Video{}, models.Identity{}, false
	}

	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return models.Video{}, models.Identity{}, false
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, lookupError(err, "video"))
		return models.Video{}, models.Identity{}, false
	}

	if err := ownership.AssertOwner(video, caller); err != nil {
		if errors.Is(err, ownership.ErrNotOwner) && !video.IsPublished {
			respondError(ctx, w, apperr.New(apperr.NotFound, "video not found"))
			return models.Video{}, models.Identity{}, false
		}
		respondError(ctx, w, err)
		return models.Video{}, models.Identity{}, false
	}
	return video, caller, true
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func mediaLocations(video models.Video) []string {
	if video.ThumbnailURL == video.VideoURL {
		return []string{video.VideoURL}
	}
	return []string{video.VideoURL, video.ThumbnailURL}
}
