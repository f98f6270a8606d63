package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

func TestPublishVideo(t *testing.T) {
	api := newTestAPI(t)
	alice, token := api.signUp("alice")

	video := api.publish(token, "Go Basics")
	assert.Equal(t, alice.AccountID, video.OwnerID)
	assert.True(t, video.IsPublished)
	assert.True(t, strings.HasPrefix(video.VideoURL, "/media/videos/"))
	assert.Equal(t, video.VideoURL, video.ThumbnailURL)
	assert.Zero(t, video.Duration)

	rec := api.multipart(http.MethodPost, "/api/v1/videos", token, map[string]string{
		"title":       "With thumb",
		"description": "has a thumbnail",
	}, multipartFile{field: "videoFile", name: "clip.webm", content: "webm"}, multipartFile{field: "thumbnail", name: "thumb.jpg", content: "jpg"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var withThumb models.Video
	decodeBody(t, rec, &withThumb)
	assert.True(t, strings.HasPrefix(withThumb.ThumbnailURL, "/media/thumbnails/"))

	rec = api.multipart(http.MethodPost, "/api/v1/videos", token, map[string]string{"title": "No file", "description": "missing"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "videoFile is required", errorMessage(t, rec))

	rec = api.multipart(http.MethodPost, "/api/v1/videos", token, map[string]string{"title": "Wrong", "description": "type"},
		multipartFile{field: "videoFile", name: "notes.txt", content: "text"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.multipart(http.MethodPost, "/api/v1/videos", "", map[string]string{"title": "anon", "description": "anon"},
		multipartFile{field: "videoFile", name: "clip.mp4", content: "mp4"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetVideoCountsViews(t *testing.T) {
	api := newTestAPI(t)
	_, aliceToken := api.signUp("alice")
	video := api.publish(aliceToken, "Go Basics")

	rec := api.json(http.MethodGet, "/api/v1/videos/"+video.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var detail views.VideoDetail
	decodeBody(t, rec, &detail)
	assert.EqualValues(t, 1, detail.Views)
	assert.Equal(t, "alice", detail.Owner.Username)

	rec = api.json(http.MethodGet, "/api/v1/videos/"+video.ID, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &detail)
	assert.EqualValues(t, 2, detail.Views)

	rec = api.json(http.MethodGet, "/api/v1/videos/not-a-uuid", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid videoId", errorMessage(t, rec))

	rec = api.json(http.MethodGet, "/api/v1/videos/00000000-0000-0000-0000-000000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVideoOwnershipAndVisibility(t *testing.T) {
	api := newTestAPI(t)
	_, aliceToken := api.signUp("alice")
	_, bobToken := api.signUp("bob")
	video := api.publish(aliceToken, "Go Basics")
	path := "/api/v1/videos/" + video.ID

	rec := api.json(http.MethodPatch, path, bobToken, map[string]string{"title": "Hijacked"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.json(http.MethodDelete, path, bobToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.json(http.MethodPatch, "/api/v1/videos/toggle/publish/"+video.ID, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var status publishStatus
	decodeBody(t, rec, &status)
	assert.False(t, status.IsPublished)

	rec = api.json(http.MethodGet, path, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.json(http.MethodPatch, path, bobToken, map[string]string{"title": "Hijacked"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.json(http.MethodGet, "/api/v1/videos", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page videoPage
	decodeBody(t, rec, &page)
	assert.Zero(t, page.TotalDocs)

	rec = api.json(http.MethodGet, "/api/v1/videos", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &page)
	assert.Equal(t, 1, page.TotalDocs)

	rec = api.json(http.MethodGet, path, aliceToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateAndDeleteVideo(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.signUp("alice")
	video := api.publish(token, "Go Basics")
	path := "/api/v1/videos/" + video.ID

	rec := api.json(http.MethodPatch, path, token, map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.json(http.MethodPatch, path, token, map[string]string{"title": "Go Fundamentals"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.Video
	decodeBody(t, rec, &updated)
	assert.Equal(t, "Go Fundamentals", updated.Title)
	assert.Equal(t, video.Description, updated.Description)

	rec = api.multipart(http.MethodPatch, path, token, nil, multipartFile{field: "thumbnail", name: "thumb.png", content: "png"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &updated)
	assert.True(t, strings.HasPrefix(updated.ThumbnailURL, "/media/thumbnails/"))
	assert.Equal(t, video.VideoURL, updated.VideoURL)

	rec = api.json(http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.json(http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListVideosQueryAndPaging(t *testing.T) {
	api := newTestAPI(t)
	alice, aliceToken := api.signUp("alice")
	_, bobToken := api.signUp("bob")
	for _, title := range []string{"Go Basics", "Advanced Go", "Rust Intro"} {
		api.publish(aliceToken, title)
	}
	api.publish(bobToken, "Cooking with Go")

	rec := api.json(http.MethodGet, "/api/v1/videos?query=go&limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page videoPage
	decodeBody(t, rec, &page)
	assert.Equal(t, 3, page.TotalDocs)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasNextPage)
	assert.False(t, page.HasPrevPage)

	rec = api.json(http.MethodGet, "/api/v1/videos?userId="+alice.AccountID+"&sortBy=title&sortType=asc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &page)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Advanced Go", page.Items[0].Title)

	for _, query := range []string{"sortBy=likes", "sortType=sideways", "userId=alice", "page=0"} {
		rec = api.json(http.MethodGet, "/api/v1/videos?"+query, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}
