package handlers

import (
	"context"
	"mime/multipart"

	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// SessionManager issues, rotates and revokes token pairs.
type SessionManager interface {
	IssuePair(ctx context.Context, accountID string) (models.SessionTokens, error)
	Rotate(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, accountID string) error
}

// MediaStore persists uploaded files and schedules removal of replaced ones.
type MediaStore interface {
	Save(ctx context.Context, kind media.Kind, file *multipart.FileHeader) (string, error)
	SaveVideo(ctx context.Context, file *multipart.FileHeader) (string, float64, error)
	Discard(ctx context.Context, locations ...string)
}

// ViewEngine computes the read-only projections served by the API.
type ViewEngine interface {
	ChannelProfile(ctx context.Context, requesterID, username string) (views.ChannelProfile, error)
	DashboardStats(ctx context.Context, accountID string) (views.DashboardStats, error)
	VideoComments(ctx context.Context, videoID string, page views.Page) (views.CommentPage, error)
	WatchHistory(ctx context.Context, accountID string) ([]views.WatchedVideo, error)
	LikedVideos(ctx context.Context, accountID string) ([]views.LikedVideo, error)
	ChannelSubscribers(ctx context.Context, channelID string) ([]views.ChannelSummary, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]views.ChannelSummary, error)
	VideoDetail(ctx context.Context, viewerID, videoID string) (views.VideoDetail, error)
	PlaylistDetail(ctx context.Context, viewerID, playlistID string) (views.PlaylistDetail, error)
}

// SocialGraph flips subscription and like state.
type SocialGraph interface {
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)
	ToggleLike(ctx context.Context, actorID string, target models.LikeTarget) (bool, error)
}
