// Package views builds read-only projections that join accounts, videos,
// comments, likes and subscriptions. Every call reads current state; nothing
// is cached between calls.
package views

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// ChannelProfile is the public view of a channel.
type ChannelProfile struct {
	AccountID         string `json:"_id"`
	Username          string `json:"username"`
	DisplayName       string `json:"fullName"`
	Email             string `json:"email"`
	AvatarURL         string `json:"avatar"`
	CoverImageURL     string `json:"coverImage,omitempty"`
	SubscribersCount  int64  `json:"subscribersCount"`
	SubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// DashboardStats summarises a channel's videos and audience.
type DashboardStats struct {
	TotalVideos      int   `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
}

// CommentAuthor is the reduced account projection shown next to a comment.
type CommentAuthor struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CommentView is a comment joined with its author.
type CommentView struct {
	ID        string        `json:"_id"`
	VideoID   string        `json:"video"`
	OwnerID   string        `json:"ownerId"`
	Content   string        `json:"content"`
	Owner     CommentAuthor `json:"owner"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// CommentPage is one page of a video's comment thread.
type CommentPage struct {
	Items       []CommentView `json:"items"`
	TotalDocs   int           `json:"totalDocs"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	Limit       int           `json:"limit"`
	HasNextPage bool          `json:"hasNextPage"`
	HasPrevPage bool          `json:"hasPrevPage"`
}

// ChannelSummary is the reduced account projection used in nested views.
type ChannelSummary struct {
	AccountID   string `json:"_id"`
	Username    string `json:"username"`
	DisplayName string `json:"fullName"`
	AvatarURL   string `json:"avatar"`
}

func summarize(account models.Account) ChannelSummary {
	return ChannelSummary{
		AccountID:   account.ID,
		Username:    account.Username,
		DisplayName: account.DisplayName,
		AvatarURL:   account.AvatarURL,
	}
}

// WatchedVideo is a watch-history entry with its owning channel resolved.
type WatchedVideo struct {
	models.Video
	Owner ChannelSummary `json:"owner"`
}

// LikedVideo is the reduced projection of a liked video.
type LikedVideo struct {
	VideoID      string    `json:"_id"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnail"`
	CreatedAt    time.Time `json:"createdAt"`
	LikedAt      time.Time `json:"likedAt"`
}

// VideoDetail is a single video with its engagement figures for a viewer.
type VideoDetail struct {
	models.Video
	Owner            ChannelSummary `json:"owner"`
	LikesCount       int64          `json:"likesCount"`
	IsLiked          bool           `json:"isLiked"`
	SubscribersCount int64          `json:"subscribersCount"`
	IsSubscribed     bool           `json:"isSubscribed"`
}

// PlaylistDetail is a playlist with its member videos resolved in order.
type PlaylistDetail struct {
	models.Playlist
	Videos []models.Video `json:"videoDetails"`
	Owner  ChannelSummary `json:"ownerDetails"`
}

// Engine computes the read-only views.
type Engine struct {
	store repositories.Store
}

// NewEngine constructs an Engine over the repositories in store.
func NewEngine(store repositories.Store) *Engine {
	return &Engine{store: store}
}

// ChannelProfile resolves username into a channel profile as seen by requesterID.
// requesterID may be empty for anonymous callers.
func (e *Engine) ChannelProfile(ctx context.Context, requesterID, username string) (ChannelProfile, error) {
	ctx, span := logging.StartSpan(ctx, "views.channel_profile")
	defer span.End()

	account, err := e.store.Accounts.FindByUsername(ctx, username)
	if err != nil {
		return ChannelProfile{}, notFoundOr(err, "channel does not exist", "load channel")
	}

	subscribers, err := e.store.Subscriptions.CountByChannel(ctx, account.ID)
	if err != nil {
		return ChannelProfile{}, apperr.Internalf(err, "count subscribers")
	}
	subscribedTo, err := e.store.Subscriptions.CountBySubscriber(ctx, account.ID)
	if err != nil {
		return ChannelProfile{}, apperr.Internalf(err, "count subscriptions")
	}
	subscribed, err := e.isSubscribed(ctx, requesterID, account.ID)
	if err != nil {
		return ChannelProfile{}, err
	}

	return ChannelProfile{
		AccountID:         account.ID,
		Username:          account.Username,
		DisplayName:       account.DisplayName,
		Email:             account.Email,
		AvatarURL:         account.AvatarURL,
		CoverImageURL:     account.CoverImageURL,
		SubscribersCount:  subscribers,
		SubscribedToCount: subscribedTo,
		IsSubscribed:      subscribed,
	}, nil
}

func (e *Engine) isSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == "" {
		return false, nil
	}
	_, err := e.store.Subscriptions.Find(ctx, subscriberID, channelID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repositories.ErrNotFound):
		return false, nil
	default:
		return false, apperr.Internalf(err, "load subscription")
	}
}

// DashboardStats totals the videos, views, subscribers and likes of accountID.
func (e *Engine) DashboardStats(ctx context.Context, accountID string) (DashboardStats, error) {
	ctx, span := logging.StartSpan(ctx, "views.dashboard_stats")
	defer span.End()

	videos, err := e.store.Videos.ListByOwner(ctx, accountID)
	if err != nil {
		return DashboardStats{}, apperr.Internalf(err, "list channel videos")
	}

	stats := DashboardStats{TotalVideos: len(videos)}
	ids := make([]string, 0, len(videos))
	for _, video := range videos {
		stats.TotalViews += video.Views
		ids = append(ids, video.ID)
	}

	if stats.TotalSubscribers, err = e.store.Subscriptions.CountByChannel(ctx, accountID); err != nil {
		return DashboardStats{}, apperr.Internalf(err, "count subscribers")
	}
	if stats.TotalLikes, err = e.store.Likes.CountForVideos(ctx, ids); err != nil {
		return DashboardStats{}, apperr.Internalf(err, "count likes")
	}

	return stats, nil
}

// VideoComments returns one page of videoID's comments, newest first, each
// joined with its author.
func (e *Engine) VideoComments(ctx context.Context, videoID string, page Page) (CommentPage, error) {
	ctx, span := logging.StartSpan(ctx, "views.video_comments")
	defer span.End()

	if page.Number < 1 || page.Limit < 1 {
		return CommentPage{}, apperr.New(apperr.InvalidArgument, "page and limit must be positive")
	}

	if _, err := e.store.Videos.FindByID(ctx, videoID); err != nil {
		return CommentPage{}, notFoundOr(err, "video not found", "load video")
	}

	total, err := e.store.Comments.CountByVideo(ctx, videoID)
	if err != nil {
		return CommentPage{}, apperr.Internalf(err, "count comments")
	}
	comments, err := e.store.Comments.ListByVideo(ctx, videoID, page.Offset(), page.Limit)
	if err != nil {
		return CommentPage{}, apperr.Internalf(err, "list comments")
	}

	ownerIDs := make([]string, 0, len(comments))
	for _, comment := range comments {
		ownerIDs = append(ownerIDs, comment.OwnerID)
	}
	owners, err := e.store.Accounts.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return CommentPage{}, apperr.Internalf(err, "load comment authors")
	}

	items := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		owner := owners[comment.OwnerID]
		items = append(items, CommentView{
			ID:        comment.ID,
			VideoID:   comment.VideoID,
			OwnerID:   comment.OwnerID,
			Content:   comment.Content,
			Owner:     CommentAuthor{Username: owner.Username, Email: owner.Email},
			CreatedAt: comment.CreatedAt,
			UpdatedAt: comment.UpdatedAt,
		})
	}

	totalPages := page.TotalPages(total)
	return CommentPage{
		Items:       items,
		TotalDocs:   total,
		TotalPages:  totalPages,
		CurrentPage: page.Number,
		Limit:       page.Limit,
		HasNextPage: page.Number < totalPages,
		HasPrevPage: page.Number > 1,
	}, nil
}

// WatchHistory resolves the account's watch history into videos with their
// owners, preserving the stored order. Videos deleted or unpublished by
// another channel since being watched are skipped.
func (e *Engine) WatchHistory(ctx context.Context, accountID string) ([]WatchedVideo, error) {
	ctx, span := logging.StartSpan(ctx, "views.watch_history")
	defer span.End()

	account, err := e.store.Accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, notFoundOr(err, "account not found", "load account")
	}

	videos, err := e.store.Videos.FindByIDs(ctx, account.WatchHistory)
	if err != nil {
		return nil, apperr.Internalf(err, "load watched videos")
	}

	ownerIDs := make([]string, 0, len(videos))
	for _, video := range videos {
		ownerIDs = append(ownerIDs, video.OwnerID)
	}
	owners, err := e.store.Accounts.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, apperr.Internalf(err, "load video owners")
	}

	history := make([]WatchedVideo, 0, len(account.WatchHistory))
	for _, id := range account.WatchHistory {
		video, ok := videos[id]
		if !ok || !visibleTo(video, accountID) {
			logging.FromContext(ctx).Debug("watched video no longer visible", slog.String("video_id", id))
			continue
		}
		history = append(history, WatchedVideo{Video: video, Owner: summarize(owners[video.OwnerID])})
	}
	return history, nil
}

// LikedVideos lists the videos accountID liked, most recent like first,
// leaving out other channels' unpublished videos.
func (e *Engine) LikedVideos(ctx context.Context, accountID string) ([]LikedVideo, error) {
	ctx, span := logging.StartSpan(ctx, "views.liked_videos")
	defer span.End()

	likes, err := e.store.Likes.ListVideoLikes(ctx, accountID)
	if err != nil {
		return nil, apperr.Internalf(err, "list likes")
	}

	ids := make([]string, 0, len(likes))
	for _, like := range likes {
		ids = append(ids, like.VideoID)
	}
	videos, err := e.store.Videos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internalf(err, "load liked videos")
	}

	liked := make([]LikedVideo, 0, len(likes))
	for _, like := range likes {
		video, ok := videos[like.VideoID]
		if !ok || !visibleTo(video, accountID) {
			continue
		}
		liked = append(liked, LikedVideo{
			VideoID:      video.ID,
			Title:        video.Title,
			ThumbnailURL: video.ThumbnailURL,
			CreatedAt:    video.CreatedAt,
			LikedAt:      like.CreatedAt,
		})
	}
	return liked, nil
}

// ChannelSubscribers lists the accounts subscribed to channelID.
func (e *Engine) ChannelSubscribers(ctx context.Context, channelID string) ([]ChannelSummary, error) {
	ctx, span := logging.StartSpan(ctx, "views.channel_subscribers")
	defer span.End()

	if _, err := e.store.Accounts.FindByID(ctx, channelID); err != nil {
		return nil, notFoundOr(err, "channel does not exist", "load channel")
	}
	subs, err := e.store.Subscriptions.ListByChannel(ctx, channelID)
	if err != nil {
		return nil, apperr.Internalf(err, "list subscribers")
	}

	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.SubscriberID)
	}
	return e.summaries(ctx, ids)
}

// SubscribedChannels lists the channels subscriberID follows.
func (e *Engine) SubscribedChannels(ctx context.Context, subscriberID string) ([]ChannelSummary, error) {
	ctx, span := logging.StartSpan(ctx, "views.subscribed_channels")
	defer span.End()

	if _, err := e.store.Accounts.FindByID(ctx, subscriberID); err != nil {
		return nil, notFoundOr(err, "subscriber does not exist", "load subscriber")
	}
	subs, err := e.store.Subscriptions.ListBySubscriber(ctx, subscriberID)
	if err != nil {
		return nil, apperr.Internalf(err, "list subscriptions")
	}

	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.ChannelID)
	}
	return e.summaries(ctx, ids)
}

func (e *Engine) summaries(ctx context.Context, ids []string) ([]ChannelSummary, error) {
	accounts, err := e.store.Accounts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internalf(err, "load accounts")
	}
	result := make([]ChannelSummary, 0, len(ids))
	for _, id := range ids {
		if account, ok := accounts[id]; ok {
			result = append(result, summarize(account))
		}
	}
	return result, nil
}

// VideoDetail loads a video with owner, like and subscription figures for
// viewerID. Unpublished videos are only visible to their owner.
func (e *Engine) VideoDetail(ctx context.Context, viewerID, videoID string) (VideoDetail, error) {
	ctx, span := logging.StartSpan(ctx, "views.video_detail")
	defer span.End()

	video, err := e.store.Videos.FindByID(ctx, videoID)
	if err != nil {
		return VideoDetail{}, notFoundOr(err, "video not found", "load video")
	}
	if !visibleTo(video, viewerID) {
		return VideoDetail{}, apperr.New(apperr.NotFound, "video not found")
	}

	owner, err := e.store.Accounts.FindByID(ctx, video.OwnerID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return VideoDetail{}, apperr.Internalf(err, "load video owner")
	}

	detail := VideoDetail{Video: video, Owner: summarize(owner)}
	if detail.LikesCount, err = e.store.Likes.CountForVideos(ctx, []string{video.ID}); err != nil {
		return VideoDetail{}, apperr.Internalf(err, "count likes")
	}
	if detail.SubscribersCount, err = e.store.Subscriptions.CountByChannel(ctx, video.OwnerID); err != nil {
		return VideoDetail{}, apperr.Internalf(err, "count subscribers")
	}
	if detail.IsSubscribed, err = e.isSubscribed(ctx, viewerID, video.OwnerID); err != nil {
		return VideoDetail{}, err
	}
	if viewerID != "" {
		_, err := e.store.Likes.Find(ctx, viewerID, models.LikeTarget{Kind: models.LikeTargetVideo, ID: video.ID})
		switch {
		case err == nil:
			detail.IsLiked = true
		case !errors.Is(err, repositories.ErrNotFound):
			return VideoDetail{}, apperr.Internalf(err, "load like")
		}
	}

	return detail, nil
}

// PlaylistDetail resolves a playlist's member videos in playlist order as
// seen by viewerID.
func (e *Engine) PlaylistDetail(ctx context.Context, viewerID, playlistID string) (PlaylistDetail, error) {
	ctx, span := logging.StartSpan(ctx, "views.playlist_detail")
	defer span.End()

	playlist, err := e.store.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		return PlaylistDetail{}, notFoundOr(err, "playlist not found", "load playlist")
	}

	videos, err := e.store.Videos.FindByIDs(ctx, playlist.VideoIDs)
	if err != nil {
		return PlaylistDetail{}, apperr.Internalf(err, "load playlist videos")
	}
	owner, err := e.store.Accounts.FindByID(ctx, playlist.OwnerID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return PlaylistDetail{}, apperr.Internalf(err, "load playlist owner")
	}

	detail := PlaylistDetail{Playlist: playlist, Videos: make([]models.Video, 0, len(playlist.VideoIDs)), Owner: summarize(owner)}
	for _, id := range playlist.VideoIDs {
		if video, ok := videos[id]; ok && visibleTo(video, viewerID) {
			detail.Videos = append(detail.Videos, video)
		}
	}
	return detail, nil
}

// visibleTo reports whether viewerID may see video. Unpublished videos are
// only visible to their owner.
func visibleTo(video models.Video, viewerID string) bool {
	return video.IsPublished || (viewerID != "" && video.OwnerID == viewerID)
}

func notFoundOr(err error, notFound, op string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.New(apperr.NotFound, notFound)
	}
	return apperr.Internalf(err, "%s", op)
}
