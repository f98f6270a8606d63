package handlers

import (
	"context"
	"net/http"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// LikeHandler implements like toggles and the liked videos listing.
type LikeHandler struct {
	Graph SocialGraph
	Views ViewEngine
}

type likeStatus struct {
	IsLiked bool `json:"isLiked"`
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetVideo, "videoId")
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetComment, "commentId")
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetTweet, "tweetId")
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind models.LikeTargetKind, param string) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	targetID, err := pathID(r, param)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	liked, err := h.Graph.ToggleLike(ctx, caller.AccountID, models.LikeTarget{Kind: kind, ID: targetID})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, likeStatus{IsLiked: liked})
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	liked, err := h.Views.LikedVideos(ctx, caller.AccountID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if liked == nil {
		liked = []views.LikedVideo{}
	}
	respondJSON(ctx, w, http.StatusOK, liked)
}

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Graph SocialGraph
	Views ViewEngine
}

type subscriptionStatus struct {
	Subscribed bool `json:"subscribed"`
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	channelID, err := pathID(r, "channelId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	subscribed, err := h.Graph.ToggleSubscription(ctx, caller.AccountID, channelID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, subscriptionStatus{Subscribed: subscribed})
}

// Subscribers handles GET /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "channelId", h.Views.ChannelSubscribers)
}

// Subscribed handles GET /api/v1/subscriptions/u/{subscriberId}.
func (h SubscriptionHandler) Subscribed(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "subscriberId", h.Views.SubscribedChannels)
}

func (h SubscriptionHandler) list(w http.ResponseWriter, r *http.Request, param string, load func(ctx context.Context, id string) ([]views.ChannelSummary, error)) {
	ctx := r.Context()
	id, err := pathID(r, param)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	channels, err := load(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if channels == nil {
		channels = []views.ChannelSummary{}
	}
	respondJSON(ctx, w, http.StatusOK, channels)
}
