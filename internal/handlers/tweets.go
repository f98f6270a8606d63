package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/ownership"
	"github.com/vidtube/backend/internal/repositories"
)

// TweetHandler implements short post endpoints.
type TweetHandler struct {
	Tweets   repositories.TweetRepository
	Accounts repositories.AccountRepository
	NowFunc  func() time.Time
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := identity(r)
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

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   caller.AccountID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondError(ctx, w, writeError(err, "tweet"))
		return
	}
	respondJSON(ctx, w, http.StatusCreated, tweet)
}

// ListByUser handles GET /api/v1/tweets/user/{userId}, newest first.
func (h TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
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

	tweets, err := h.Tweets.ListByOwner(ctx, userID)
	if err != nil {
		respondError(ctx, w, lookupError(err, "tweets"))
		return
	}
	if tweets == nil {
		tweets = []models.Tweet{}
	}
	respondJSON(ctx, w, http.StatusOK, tweets)
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweet, ok := h.loadOwned(w, r)
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

	tweet.Content = content
	tweet.UpdatedAt = h.now()
	if err := h.Tweets.Update(ctx, tweet); err != nil {
		respondError(ctx, w, writeError(err, "tweet"))
		return
	}
	respondJSON(ctx, w, http.StatusOK, tweet)
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweet, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respondError(ctx, w, lookupError(err, "tweet"))
		return
	}
	respondJSON(ctx, w, http.StatusOK, messageResponse{Message: "tweet deleted"})
}

func (h TweetHandler) loadOwned(w http.ResponseWriter, r *http.Request) (models.Tweet, bool) {
	ctx := r.Context()
	caller, err := identity(r)
	if err != nil {
		respondError(ctx, w, err)
		return models.Tweet{}, false
	}
	tweetID, err := pathID(r, "tweetId")
	if err != nil {
		respondError(ctx, w, err)
		return models.Tweet{}, false
	}

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		respondError(ctx, w, lookupError(err, "tweet"))
		return models.Tweet{}, false
	}
	if err := ownership.AssertOwner(tweet, caller); err != nil {
		respondError(ctx, w, err)
		return models.Tweet{}, false
	}
	return tweet, true
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
