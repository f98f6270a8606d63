// Package social flips subscription and like state. Both toggles rely on the
// store's uniqueness constraint so concurrent toggles never leave duplicates.
package social

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// ErrSelfSubscription is returned when an account tries to subscribe to itself.
var ErrSelfSubscription = apperr.New(apperr.InvalidArgument, "you cannot subscribe to your own channel")

// Graph applies toggle operations over subscriptions and likes.
type Graph struct {
	store repositories.Store
	now   func() time.Time
	newID func() string
}

// NewGraph constructs a Graph over the repositories in store.
func NewGraph(store repositories.Store) *Graph {
	return &Graph{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// ToggleSubscription subscribes subscriberID to channelID, or unsubscribes if
// already subscribed. It reports whether the subscription exists afterwards.
func (g *Graph) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == channelID {
		return false, ErrSelfSubscription
	}

	ctx, span := logging.StartSpan(ctx, "social.toggle_subscription")
	defer span.End()

	if _, err := g.store.Accounts.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, apperr.New(apperr.NotFound, "channel does not exist")
		}
		return false, apperr.Internalf(err, "load channel")
	}

	existing, err := g.store.Subscriptions.Find(ctx, subscriberID, channelID)
	switch {
	case err == nil:
		return g.unsubscribe(ctx, existing)
	case !errors.Is(err, repositories.ErrNotFound):
		return false, apperr.Internalf(err, "load subscription")
	}

	err = g.store.Subscriptions.Create(ctx, models.Subscription{
		ID:           g.newID(),
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    g.now(),
	})
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrConflict):
		logging.FromContext(ctx).Debug("concurrent subscribe already applied", slog.String("channel_id", channelID))
	case errors.Is(err, repositories.ErrNotFound):
		return false, apperr.New(apperr.NotFound, "channel does not exist")
	default:
		return false, apperr.Internalf(err, "create subscription")
	}

	metrics.RecordToggle("subscription", true)
	return true, nil
}

func (g *Graph) unsubscribe(ctx context.Context, existing models.Subscription) (bool, error) {
	err := g.store.Subscriptions.Delete(ctx, existing.ID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return false, apperr.Internalf(err, "delete subscription")
	}
	metrics.RecordToggle("subscription", false)
	return false, nil
}

// ToggleLike likes target on behalf of actorID, or removes the like if it
// exists. It reports whether the like exists afterwards.
func (g *Graph) ToggleLike(ctx context.Context, actorID string, target models.LikeTarget) (bool, error) {
	if !target.Kind.Valid() {
		return false, apperr.Newf(apperr.InvalidArgument, "unknown like target %q", target.Kind)
	}
	if target.ID == "" {
		return false, apperr.New(apperr.InvalidArgument, "like target id is required")
	}

	ctx, span := logging.StartSpan(ctx, "social.toggle_like")
	defer span.End()

	if err := g.ensureTargetExists(ctx, target); err != nil {
		return false, err
	}

	existing, err := g.store.Likes.Find(ctx, actorID, target)
	switch {
	case err == nil:
		if err := g.store.Likes.Delete(ctx, existing.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return false, apperr.Internalf(err, "delete like")
		}
		metrics.RecordToggle(string(target.Kind), false)
		return false, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return false, apperr.Internalf(err, "load like")
	}

	err = g.store.Likes.Create(ctx, models.NewLike(g.newID(), actorID, target, g.now()))
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrConflict):
		logging.FromContext(ctx).Debug("concurrent like already applied", slog.String("target_id", target.ID))
	case errors.Is(err, repositories.ErrNotFound):
		return false, apperr.Newf(apperr.NotFound, "%s not found", target.Kind)
	default:
		return false, apperr.Internalf(err, "create like")
	}

	metrics.RecordToggle(string(target.Kind), true)
	return true, nil
}

func (g *Graph) ensureTargetExists(ctx context.Context, target models.LikeTarget) error {
	var err error
	switch target.Kind {
	case models.LikeTargetVideo:
		_, err = g.store.Videos.FindByID(ctx, target.ID)
	case models.LikeTargetComment:
		_, err = g.store.Comments.FindByID(ctx, target.ID)
	case models.LikeTargetTweet:
		_, err = g.store.Tweets.FindByID(ctx, target.ID)
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.Newf(apperr.NotFound, "%s not found", target.Kind)
	default:
		return apperr.Internalf(err, "load %s", target.Kind)
	}
}
