package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// SubscriptionRepository defines data access for channel subscriptions.
// Implementations enforce a unique (subscriber, channel) pair and report a
// duplicate insert as ErrConflict.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription models.Subscription) error
	Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error)
	Delete(ctx context.Context, id string) error
	CountByChannel(ctx context.Context, channelID string) (int64, error)
	CountBySubscriber(ctx context.Context, subscriberID string) (int64, error)
	ListByChannel(ctx context.Context, channelID string) ([]models.Subscription, error)
	ListBySubscriber(ctx context.Context, subscriberID string) ([]models.Subscription, error)
}
