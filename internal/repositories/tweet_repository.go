package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// TweetRepository defines data access for short-form posts.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
}
