package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// LikeRepository defines data access for likes. Implementations enforce a
// unique (liked_by, target) pair and report a duplicate insert as ErrConflict.
type LikeRepository interface {
	Create(ctx context.Context, like models.Like) error
	Find(ctx context.Context, actorID string, target models.LikeTarget) (models.Like, error)
	Delete(ctx context.Context, id string) error
	DeleteForTarget(ctx context.Context, target models.LikeTarget) error
	// ListVideoLikes returns the actor's likes on videos, newest first.
	ListVideoLikes(ctx context.Context, actorID string) ([]models.Like, error)
	CountForVideos(ctx context.Context, videoIDs []string) (int64, error)
}
