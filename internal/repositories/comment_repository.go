package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// CommentRepository defines data access for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
	// ListByVideo pages a video's comments newest first, ties broken by id.
	ListByVideo(ctx context.Context, videoID string, offset, limit int) ([]models.Comment, error)
	CountByVideo(ctx context.Context, videoID string) (int, error)
	DeleteByVideo(ctx context.Context, videoID string) error
}
