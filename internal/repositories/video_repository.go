package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// VideoSortField selects the column a video listing is ordered by.
type VideoSortField string

const (
	SortByCreatedAt VideoSortField = "createdAt"
	SortByViews     VideoSortField = "views"
	SortByDuration  VideoSortField = "duration"
	SortByTitle     VideoSortField = "title"
)

// VideoQuery filters and pages a video listing.
type VideoQuery struct {
	// Search matches titles case-insensitively.
	Search  string
	OwnerID string
	// ViewerID sees their own unpublished videos; everyone else only sees published ones.
	ViewerID  string
	SortBy    VideoSortField
	Ascending bool
	Offset    int
	Limit     int
}

// VideoRepository defines data access for uploaded videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Video, error)
	List(ctx context.Context, query VideoQuery) ([]models.Video, int, error)
	// ListByOwner returns every video of the owner, published or not, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}
