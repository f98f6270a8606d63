package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// AccountRepository defines data access for registered accounts.
type AccountRepository interface {
	Create(ctx context.Context, account models.Account) error
	FindByID(ctx context.Context, id string) (models.Account, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Account, error)
	FindByUsername(ctx context.Context, username string) (models.Account, error)
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	// Update writes the mutable profile fields; username and id never change.
	Update(ctx context.Context, account models.Account) error
	// SetRefreshToken replaces the stored refresh token. An empty token clears it.
	SetRefreshToken(ctx context.Context, accountID, token string) error
	// RecordWatch moves videoID to the front of the account's watch history.
	RecordWatch(ctx context.Context, accountID, videoID string) error
}
