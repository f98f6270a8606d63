package ownership

import (
	"errors"
	"testing"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
)

func TestAssertOwner(t *testing.T) {
	x := models.Identity{AccountID: "x"}
	y := models.Identity{AccountID: "y"}

	resources := []struct {
		name     string
		resource Owned
	}{
		{name: "comment", resource: models.Comment{ID: "c1", OwnerID: "x"}},
		{name: "tweet", resource: models.Tweet{ID: "t1", OwnerID: "x"}},
		{name: "playlist", resource: models.Playlist{ID: "p1", OwnerID: "x"}},
		{name: "video", resource: models.Video{ID: "v1", OwnerID: "x"}},
	}

	for _, tc := range resources {
		t.Run(tc.name, func(t *testing.T) {
			if err := AssertOwner(tc.resource, x); err != nil {
				t.Fatalf("owner should pass: %v", err)
			}
			err := AssertOwner(tc.resource, y)
			if !errors.Is(err, apperr.ErrForbidden) {
				t.Fatalf("expected forbidden for non-owner, got %v", err)
			}
		})
	}
}

func TestAssertOwnerRejectsEmptyIDs(t *testing.T) {
	if err := AssertOwner(models.Tweet{}, models.Identity{}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected empty owner and identity to be rejected, got %v", err)
	}
}
