package models

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/apperr"
)

func TestPlaylistMembership(t *testing.T) {
	playlist := Playlist{ID: "p1", VideoIDs: []string{"v1", "v2"}}
	before := slices.Clone(playlist.VideoIDs)

	if err := playlist.AddVideo("v1"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument adding duplicate, got %v", err)
	}
	if err := playlist.RemoveVideo("v9"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument removing non-member, got %v", err)
	}

	if err := playlist.AddVideo("v3"); err != nil {
		t.Fatalf("add video: %v", err)
	}
	if !playlist.HasVideo("v3") {
		t.Fatalf("expected v3 to be a member")
	}
	if err := playlist.RemoveVideo("v3"); err != nil {
		t.Fatalf("remove video: %v", err)
	}

	if !slices.Equal(before, playlist.VideoIDs) {
		t.Fatalf("expected membership %v, got %v", before, playlist.VideoIDs)
	}
}

func TestPlaylistRemoveKeepsOrder(t *testing.T) {
	playlist := Playlist{VideoIDs: []string{"a", "b", "c"}}
	if err := playlist.RemoveVideo("b"); err != nil {
		t.Fatalf("remove video: %v", err)
	}
	if !slices.Equal(playlist.VideoIDs, []string{"a", "c"}) {
		t.Fatalf("unexpected order %v", playlist.VideoIDs)
	}
}

func TestNewLikePopulatesSingleTarget(t *testing.T) {
	tests := []LikeTarget{
		{Kind: LikeTargetVideo, ID: "v1"},
		{Kind: LikeTargetComment, ID: "c1"},
		{Kind: LikeTargetTweet, ID: "t1"},
	}

	for _, target := range tests {
		like := NewLike("l1", "a1", target, time.Now())
		populated := 0
		for _, slot := range []string{like.VideoID, like.CommentID, like.TweetID} {
			if slot != "" {
				populated++
			}
		}
		if populated != 1 {
			t.Fatalf("expected exactly one target slot for %s, got %d", target.Kind, populated)
		}
		if like.Target() != target {
			t.Fatalf("expected target %+v, got %+v", target, like.Target())
		}
	}
}

func TestIdentityOmitsSecrets(t *testing.T) {
	account := Account{
		ID:           "a1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		RefreshToken: "token",
	}

	identity := account.Identity()
	if identity.AccountID != "a1" || identity.Username != "alice" || identity.Email != "alice@example.com" {
		t.Fatalf("unexpected identity %+v", identity)
	}
}
