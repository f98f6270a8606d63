package repositories

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/models"
)

func seedAccount(t *testing.T, store Store, id string) models.Account {
	t.Helper()
	account := models.Account{
		ID:          id,
		Username:    id,
		Email:       id + "@example.com",
		DisplayName: id,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.Accounts.Create(context.Background(), account))
	return account
}

func TestMemoryAccountsUniqueFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	alice := seedAccount(t, store, "alice")

	dupUsername := alice
	dupUsername.ID = "other"
	dupUsername.Email = "other@example.com"
	require.ErrorIs(t, store.Accounts.Create(ctx, dupUsername), ErrConflict)

	dupEmail := alice
	dupEmail.ID = "other"
	dupEmail.Username = "other"
	require.ErrorIs(t, store.Accounts.Create(ctx, dupEmail), ErrConflict)

	bob := seedAccount(t, store, "bob")
	bob.Email = alice.Email
	require.ErrorIs(t, store.Accounts.Update(ctx, bob), ErrConflict)
}

func TestMemoryAccountsRefreshTokenAndHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	seedAccount(t, store, "alice")

	require.NoError(t, store.Accounts.SetRefreshToken(ctx, "alice", "token-1"))
	account, err := store.Accounts.FindByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "token-1", account.RefreshToken)

	require.NoError(t, store.Accounts.SetRefreshToken(ctx, "alice", ""))
	account, err = store.Accounts.FindByID(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, account.RefreshToken)

	for _, id := range []string{"v1", "v2", "v1", "v3"} {
		require.NoError(t, store.Accounts.RecordWatch(ctx, "alice", id))
	}
	account, err = store.Accounts.FindByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"v3", "v1", "v2"}, account.WatchHistory)

	require.ErrorIs(t, store.Accounts.SetRefreshToken(ctx, "missing", "x"), ErrNotFound)
}

func TestMemoryLikesEnforceUniquePair(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	target := models.LikeTarget{Kind: models.LikeTargetTweet, ID: "t1"}

	require.NoError(t, store.Likes.Create(ctx, models.NewLike("l1", "alice", target, time.Now())))
	require.ErrorIs(t, store.Likes.Create(ctx, models.NewLike("l2", "alice", target, time.Now())), ErrConflict)

	other := models.LikeTarget{Kind: models.LikeTargetComment, ID: "t1"}
	require.NoError(t, store.Likes.Create(ctx, models.NewLike("l3", "alice", other, time.Now())))

	found, err := store.Likes.Find(ctx, "alice", target)
	require.NoError(t, err)
	assert.Equal(t, "l1", found.ID)
}

func TestMemorySubscriptionsEnforceUniquePair(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()

	sub := models.Subscription{ID: "s1", SubscriberID: "alice", ChannelID: "bob", CreatedAt: time.Now()}
	require.NoError(t, store.Subscriptions.Create(ctx, sub))
	sub.ID = "s2"
	require.ErrorIs(t, store.Subscriptions.Create(ctx, sub), ErrConflict)

	count, err := store.Subscriptions.CountByChannel(ctx, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = store.Subscriptions.CountBySubscriber(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestMemoryCommentsStablePaging(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	seedAccount(t, store, "alice")
	require.NoError(t, store.Videos.Create(ctx, models.Video{ID: "v1", OwnerID: "alice", IsPublished: true}))

	created := time.Now().UTC()
	for i := 0; i < 12; i++ {
		require.NoError(t, store.Comments.Create(ctx, models.Comment{
			ID:        fmt.Sprintf("c%02d", i),
			OwnerID:   "alice",
			VideoID:   "v1",
			Content:   "same instant",
			CreatedAt: created,
		}))
	}

	seen := map[string]bool{}
	for offset := 0; offset < 12; offset += 5 {
		page, err := store.Comments.ListByVideo(ctx, "v1", offset, 5)
		require.NoError(t, err)
		for _, comment := range page {
			assert.False(t, seen[comment.ID], "comment %s repeated across pages", comment.ID)
			seen[comment.ID] = true
		}
	}
	assert.Len(t, seen, 12)

	tail, err := store.Comments.ListByVideo(ctx, "v1", 5, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, tail, 7)
	beyond, err := store.Comments.ListByVideo(ctx, "v1", math.MaxInt, 5)
	require.NoError(t, err)
	assert.Empty(t, beyond)

	count, err := store.Comments.CountByVideo(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 12, count)

	require.ErrorIs(t, store.Comments.Create(ctx, models.Comment{ID: "x", VideoID: "missing"}), ErrNotFound)
}

func TestMemoryVideoListing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	seedAccount(t, store, "alice")
	seedAccount(t, store, "bob")

	base := time.Now().UTC()
	videos := []models.Video{
		{ID: "v1", OwnerID: "alice", Title: "Go Basics", Views: 10, IsPublished: true, CreatedAt: base},
		{ID: "v2", OwnerID: "alice", Title: "Advanced Go", Views: 50, IsPublished: true, CreatedAt: base.Add(time.Minute)},
		{ID: "v3", OwnerID: "alice", Title: "Draft go", IsPublished: false, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "v4", OwnerID: "bob", Title: "Cooking", Views: 5, IsPublished: true, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, v := range videos {
		require.NoError(t, store.Videos.Create(ctx, v))
	}

	page, total, err := store.Videos.List(ctx, VideoQuery{Search: "GO", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "v2", page[0].ID)

	page, total, err = store.Videos.List(ctx, VideoQuery{Search: "go", ViewerID: "alice", SortBy: SortByViews, Ascending: true, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"v3", "v1", "v2"}, []string{page[0].ID, page[1].ID, page[2].ID})

	page, total, err = store.Videos.List(ctx, VideoQuery{OwnerID: "bob", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "v4", page[0].ID)

	page, total, err = store.Videos.List(ctx, VideoQuery{Offset: 1, Limit: math.MaxInt})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)

	require.NoError(t, store.Videos.IncrementViews(ctx, "v4"))
	v4, err := store.Videos.FindByID(ctx, "v4")
	require.NoError(t, err)
	assert.EqualValues(t, 6, v4.Views)
}

func TestMemoryVideoDeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().Store()
	seedAccount(t, store, "alice")
	require.NoError(t, store.Videos.Create(ctx, models.Video{ID: "v1", OwnerID: "alice"}))
	require.NoError(t, store.Comments.Create(ctx, models.Comment{ID: "c1", OwnerID: "alice", VideoID: "v1"}))
	require.NoError(t, store.Likes.Create(ctx, models.NewLike("l1", "alice", models.LikeTarget{Kind: models.LikeTargetVideo, ID: "v1"}, time.Now())))
	require.NoError(t, store.Likes.Create(ctx, models.NewLike("l2", "alice", models.LikeTarget{Kind: models.LikeTargetComment, ID: "c1"}, time.Now())))

	require.NoError(t, store.Videos.Delete(ctx, "v1"))

	_, err := store.Comments.FindByID(ctx, "c1")
	require.ErrorIs(t, err, ErrNotFound)
	likes, err := store.Likes.CountForVideos(ctx, []string{"v1"})
	require.NoError(t, err)
	assert.Zero(t, likes)
	_, err = store.Likes.Find(ctx, "alice", models.LikeTarget{Kind: models.LikeTargetComment, ID: "c1"})
	require.ErrorIs(t, err, ErrNotFound)
}
