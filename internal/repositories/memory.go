package repositories

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/vidtube/backend/internal/models"
)

// MemoryStore keeps every collection in process memory. It enforces the same
// uniqueness keys as the PostgreSQL schema and is used for tests and local runs.
type MemoryStore struct {
	mu            sync.RWMutex
	accounts      map[string]models.Account
	videos        map[string]models.Video
	comments      map[string]models.Comment
	tweets        map[string]models.Tweet
	likes         map[string]models.Like
	playlists     map[string]models.Playlist
	subscriptions map[string]models.Subscription
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:      make(map[string]models.Account),
		videos:        make(map[string]models.Video),
		comments:      make(map[string]models.Comment),
		tweets:        make(map[string]models.Tweet),
		likes:         make(map[string]models.Like),
		playlists:     make(map[string]models.Playlist),
		subscriptions: make(map[string]models.Subscription),
	}
}

// Store exposes the memory store through the repository interfaces.
func (s *MemoryStore) Store() Store {
	return Store{
		Accounts:      &MemoryAccountRepository{s},
		Videos:        &MemoryVideoRepository{s},
		Comments:      &MemoryCommentRepository{s},
		Tweets:        &MemoryTweetRepository{s},
		Likes:         &MemoryLikeRepository{s},
		Playlists:     &MemoryPlaylistRepository{s},
		Subscriptions: &MemorySubscriptionRepository{s},
	}
}

func cloneAccount(a models.Account) models.Account {
	a.WatchHistory = slices.Clone(a.WatchHistory)
	return a
}

func clonePlaylist(p models.Playlist) models.Playlist {
	p.VideoIDs = slices.Clone(p.VideoIDs)
	return p
}

// newestFirst orders by creation time descending with id as a tiebreak.
func newestFirst[T any](items []T, created func(T) int64, id func(T) string) {
	slices.SortFunc(items, func(a, b T) int {
		if c := cmp.Compare(created(b), created(a)); c != 0 {
			return c
		}
		return cmp.Compare(id(b), id(a))
	})
}

// MemoryAccountRepository implements AccountRepository over a MemoryStore.
type MemoryAccountRepository struct{ s *MemoryStore }

func (r *MemoryAccountRepository) Create(_ context.Context, account models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[account.ID]; ok {
		return ErrConflict
	}
	for _, existing := range r.s.accounts {
		if existing.Username == account.Username || existing.Email == account.Email {
			return ErrConflict
		}
	}
	r.s.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (r *MemoryAccountRepository) FindByID(_ context.Context, id string) (models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	account, ok := r.s.accounts[id]
	if !ok {
		return models.Account{}, ErrNotFound
	}
	return cloneAccount(account), nil
}

func (r *MemoryAccountRepository) FindByIDs(_ context.Context, ids []string) (map[string]models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[string]models.Account, len(ids))
	for _, id := range ids {
		if account, ok := r.s.accounts[id]; ok {
			result[id] = cloneAccount(account)
		}
	}
	return result, nil
}

func (r *MemoryAccountRepository) FindByUsername(_ context.Context, username string) (models.Account, error) {
	return r.findBy(func(a models.Account) bool { return a.Username == username })
}

func (r *MemoryAccountRepository) FindByEmail(_ context.Context, email string) (models.Account, error) {
	return r.findBy(func(a models.Account) bool { return a.Email == email })
}

func (r *MemoryAccountRepository) findBy(match func(models.Account) bool) (models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, account := range r.s.accounts {
		if match(account) {
			return cloneAccount(account), nil
		}
	}
	return models.Account{}, ErrNotFound
}

func (r *MemoryAccountRepository) Update(_ context.Context, account models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.accounts[account.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range r.s.accounts {
		if id != account.ID && other.Email == account.Email {
			return ErrConflict
		}
	}

	existing.DisplayName = account.DisplayName
	existing.Email = account.Email
	existing.PasswordHash = account.PasswordHash
	existing.AvatarURL = account.AvatarURL
	existing.CoverImageURL = account.CoverImageURL
	existing.UpdatedAt = account.UpdatedAt
	r.s.accounts[account.ID] = existing
	return nil
}

func (r *MemoryAccountRepository) SetRefreshToken(_ context.Context, accountID, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	account, ok := r.s.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	account.RefreshToken = token
	r.s.accounts[accountID] = account
	return nil
}

func (r *MemoryAccountRepository) RecordWatch(_ context.Context, accountID, videoID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	account, ok := r.s.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	history := make([]string, 0, len(account.WatchHistory)+1)
	history = append(history, videoID)
	for _, id := range account.WatchHistory {
		if id != videoID {
			history = append(history, id)
		}
	}
	account.WatchHistory = history
	r.s.accounts[accountID] = account
	return nil
}

// MemoryVideoRepository implements VideoRepository over a MemoryStore.
type MemoryVideoRepository struct{ s *MemoryStore }

func (r *MemoryVideoRepository) Create(_ context.Context, video models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.videos[video.ID]; ok {
		return ErrConflict
	}
	if _, ok := r.s.accounts[video.OwnerID]; !ok {
		return ErrNotFound
	}
	r.s.videos[video.ID] = video
	return nil
}

func (r *MemoryVideoRepository) FindByID(_ context.Context, id string) (models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	video, ok := r.s.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	return video, nil
}

func (r *MemoryVideoRepository) FindByIDs(_ context.Context, ids []string) (map[string]models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[string]models.Video, len(ids))
	for _, id := range ids {
		if video, ok := r.s.videos[id]; ok {
			result[id] = video
		}
	}
	return result, nil
}

func (r *MemoryVideoRepository) List(_ context.Context, query VideoQuery) ([]models.Video, int, error) {
	r.s.mu.RLock()
	search := strings.ToLower(strings.TrimSpace(query.Search))
	var matched []models.Video
	for _, video := range r.s.videos {
		if !video.IsPublished && (query.ViewerID == "" || video.OwnerID != query.ViewerID) {
			continue
		}
		if query.OwnerID != "" && video.OwnerID != query.OwnerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(video.Title), search) {
			continue
		}
		matched = append(matched, video)
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b models.Video) int {
		var c int
		switch query.SortBy {
		case SortByViews:
			c = cmp.Compare(a.Views, b.Views)
		case SortByDuration:
			c = cmp.Compare(a.Duration, b.Duration)
		case SortByTitle:
			c = cmp.Compare(a.Title, b.Title)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if !query.Ascending {
			c = -c
		}
		return c
	})

	total := len(matched)
	start := min(max(query.Offset, 0), total)
	end := total
	if query.Limit > 0 {
		end = start + min(query.Limit, total-start)
	}
	return matched[start:end], total, nil
}

func (r *MemoryVideoRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Video, error) {
	r.s.mu.RLock()
	var videos []models.Video
	for _, video := range r.s.videos {
		if video.OwnerID == ownerID {
			videos = append(videos, video)
		}
	}
	r.s.mu.RUnlock()

	newestFirst(videos, func(v models.Video) int64 { return v.CreatedAt.UnixNano() }, func(v models.Video) string { return v.ID })
	return videos, nil
}

func (r *MemoryVideoRepository) Update(_ context.Context, video models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.videos[video.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = video.Title
	existing.Description = video.Description
	existing.ThumbnailURL = video.ThumbnailURL
	existing.IsPublished = video.IsPublished
	existing.UpdatedAt = video.UpdatedAt
	r.s.videos[video.ID] = existing
	return nil
}

// Delete removes a video together with its comments and every like on it.
func (r *MemoryVideoRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.videos[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.videos, id)
	for commentID, comment := range r.s.comments {
		if comment.VideoID == id {
			delete(r.s.comments, commentID)
			r.s.deleteLikesLocked(func(l models.Like) bool { return l.CommentID == commentID })
		}
	}
	r.s.deleteLikesLocked(func(l models.Like) bool { return l.VideoID == id })
	return nil
}

func (r *MemoryVideoRepository) IncrementViews(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	video, ok := r.s.videos[id]
	if !ok {
		return ErrNotFound
	}
	video.Views++
	r.s.videos[id] = video
	return nil
}

func (s *MemoryStore) deleteLikesLocked(match func(models.Like) bool) {
	for id, like := range s.likes {
		if match(like) {
			delete(s.likes, id)
		}
	}
}

// MemoryCommentRepository implements CommentRepository over a MemoryStore.
type MemoryCommentRepository struct{ s *MemoryStore }

func (r *MemoryCommentRepository) Create(_ context.Context, comment models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[comment.ID]; ok {
		return ErrConflict
	}
	if _, ok := r.s.videos[comment.VideoID]; !ok {
		return ErrNotFound
	}
	r.s.comments[comment.ID] = comment
	return nil
}

func (r *MemoryCommentRepository) FindByID(_ context.Context, id string) (models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	comment, ok := r.s.comments[id]
	if !ok {
		return models.Comment{}, ErrNotFound
	}
	return comment, nil
}

func (r *MemoryCommentRepository) Update(_ context.Context, comment models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.comments[comment.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Content = comment.Content
	existing.UpdatedAt = comment.UpdatedAt
	r.s.comments[comment.ID] = existing
	return nil
}

func (r *MemoryCommentRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.comments, id)
	r.s.deleteLikesLocked(func(l models.Like) bool { return l.CommentID == id })
	return nil
}

func (r *MemoryCommentRepository) byVideo(videoID string) []models.Comment {
	r.s.mu.RLock()
	var comments []models.Comment
	for _, comment := range r.s.comments {
		if comment.VideoID == videoID {
			comments = append(comments, comment)
		}
	}
	r.s.mu.RUnlock()

	newestFirst(comments, func(c models.Comment) int64 { return c.CreatedAt.UnixNano() }, func(c models.Comment) string { return c.ID })
	return comments
}

func (r *MemoryCommentRepository) ListByVideo(_ context.Context, videoID string, offset, limit int) ([]models.Comment, error) {
	comments := r.byVideo(videoID)
	start := min(max(offset, 0), len(comments))
	end := start + min(max(limit, 0), len(comments)-start)
	return comments[start:end], nil
}

func (r *MemoryCommentRepository) CountByVideo(_ context.Context, videoID string) (int, error) {
	return len(r.byVideo(videoID)), nil
}

func (r *MemoryCommentRepository) DeleteByVideo(_ context.Context, videoID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, comment := range r.s.comments {
		if comment.VideoID == videoID {
			delete(r.s.comments, id)
		}
	}
	return nil
}

// MemoryTweetRepository implements TweetRepository over a MemoryStore.
type MemoryTweetRepository struct{ s *MemoryStore }

func (r *MemoryTweetRepository) Create(_ context.Context, tweet models.Tweet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tweets[tweet.ID]; ok {
		return ErrConflict
	}
	if _, ok := r.s.accounts[tweet.OwnerID]; !ok {
		return ErrNotFound
	}
	r.s.tweets[tweet.ID] = tweet
	return nil
}

func (r *MemoryTweetRepository) FindByID(_ context.Context, id string) (models.Tweet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tweet, ok := r.s.tweets[id]
	if !ok {
		return models.Tweet{}, ErrNotFound
	}
	return tweet, nil
}

func (r *MemoryTweetRepository) Update(_ context.Context, tweet models.Tweet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tweets[tweet.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Content = tweet.Content
	existing.UpdatedAt = tweet.UpdatedAt
	r.s.tweets[tweet.ID] = existing
	return nil
}

func (r *MemoryTweetRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tweets[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.tweets, id)
	r.s.deleteLikesLocked(func(l models.Like) bool { return l.TweetID == id })
	return nil
}

func (r *MemoryTweetRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Tweet, error) {
	r.s.mu.RLock()
	var tweets []models.Tweet
	for _, tweet := range r.s.tweets {
		if tweet.OwnerID == ownerID {
			tweets = append(tweets, tweet)
		}
	}
	r.s.mu.RUnlock()

	newestFirst(tweets, func(t models.Tweet) int64 { return t.CreatedAt.UnixNano() }, func(t models.Tweet) string { return t.ID })
	return tweets, nil
}

// MemoryLikeRepository implements LikeRepository over a MemoryStore.
type MemoryLikeRepository struct{ s *MemoryStore }

func (r *MemoryLikeRepository) Create(_ context.Context, like models.Like) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.likes[like.ID]; ok {
		return ErrConflict
	}
	target := like.Target()
	for _, existing := range r.s.likes {
		if existing.LikedBy == like.LikedBy && existing.Target() == target {
			return ErrConflict
		}
	}
	r.s.likes[like.ID] = like
	return nil
}

func (r *MemoryLikeRepository) Find(_ context.Context, actorID string, target models.LikeTarget) (models.Like, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, like := range r.s.likes {
		if like.LikedBy == actorID && like.Target() == target {
			return like, nil
		}
	}
	return models.Like{}, ErrNotFound
}

func (r *MemoryLikeRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.likes[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.likes, id)
	return nil
}

func (r *MemoryLikeRepository) DeleteForTarget(_ context.Context, target models.LikeTarget) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.deleteLikesLocked(func(l models.Like) bool { return l.Target() == target })
	return nil
}

func (r *MemoryLikeRepository) ListVideoLikes(_ context.Context, actorID string) ([]models.Like, error) {
	r.s.mu.RLock()
	var likes []models.Like
	for _, like := range r.s.likes {
		if like.LikedBy == actorID && like.VideoID != "" {
			likes = append(likes, like)
		}
	}
	r.s.mu.RUnlock()

	newestFirst(likes, func(l models.Like) int64 { return l.CreatedAt.UnixNano() }, func(l models.Like) string { return l.ID })
	return likes, nil
}

func (r *MemoryLikeRepository) CountForVideos(_ context.Context, videoIDs []string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var count int64
	for _, like := range r.s.likes {
		if like.VideoID != "" && slices.Contains(videoIDs, like.VideoID) {
			count++
		}
	}
	return count, nil
}

// MemoryPlaylistRepository implements PlaylistRepository over a MemoryStore.
type MemoryPlaylistRepository struct{ s *MemoryStore }

func (r *MemoryPlaylistRepository) Create(_ context.Context, playlist models.Playlist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.playlists[playlist.ID]; ok {
		return ErrConflict
	}
	r.s.playlists[playlist.ID] = clonePlaylist(playlist)
	return nil
}

func (r *MemoryPlaylistRepository) FindByID(_ context.Context, id string) (models.Playlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	playlist, ok := r.s.playlists[id]
	if !ok {
		return models.Playlist{}, ErrNotFound
	}
	return clonePlaylist(playlist), nil
}

func (r *MemoryPlaylistRepository) Update(_ context.Context, playlist models.Playlist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.playlists[playlist.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = playlist.Name
	existing.Description = playlist.Description
	existing.VideoIDs = slices.Clone(playlist.VideoIDs)
	existing.UpdatedAt = playlist.UpdatedAt
	r.s.playlists[playlist.ID] = existing
	return nil
}

func (r *MemoryPlaylistRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.playlists[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.playlists, id)
	return nil
}

func (r *MemoryPlaylistRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Playlist, error) {
	r.s.mu.RLock()
	var playlists []models.Playlist
	for _, playlist := range r.s.playlists {
		if playlist.OwnerID == ownerID {
			playlists = append(playlists, clonePlaylist(playlist))
		}
	}
	r.s.mu.RUnlock()

	newestFirst(playlists, func(p models.Playlist) int64 { return p.CreatedAt.UnixNano() }, func(p models.Playlist) string { return p.ID })
	return playlists, nil
}

// MemorySubscriptionRepository implements SubscriptionRepository over a MemoryStore.
type MemorySubscriptionRepository struct{ s *MemoryStore }

func (r *MemorySubscriptionRepository) Create(_ context.Context, subscription models.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.subscriptions[subscription.ID]; ok {
		return ErrConflict
	}
	for _, existing := range r.s.subscriptions {
		if existing.SubscriberID == subscription.SubscriberID && existing.ChannelID == subscription.ChannelID {
			return ErrConflict
		}
	}
	r.s.subscriptions[subscription.ID] = subscription
	return nil
}

func (r *MemorySubscriptionRepository) Find(_ context.Context, subscriberID, channelID string) (models.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, sub := range r.s.subscriptions {
		if sub.SubscriberID == subscriberID && sub.ChannelID == channelID {
			return sub, nil
		}
	}
	return models.Subscription{}, ErrNotFound
}

func (r *MemorySubscriptionRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.subscriptions[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.subscriptions, id)
	return nil
}

func (r *MemorySubscriptionRepository) CountByChannel(ctx context.Context, channelID string) (int64, error) {
	subs, err := r.ListByChannel(ctx, channelID)
	return int64(len(subs)), err
}

func (r *MemorySubscriptionRepository) CountBySubscriber(ctx context.Context, subscriberID string) (int64, error) {
	subs, err := r.ListBySubscriber(ctx, subscriberID)
	return int64(len(subs)), err
}

func (r *MemorySubscriptionRepository) ListByChannel(_ context.Context, channelID string) ([]models.Subscription, error) {
	return r.filter(func(s models.Subscription) bool { return s.ChannelID == channelID }), nil
}

func (r *MemorySubscriptionRepository) ListBySubscriber(_ context.Context, subscriberID string) ([]models.Subscription, error) {
	return r.filter(func(s models.Subscription) bool { return s.SubscriberID == subscriberID }), nil
}

func (r *MemorySubscriptionRepository) filter(match func(models.Subscription) bool) []models.Subscription {
	r.s.mu.RLock()
	var subs []models.Subscription
	for _, sub := range r.s.subscriptions {
		if match(sub) {
			subs = append(subs, sub)
		}
	}
	r.s.mu.RUnlock()

	newestFirst(subs, func(s models.Subscription) int64 { return s.CreatedAt.UnixNano() }, func(s models.Subscription) string { return s.ID })
	return subs
}
