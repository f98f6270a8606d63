package repositories

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
// Partial unique indexes on (liked_by, target) make concurrent toggles safe.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

const likeColumns = `id, liked_by, COALESCE(video_id, ''), COALESCE(comment_id, ''), COALESCE(tweet_id, ''), created_at`

var likeTargetColumns = map[models.LikeTargetKind]string{
	models.LikeTargetVideo:   "video_id",
	models.LikeTargetComment: "comment_id",
	models.LikeTargetTweet:   "tweet_id",
}

func likeTargetColumn(kind models.LikeTargetKind) (string, error) {
	column, ok := likeTargetColumns[kind]
	if !ok {
		return "", fmt.Errorf("unknown like target kind %q", kind)
	}
	return column, nil
}

func scanLike(row rowScanner) (models.Like, error) {
	var like models.Like
	err := row.Scan(&like.ID, &like.LikedBy, &like.VideoID, &like.CommentID, &like.TweetID, &like.CreatedAt)
	return like, err
}

// Create stores a like. A duplicate (actor, target) pair yields ErrConflict.
func (r *PostgresLikeRepository) Create(ctx context.Context, like models.Like) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, liked_by, video_id, comment_id, tweet_id, created_at)
        VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6)
    `, like.ID, like.LikedBy, like.VideoID, like.CommentID, like.TweetID, like.CreatedAt)
	if err != nil {
		return translateWriteError(err, "insert like")
	}
	return nil
}

func (r *PostgresLikeRepository) Find(ctx context.Context, actorID string, target models.LikeTarget) (models.Like, error) {
	column, err := likeTargetColumn(target.Kind)
	if err != nil {
		return models.Like{}, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Like{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	like, err := scanLike(conn.QueryRow(ctx,
		`SELECT `+likeColumns+` FROM likes WHERE liked_by = $1 AND `+column+` = $2`, actorID, target.ID))
	if err != nil {
		return models.Like{}, translateReadError(err, "select like")
	}
	return like, nil
}

func (r *PostgresLikeRepository) Delete(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.pool, "delete like", `DELETE FROM likes WHERE id = $1`, id)
}

// DeleteForTarget removes every like pointing at target.
func (r *PostgresLikeRepository) DeleteForTarget(ctx context.Context, target models.LikeTarget) error {
	column, err := likeTargetColumn(target.Kind)
	if err != nil {
		return err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM likes WHERE `+column+` = $1`, target.ID); err != nil {
		return fmt.Errorf("delete likes for %s: %w", target.Kind, err)
	}
	return nil
}

func (r *PostgresLikeRepository) ListVideoLikes(ctx context.Context, actorID string) ([]models.Like, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+likeColumns+`
        FROM likes
        WHERE liked_by = $1 AND video_id IS NOT NULL
        ORDER BY created_at DESC, id DESC
    `, actorID)
	if err != nil {
		return nil, fmt.Errorf("query video likes: %w", err)
	}
	defer rows.Close()

	var likes []models.Like
	for rows.Next() {
		like, err := scanLike(rows)
		if err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		likes = append(likes, like)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate likes: %w", err)
	}
	return likes, nil
}

func (r *PostgresLikeRepository) CountForVideos(ctx context.Context, videoIDs []string) (int64, error) {
	if len(videoIDs) == 0 {
		return 0, nil
	}
	return queryCount(ctx, r.pool, "count video likes", `SELECT COUNT(*) FROM likes WHERE video_id = ANY($1)`, videoIDs)
}

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

const subscriptionColumns = `id, subscriber_id, channel_id, created_at`

func scanSubscription(row rowScanner) (models.Subscription, error) {
	var sub models.Subscription
	err := row.Scan(&sub.ID, &sub.SubscriberID, &sub.ChannelID, &sub.CreatedAt)
	return sub, err
}

// Create stores a subscription. A duplicate pair yields ErrConflict.
func (r *PostgresSubscriptionRepository) Create(ctx context.Context, subscription models.Subscription) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
    `, subscription.ID, subscription.SubscriberID, subscription.ChannelID, subscription.CreatedAt)
	if err != nil {
		return translateWriteError(err, "insert subscription")
	}
	return nil
}

func (r *PostgresSubscriptionRepository) Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sub, err := scanSubscription(conn.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`,
		subscriberID, channelID))
	if err != nil {
		return models.Subscription{}, translateReadError(err, "select subscription")
	}
	return sub, nil
}

func (r *PostgresSubscriptionRepository) Delete(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.pool, "delete subscription", `DELETE FROM subscriptions WHERE id = $1`, id)
}

func (r *PostgresSubscriptionRepository) CountByChannel(ctx context.Context, channelID string) (int64, error) {
	return queryCount(ctx, r.pool, "count subscribers", `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID)
}

func (r *PostgresSubscriptionRepository) CountBySubscriber(ctx context.Context, subscriberID string) (int64, error) {
	return queryCount(ctx, r.pool, "count subscriptions", `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID)
}

func (r *PostgresSubscriptionRepository) ListByChannel(ctx context.Context, channelID string) ([]models.Subscription, error) {
	return r.list(ctx, `
        SELECT `+subscriptionColumns+` FROM subscriptions WHERE channel_id = $1 ORDER BY created_at DESC, id DESC
    `, channelID)
}

func (r *PostgresSubscriptionRepository) ListBySubscriber(ctx context.Context, subscriberID string) ([]models.Subscription, error) {
	return r.list(ctx, `
        SELECT `+subscriptionColumns+` FROM subscriptions WHERE subscriber_id = $1 ORDER BY created_at DESC, id DESC
    `, subscriberID)
}

func (r *PostgresSubscriptionRepository) list(ctx context.Context, query, arg string) ([]models.Subscription, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}
