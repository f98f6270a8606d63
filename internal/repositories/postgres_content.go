package repositories

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

const commentColumns = `id, owner_id, video_id, content, created_at, updated_at`

func scanComment(row rowScanner) (models.Comment, error) {
	var comment models.Comment
	err := row.Scan(&comment.ID, &comment.OwnerID, &comment.VideoID, &comment.Content, &comment.CreatedAt, &comment.UpdatedAt)
	return comment, err
}

// Create stores a new comment. A missing video or owner yields ErrNotFound.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, owner_id, video_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, comment.ID, comment.OwnerID, comment.VideoID, comment.Content, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		return translateWriteError(err, "insert comment")
	}
	return nil
}

func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	comment, err := scanComment(conn.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		return models.Comment{}, translateReadError(err, "select comment")
	}
	return comment, nil
}

func (r *PostgresCommentRepository) Update(ctx context.Context, comment models.Comment) error {
	return execAffectingOne(ctx, r.pool, "update comment", `
        UPDATE comments SET content = $2, updated_at = $3 WHERE id = $1
    `, comment.ID, comment.Content, comment.UpdatedAt)
}

func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.pool, "delete comment", `DELETE FROM comments WHERE id = $1`, id)
}

// ListByVideo pages a video's comments newest first.
func (r *PostgresCommentRepository) ListByVideo(ctx context.Context, videoID string, offset, limit int) ([]models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+commentColumns+`
        FROM comments
        WHERE video_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, videoID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

func (r *PostgresCommentRepository) CountByVideo(ctx context.Context, videoID string) (int, error) {
	count, err := queryCount(ctx, r.pool, "count comments", `SELECT COUNT(*) FROM comments WHERE video_id = $1`, videoID)
	return int(count), err
}

func (r *PostgresCommentRepository) DeleteByVideo(ctx context.Context, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM comments WHERE video_id = $1`, videoID); err != nil {
		return fmt.Errorf("delete comments for video: %w", err)
	}
	return nil
}

// PostgresTweetRepository provides PostgreSQL-backed persistence for tweets.
type PostgresTweetRepository struct {
	pool db.Pool
}

// NewPostgresTweetRepository constructs a tweet repository backed by PostgreSQL.
func NewPostgresTweetRepository(pool db.Pool) *PostgresTweetRepository {
	return &PostgresTweetRepository{pool: pool}
}

const tweetColumns = `id, owner_id, content, created_at, updated_at`

func scanTweet(row rowScanner) (models.Tweet, error) {
	var tweet models.Tweet
	err := row.Scan(&tweet.ID, &tweet.OwnerID, &tweet.Content, &tweet.CreatedAt, &tweet.UpdatedAt)
	return tweet, err
}

func (r *PostgresTweetRepository) Create(ctx context.Context, tweet models.Tweet) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO tweets (id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
    `, tweet.ID, tweet.OwnerID, tweet.Content, tweet.CreatedAt, tweet.UpdatedAt)
	if err != nil {
		return translateWriteError(err, "insert tweet")
	}
	return nil
}

func (r *PostgresTweetRepository) FindByID(ctx context.Context, id string) (models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tweet, err := scanTweet(conn.QueryRow(ctx, `SELECT `+tweetColumns+` FROM tweets WHERE id = $1`, id))
	if err != nil {
		return models.Tweet{}, translateReadError(err, "select tweet")
	}
	return tweet, nil
}

func (r *PostgresTweetRepository) Update(ctx context.Context, tweet models.Tweet) error {
	return execAffectingOne(ctx, r.pool, "update tweet", `
        UPDATE tweets SET content = $2, updated_at = $3 WHERE id = $1
    `, tweet.ID, tweet.Content, tweet.UpdatedAt)
}

func (r *PostgresTweetRepository) Delete(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.pool, "delete tweet", `DELETE FROM tweets WHERE id = $1`, id)
}

// ListByOwner returns the owner's tweets newest first.
func (r *PostgresTweetRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+tweetColumns+`
        FROM tweets
        WHERE owner_id = $1
        ORDER BY created_at DESC, id DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query tweets: %w", err)
	}
	defer rows.Close()

	var tweets []models.Tweet
	for rows.Next() {
		tweet, err := scanTweet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tweet: %w", err)
		}
		tweets = append(tweets, tweet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweets: %w", err)
	}
	return tweets, nil
}

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

const playlistColumns = `id, owner_id, name, description, video_ids, created_at, updated_at`

func scanPlaylist(row rowScanner) (models.Playlist, error) {
	var playlist models.Playlist
	err := row.Scan(&playlist.ID, &playlist.OwnerID, &playlist.Name, &playlist.Description, &playlist.VideoIDs,
		&playlist.CreatedAt, &playlist.UpdatedAt)
	return playlist, err
}

func nonNilIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, video_ids, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description, nonNilIDs(playlist.VideoIDs),
		playlist.CreatedAt, playlist.UpdatedAt)
	if err != nil {
		return translateWriteError(err, "insert playlist")
	}
	return nil
}

func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	playlist, err := scanPlaylist(conn.QueryRow(ctx, `SELECT `+playlistColumns+` FROM playlists WHERE id = $1`, id))
	if err != nil {
		return models.Playlist{}, translateReadError(err, "select playlist")
	}
	return playlist, nil
}

// Update writes name, description and membership of a playlist.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, playlist models.Playlist) error {
	return execAffectingOne(ctx, r.pool, "update playlist", `
        UPDATE playlists SET name = $2, description = $3, video_ids = $4, updated_at = $5 WHERE id = $1
    `, playlist.ID, playlist.Name, playlist.Description, nonNilIDs(playlist.VideoIDs), playlist.UpdatedAt)
}

func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.pool, "delete playlist", `DELETE FROM playlists WHERE id = $1`, id)
}

// ListByOwner returns the owner's playlists newest first.
func (r *PostgresPlaylistRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+playlistColumns+`
        FROM playlists
        WHERE owner_id = $1
        ORDER BY created_at DESC, id DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}
