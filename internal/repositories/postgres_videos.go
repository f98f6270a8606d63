package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

const videoColumns = `id, owner_id, video_url, thumbnail_url, title, description, duration, views, is_published,
        created_at, updated_at`

var videoSortColumns = map[VideoSortField]string{
	SortByCreatedAt: "created_at",
	SortByViews:     "views",
	SortByDuration:  "duration",
	SortByTitle:     "title",
}

var likePatternEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanVideo(row rowScanner) (models.Video, error) {
	var video models.Video
	err := row.Scan(
		&video.ID,
		&video.OwnerID,
		&video.VideoURL,
		&video.ThumbnailURL,
		&video.Title,
		&video.Description,
		&video.Duration,
		&video.Views,
		&video.IsPublished,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	return video, err
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, video_url, thumbnail_url, title, description, duration, views, is_published,
            created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, video.ID, video.OwnerID, video.VideoURL, video.ThumbnailURL, video.Title, video.Description, video.Duration,
		video.Views, video.IsPublished, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		return translateWriteError(err, "insert video")
	}

	return nil
}

// FindByID fetches a video by id.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if err != nil {
		return models.Video{}, translateReadError(err, "select video")
	}
	return video, nil
}

// FindByIDs fetches the videos with the given ids. Missing ids are absent from the result.
func (r *PostgresVideoRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Video, error) {
	result := make(map[string]models.Video, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	videos, err := r.queryVideos(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, video := range videos {
		result[video.ID] = video
	}
	return result, nil
}

// List returns one page of videos matching query along with the total match count.
func (r *PostgresVideoRepository) List(ctx context.Context, query VideoQuery) ([]models.Video, int, error) {
	var (
		conditions []string
		args       []any
	)
	addArg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if query.ViewerID != "" {
		conditions = append(conditions, "(is_published OR owner_id = "+addArg(query.ViewerID)+")")
	} else {
		conditions = append(conditions, "is_published")
	}
	if query.OwnerID != "" {
		conditions = append(conditions, "owner_id = "+addArg(query.OwnerID))
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		conditions = append(conditions, "title ILIKE '%' || "+addArg(likePatternEscaper.Replace(search))+" || '%'")
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	total, err := queryCount(ctx, r.pool, "count videos", `SELECT COUNT(*) FROM videos`+where, args...)
	if err != nil {
		return nil, 0, err
	}

	column, ok := videoSortColumns[query.SortBy]
	if !ok {
		column = videoSortColumns[SortByCreatedAt]
	}
	direction := "DESC"
	if query.Ascending {
		direction = "ASC"
	}

	statement := `SELECT ` + videoColumns + ` FROM videos` + where +
		fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction)
	if query.Limit > 0 {
		statement += " LIMIT " + addArg(query.Limit)
	}
	if query.Offset > 0 {
		statement += " OFFSET " + addArg(query.Offset)
	}

	videos, err := r.queryVideos(ctx, statement, args...)
	if err != nil {
		return nil, 0, err
	}
	return videos, int(total), nil
}

// ListByOwner returns every video of the owner, newest first.
func (r *PostgresVideoRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error) {
	return r.queryVideos(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE owner_id = $1
        ORDER BY created_at DESC, id DESC
    `, ownerID)
}

func (r *PostgresVideoRepository) queryVideos(ctx context.Context, query string, args ...any) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

// Update modifies the editable fields of a video.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	return execAffectingOne(ctx, r.pool, "update video", `
        UPDATE videos
        SET title = $2, description = $3, thumbnail_url = $4, is_published = $5, updated_at = $6
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.ThumbnailURL, video.IsPublished, video.UpdatedAt)
}

// Delete removes a video; comments and likes on it cascade.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.pool, "delete video", `DELETE FROM videos WHERE id = $1`, id)
}

// IncrementViews adds one to the view counter of a video.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.pool, "increment video views", `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
}
