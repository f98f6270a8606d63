package repositories

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// NewPostgresStore wires every collection to the PostgreSQL pool.
func NewPostgresStore(pool db.Pool) Store {
	return Store{
		Accounts:      NewPostgresAccountRepository(pool),
		Videos:        NewPostgresVideoRepository(pool),
		Comments:      NewPostgresCommentRepository(pool),
		Tweets:        NewPostgresTweetRepository(pool),
		Likes:         NewPostgresLikeRepository(pool),
		Playlists:     NewPostgresPlaylistRepository(pool),
		Subscriptions: NewPostgresSubscriptionRepository(pool),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func execAffectingOne(ctx context.Context, pool db.Pool, op, query string, args ...any) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return translateWriteError(err, op)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func queryCount(ctx context.Context, pool db.Pool, op, query string, args ...any) (int64, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	if err := conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// PostgresAccountRepository provides PostgreSQL-backed persistence for accounts.
type PostgresAccountRepository struct {
	pool db.Pool
}

// NewPostgresAccountRepository constructs an account repository backed by PostgreSQL.
func NewPostgresAccountRepository(pool db.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

const accountColumns = `id, username, email, display_name, password_hash, avatar_url, cover_image_url,
        watch_history, COALESCE(refresh_token, ''), created_at, updated_at`

func scanAccount(row rowScanner) (models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.DisplayName,
		&account.PasswordHash,
		&account.AvatarURL,
		&account.CoverImageURL,
		&account.WatchHistory,
		&account.RefreshToken,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}

// Create persists a new account record.
func (r *PostgresAccountRepository) Create(ctx context.Context, account models.Account) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	history := account.WatchHistory
	if history == nil {
		history = []string{}
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO accounts (id, username, email, display_name, password_hash, avatar_url, cover_image_url,
            watch_history, refresh_token, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11)
    `, account.ID, account.Username, account.Email, account.DisplayName, account.PasswordHash, account.AvatarURL,
		account.CoverImageURL, history, account.RefreshToken, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return translateWriteError(err, "insert account")
	}

	return nil
}

// FindByID fetches an account by id.
func (r *PostgresAccountRepository) FindByID(ctx context.Context, id string) (models.Account, error) {
	return r.findOne(ctx, "select account by id", `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

// FindByUsername fetches an account by its normalised username.
func (r *PostgresAccountRepository) FindByUsername(ctx context.Context, username string) (models.Account, error) {
	return r.findOne(ctx, "select account by username", `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
}

// FindByEmail fetches an account by its normalised email address.
func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	return r.findOne(ctx, "select account by email", `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

func (r *PostgresAccountRepository) findOne(ctx context.Context, op, query string, arg string) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	account, err := scanAccount(conn.QueryRow(ctx, query, arg))
	if err != nil {
		return models.Account{}, translateReadError(err, op)
	}
	return account, nil
}

// FindByIDs fetches the accounts with the given ids. Missing ids are absent from the result.
func (r *PostgresAccountRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Account, error) {
	result := make(map[string]models.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query accounts by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		result[account.ID] = account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return result, nil
}

// Update modifies the mutable profile fields of an account.
func (r *PostgresAccountRepository) Update(ctx context.Context, account models.Account) error {
	return execAffectingOne(ctx, r.pool, "update account", `
        UPDATE accounts
        SET display_name = $2, email = $3, password_hash = $4, avatar_url = $5, cover_image_url = $6, updated_at = $7
        WHERE id = $1
    `, account.ID, account.DisplayName, account.Email, account.PasswordHash, account.AvatarURL, account.CoverImageURL,
		account.UpdatedAt)
}

// SetRefreshToken stores the account's current refresh token, or clears it when token is empty.
func (r *PostgresAccountRepository) SetRefreshToken(ctx context.Context, accountID, token string) error {
	return execAffectingOne(ctx, r.pool, "update refresh token", `
        UPDATE accounts SET refresh_token = NULLIF($2, '') WHERE id = $1
    `, accountID, token)
}

// RecordWatch moves videoID to the front of the watch history.
func (r *PostgresAccountRepository) RecordWatch(ctx context.Context, accountID, videoID string) error {
	return execAffectingOne(ctx, r.pool, "record watch", `
        UPDATE accounts
        SET watch_history = array_prepend($2::TEXT, array_remove(watch_history, $2::TEXT))
        WHERE id = $1
    `, accountID, videoID)
}
