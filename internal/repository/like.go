package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"lumigram/internal/model"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Create inserts a like record. Returns ErrAlreadyLiked if duplicate.
func (r *likeRepository) Create(ctx context.Context, postID int64, userID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO likes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
	if err != nil {
		switch pqCode(err) {
		case pqUniqueViolation:
			return model.ErrAlreadyLiked
		case pqForeignKeyViolation:
			return model.ErrPostNotFound
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

// Delete removes a like record. Returns ErrNotLiked if not found.
func (r *likeRepository) Delete(ctx context.Context, postID int64, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotLiked
	}
	return nil
}

func (r *likeRepository) Exists(ctx context.Context, postID int64, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE post_id = $1 AND user_id = $2)`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("check like exists: %w", err)
	}
	return exists, nil
}

func (r *likeRepository) Count(ctx context.Context, postID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

// CheckLikes checks which posts the user has liked.
// Returns a map of post_id -> liked (true/false).
func (r *likeRepository) CheckLikes(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error) {
	return checkPairs(ctx, r.db, "likes", userID, postIDs)
}

// checkPairs looks up which of postIDs have a (post_id, user_id) row in table.
func checkPairs(ctx context.Context, db *sqlx.DB, table, userID string, postIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`SELECT post_id FROM %s WHERE user_id = $1 AND post_id = ANY($2)`, table)
	var found []int64
	err := db.SelectContext(ctx, &found, query, userID, pq.Array(postIDs))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check %s: %w", table, err)
	}

	for _, id := range postIDs {
		result[id] = false
	}
	for _, id := range found {
		result[id] = true
	}
	return result, nil
}
