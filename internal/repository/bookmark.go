package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"lumigram/internal/model"
)

type bookmarkRepository struct {
	db *sqlx.DB
}

func NewBookmarkRepository(db *sqlx.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) Create(ctx context.Context, postID int64, userID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO bookmarks (post_id, user_id) VALUES ($1, $2)`, postID, userID)
	if err != nil {
		switch pqCode(err) {
		case pqUniqueViolation:
			return model.ErrAlreadyBookmarked
		case pqForeignKeyViolation:
			return model.ErrPostNotFound
		}
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

func (r *bookmarkRepository) Delete(ctx context.Context, postID int64, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotBookmarked
	}
	return nil
}

func (r *bookmarkRepository) Exists(ctx context.Context, postID int64, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM bookmarks WHERE post_id = $1 AND user_id = $2)`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("check bookmark exists: %w", err)
	}
	return exists, nil
}

func (r *bookmarkRepository) CheckBookmarks(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error) {
	return checkPairs(ctx, r.db, "bookmarks", userID, postIDs)
}
