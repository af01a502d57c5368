package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"lumigram/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a post and fills in its id and timestamps.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (user_id, image_url, image_key, caption)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query, post.UserID, post.ImageURL, post.ImageKey, post.Caption)
	if err := row.Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt); err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return model.ErrUserNotFound
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// Exists checks if a post exists.
func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// Delete hard-deletes a post. Likes, bookmarks, comments, hashtag links and
// mentions go with it through ON DELETE CASCADE.
func (r *postRepository) Delete(ctx context.Context, postID int64, userID string) (*model.Post, error) {
	query := `
		DELETE FROM posts
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, image_url, image_key, caption, created_at, updated_at
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		// Check if post exists but belongs to different user
		exists, existsErr := r.Exists(ctx, postID)
		if existsErr != nil {
			return nil, existsErr
		}
		if exists {
			return nil, model.ErrNotPostOwner
		}
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete post: %w", err)
	}
	return &post, nil
}
