package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"lumigram/internal/model"
)

const commentColumns = `
	c.id, c.post_id, c.user_id, c.content, c.created_at, c.updated_at,
	u.id AS "author.id", u.name AS "author.name", u.image_url AS "author.image_url"`

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a comment and returns it with its author attached.
func (r *commentRepository) Create(ctx context.Context, postID int64, userID, content string) (*model.Comment, error) {
	query := fmt.Sprintf(`
		WITH inserted AS (
			INSERT INTO comments (post_id, user_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, post_id, user_id, content, created_at, updated_at
		)
		SELECT %s
		FROM inserted c
		JOIN users u ON u.id = c.user_id
	`, commentColumns)

	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, postID, userID, content)
	if err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// Delete removes a comment owned by userID. Its mentions are removed by
// ON DELETE CASCADE.
func (r *commentRepository) Delete(ctx context.Context, commentID int64, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, commentID); err != nil {
			return fmt.Errorf("check comment exists: %w", err)
		}
		if exists {
			return model.ErrNotCommentOwner
		}
		return model.ErrCommentNotFound
	}
	return nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`, commentColumns)

	comments := []model.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
