package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"lumigram/internal/model"
)

type mentionRepository struct {
	db *sqlx.DB
}

func NewMentionRepository(db *sqlx.DB) MentionRepository {
	return &mentionRepository{db: db}
}

func (r *mentionRepository) CreateForPost(ctx context.Context, postID int64, mentionerID string, mentions []model.MentionCandidate) (int, error) {
	return r.insert(ctx, "post_id", postID, mentionerID, mentions)
}

func (r *mentionRepository) CreateForComment(ctx context.Context, commentID int64, mentionerID string, mentions []model.MentionCandidate) (int, error) {
	return r.insert(ctx, "comment_id", commentID, mentionerID, mentions)
}

// insert writes one row per mention under the given parent column. Rows for
// users that do not exist are skipped rather than failing the batch.
func (r *mentionRepository) insert(ctx context.Context, parentColumn string, parentID int64, mentionerID string, mentions []model.MentionCandidate) (int, error) {
	query := fmt.Sprintf(`
		INSERT INTO mentions (%s, mentioned_user_id, mentioner_user_id, display_text)
		SELECT $1::bigint, u.id, $3::text, $4::text
		FROM users u
		WHERE u.id = $2
	`, parentColumn)

	written := 0
	for _, m := range mentions {
		result, err := r.db.ExecContext(ctx, query, parentID, m.UserID, mentionerID, m.DisplayText)
		if err != nil {
			return written, fmt.Errorf("insert mention for %s: %w", m.UserID, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return written, fmt.Errorf("get rows affected: %w", err)
		}
		written += int(n)
	}
	return written, nil
}

const mentionColumns = `id, post_id, comment_id, mentioned_user_id, mentioner_user_id, display_text, created_at`

func (r *mentionRepository) ListForPosts(ctx context.Context, postIDs []int64) (map[int64][]model.Mention, error) {
	result := make(map[int64][]model.Mention)
	if len(postIDs) == 0 {
		return result, nil
	}

	var mentions []model.Mention
	query := `SELECT ` + mentionColumns + ` FROM mentions WHERE post_id = ANY($1) ORDER BY id`
	if err := r.db.SelectContext(ctx, &mentions, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("list post mentions: %w", err)
	}

	for _, m := range mentions {
		result[*m.PostID] = append(result[*m.PostID], m)
	}
	return result, nil
}

func (r *mentionRepository) ListForComments(ctx context.Context, commentIDs []int64) (map[int64][]model.Mention, error) {
	result := make(map[int64][]model.Mention)
	if len(commentIDs) == 0 {
		return result, nil
	}

	var mentions []model.Mention
	query := `SELECT ` + mentionColumns + ` FROM mentions WHERE comment_id = ANY($1) ORDER BY id`
	if err := r.db.SelectContext(ctx, &mentions, query, pq.Array(commentIDs)); err != nil {
		return nil, fmt.Errorf("list comment mentions: %w", err)
	}

	for _, m := range mentions {
		result[*m.CommentID] = append(result[*m.CommentID], m)
	}
	return result, nil
}
