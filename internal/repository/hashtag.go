package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"lumigram/internal/model"
)

type hashtagRepository struct {
	db *sqlx.DB
}

func NewHashtagRepository(db *sqlx.DB) HashtagRepository {
	return &hashtagRepository{db: db}
}

// Upsert inserts the tag if absent and returns its id either way. The no-op
// update makes RETURNING yield the existing row on conflict.
func (r *hashtagRepository) Upsert(ctx context.Context, tag string) (int64, error) {
	query := `
		INSERT INTO hashtags (tag)
		VALUES ($1)
		ON CONFLICT (tag) DO UPDATE SET tag = EXCLUDED.tag
		RETURNING id
	`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, tag); err != nil {
		return 0, fmt.Errorf("upsert hashtag %q: %w", tag, err)
	}
	return id, nil
}

// LinkPost attaches a hashtag to a post. Linking twice is a no-op.
func (r *hashtagRepository) LinkPost(ctx context.Context, postID, hashtagID int64) error {
	query := `
		INSERT INTO post_hashtags (post_id, hashtag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, postID, hashtagID); err != nil {
		return fmt.Errorf("link hashtag: %w", err)
	}
	return nil
}

// Search returns tags starting with prefix that are still used by at least
// one post, most used first.
func (r *hashtagRepository) Search(ctx context.Context, prefix string, limit int) ([]model.HashtagResult, error) {
	query := `
		SELECT h.tag, COUNT(ph.post_id) AS post_count
		FROM hashtags h
		JOIN post_hashtags ph ON ph.hashtag_id = h.id
		WHERE h.tag LIKE $1
		GROUP BY h.tag
		ORDER BY post_count DESC, h.tag ASC
		LIMIT $2
	`
	results := []model.HashtagResult{}
	if err := r.db.SelectContext(ctx, &results, query, prefixPattern(prefix), limit); err != nil {
		return nil, fmt.Errorf("search hashtags: %w", err)
	}
	return results, nil
}
