package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"lumigram/internal/model"
)

const feedPostColumns = `
	p.id, p.user_id, p.image_url, p.image_key, p.caption, p.created_at, p.updated_at,
	u.id AS "author.id", u.name AS "author.name", u.image_url AS "author.image_url"`

type feedRepository struct {
	db *sqlx.DB
}

func NewFeedRepository(db *sqlx.DB) FeedRepository {
	return &feedRepository{db: db}
}

// filterClause builds the WHERE clause for a listing. The author filter wins
// over the hashtag filter when both are set.
func filterClause(filter FeedFilter) (string, []interface{}) {
	switch {
	case filter.UserID != "":
		return "WHERE p.user_id = $1", []interface{}{filter.UserID}
	case filter.Hashtag != "":
		return `WHERE EXISTS (
			SELECT 1 FROM post_hashtags ph
			JOIN hashtags h ON h.id = ph.hashtag_id
			WHERE ph.post_id = p.id AND h.tag = $1
		)`, []interface{}{filter.Hashtag}
	default:
		return "", nil
	}
}

// ListPosts returns one page of posts with their authors, newest first.
func (r *feedRepository) ListPosts(ctx context.Context, filter FeedFilter, limit, offset int) ([]model.FeedPost, error) {
	where, args := filterClause(filter)
	n := len(args)
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN users u ON u.id = p.user_id
		%s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $%d OFFSET $%d
	`, feedPostColumns, where, n+1, n+2)
	args = append(args, limit, offset)

	posts := []model.FeedPost{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *feedRepository) CountPosts(ctx context.Context, filter FeedFilter) (int, error) {
	where, args := filterClause(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM posts p %s`, where)

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return total, nil
}

func (r *feedRepository) GetPost(ctx context.Context, postID int64) (*model.FeedPost, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`, feedPostColumns)

	var post model.FeedPost
	err := r.db.GetContext(ctx, &post, query, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get feed post: %w", err)
	}
	return &post, nil
}

// ListBookmarked returns the posts userID bookmarked, most recent bookmark first.
func (r *feedRepository) ListBookmarked(ctx context.Context, userID string, limit, offset int) ([]model.FeedPost, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bookmarks b
		JOIN posts p ON p.id = b.post_id
		JOIN users u ON u.id = p.user_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $2 OFFSET $3
	`, feedPostColumns)

	posts := []model.FeedPost{}
	if err := r.db.SelectContext(ctx, &posts, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("list bookmarked posts: %w", err)
	}
	return posts, nil
}

func (r *feedRepository) CountBookmarked(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM bookmarks WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("count bookmarked posts: %w", err)
	}
	return total, nil
}

// Stats reads counts from the post_stats view. If the view cannot be read
// the counts are computed from the base tables instead.
func (r *feedRepository) Stats(ctx context.Context, postIDs []int64) (map[int64]model.PostStats, error) {
	result := make(map[int64]model.PostStats, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	var rows []model.PostStats
	err := r.db.SelectContext(ctx, &rows, `
		SELECT post_id, like_count, comment_count
		FROM post_stats
		WHERE post_id = ANY($1)
	`, pq.Array(postIDs))
	if err != nil {
		if pqCode(err) == pqUndefinedTable {
			log.Printf("[FeedRepo] post_stats view missing, counting from base tables: posts=%d", len(postIDs))
		} else {
			log.Printf("[FeedRepo] post_stats query failed, counting from base tables: %v", err)
		}
		return r.statsFromBaseTables(ctx, postIDs)
	}

	for _, id := range postIDs {
		result[id] = model.PostStats{PostID: id}
	}
	for _, s := range rows {
		result[s.PostID] = s
	}
	return result, nil
}

type postCount struct {
	PostID int64 `db:"post_id"`
	Count  int   `db:"count"`
}

func (r *feedRepository) statsFromBaseTables(ctx context.Context, postIDs []int64) (map[int64]model.PostStats, error) {
	var likes []postCount
	err := r.db.SelectContext(ctx, &likes, `
		SELECT post_id, COUNT(*) AS count FROM likes WHERE post_id = ANY($1) GROUP BY post_id
	`, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	var comments []postCount
	err = r.db.SelectContext(ctx, &comments, `
		SELECT post_id, COUNT(*) AS count FROM comments WHERE post_id = ANY($1) GROUP BY post_id
	`, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	return mergeCounts(postIDs, likes, comments), nil
}

// mergeCounts combines per-post like and comment counts into one map with an
// entry for every requested post.
func mergeCounts(postIDs []int64, likes, comments []postCount) map[int64]model.PostStats {
	result := make(map[int64]model.PostStats, len(postIDs))
	for _, id := range postIDs {
		result[id] = model.PostStats{PostID: id}
	}
	for _, l := range likes {
		s := result[l.PostID]
		s.PostID = l.PostID
		s.LikeCount = l.Count
		result[l.PostID] = s
	}
	for _, c := range comments {
		s := result[c.PostID]
		s.PostID = c.PostID
		s.CommentCount = c.Count
		result[c.PostID] = s
	}
	return result
}

// RecentComments returns up to perPost comments for each post, newest first.
func (r *feedRepository) RecentComments(ctx context.Context, postIDs []int64, perPost int) (map[int64][]model.Comment, error) {
	result := make(map[int64][]model.Comment)
	if len(postIDs) == 0 || perPost <= 0 {
		return result, nil
	}

	query := `
		SELECT id, post_id, user_id, content, created_at, updated_at,
		       "author.id", "author.name", "author.image_url"
		FROM (
			SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, c.updated_at,
			       u.id AS "author.id", u.name AS "author.name", u.image_url AS "author.image_url",
			       ROW_NUMBER() OVER (PARTITION BY c.post_id ORDER BY c.created_at DESC, c.id DESC) AS rn
			FROM comments c
			JOIN users u ON u.id = c.user_id
			WHERE c.post_id = ANY($1)
		) ranked
		WHERE rn <= $2
		ORDER BY post_id, created_at DESC, id DESC
	`
	var comments []model.Comment
	if err := r.db.SelectContext(ctx, &comments, query, pq.Array(postIDs), perPost); err != nil {
		return nil, fmt.Errorf("recent comments: %w", err)
	}

	for _, c := range comments {
		result[c.PostID] = append(result[c.PostID], c)
	}
	return result, nil
}

func (r *feedRepository) Hashtags(ctx context.Context, postIDs []int64) (map[int64][]string, error) {
	result := make(map[int64][]string)
	if len(postIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		PostID int64  `db:"post_id"`
		Tag    string `db:"tag"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT ph.post_id, h.tag
		FROM post_hashtags ph
		JOIN hashtags h ON h.id = ph.hashtag_id
		WHERE ph.post_id = ANY($1)
		ORDER BY ph.post_id, h.tag
	`, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("post hashtags: %w", err)
	}

	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], row.Tag)
	}
	return result, nil
}
