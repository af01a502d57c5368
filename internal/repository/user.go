package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"lumigram/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) EnsureExists(ctx context.Context, id, name string, imageURL *string) error {
	query := `
		INSERT INTO users (id, name, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, id, name, imageURL); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, name, bio, website, image_url, image_key, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// Update writes the editable profile columns and refreshes updated_at on u.
func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET name = $1, bio = $2, website = $3, image_url = $4, image_key = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`
	err := r.db.GetContext(ctx, &u.UpdatedAt, query, u.Name, u.Bio, u.Website, u.ImageURL, u.ImageKey, u.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) GetStats(ctx context.Context, id string) (model.UserStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM posts WHERE user_id = $1)       AS posts,
			(SELECT COUNT(*) FROM follows WHERE followee_id = $1) AS followers,
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1) AS following
	`
	var stats model.UserStats
	if err := r.db.GetContext(ctx, &stats, query, id); err != nil {
		return model.UserStats{}, fmt.Errorf("failed to get user stats: %w", err)
	}
	return stats, nil
}

// Search matches the query anywhere in the display name or at the start of
// the id. Name prefix matches sort first.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	searchQuery := `
		SELECT id, name, image_url
		FROM users
		WHERE name ILIKE $1 OR id ILIKE $2
		ORDER BY (name ILIKE $2) DESC, name ASC
		LIMIT $3
	`

	users := []model.UserSummary{}
	err := r.db.SelectContext(ctx, &users, searchQuery, containsPattern(query), prefixPattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}
