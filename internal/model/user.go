package model

import (
	"errors"
	"time"
)

// User is a profile keyed by the identity provider's subject id.
type User struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Bio       *string   `db:"bio" json:"bio"`
	Website   *string   `db:"website" json:"website"`
	ImageURL  *string   `db:"image_url" json:"imageUrl"`
	ImageKey  *string   `db:"image_key" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UserSummary is the author block embedded in posts, comments and search results.
type UserSummary struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	ImageURL *string `db:"image_url" json:"imageUrl"`
}

type UserStats struct {
	Posts     int `db:"posts" json:"posts"`
	Followers int `db:"followers" json:"followers"`
	Following int `db:"following" json:"following"`
}

type ProfileResponse struct {
	User        *User     `json:"user"`
	Stats       UserStats `json:"stats"`
	IsFollowing bool      `json:"isFollowing"`
	IsSelf      bool      `json:"isSelf"`
}

// Identity is the verified claim set taken from the session token.
type Identity struct {
	Subject  string
	Name     string
	ImageURL string
}

// CropRect selects the region of an uploaded profile image to keep, in
// source pixel coordinates.
type CropRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// UpdateProfileRequest carries the editable profile fields. Nil pointers
// leave the stored value unchanged; empty strings clear bio and website.
type UpdateProfileRequest struct {
	Name    *string
	Bio     *string
	Website *string
	Crop    *CropRect
}

const (
	MaxNameLength = 50
	MaxBioLength  = 160

	// Autocomplete returns at most this many users.
	MentionSuggestionLimit = 5
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrNotProfileOwner = errors.New("can only edit your own profile")
	ErrNameRequired    = errors.New("name is required")
	ErrNameTooLong     = errors.New("name too long")
	ErrBioTooLong      = errors.New("bio too long")
	ErrInvalidWebsite  = errors.New("website must be an http or https URL")
	ErrInvalidCropRect = errors.New("invalid crop rectangle")
	ErrMissingIdentity = errors.New("missing identity subject")
)
