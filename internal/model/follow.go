package model

import (
	"errors"
	"time"
)

type Follow struct {
	FollowerID string    `db:"follower_id" json:"followerId"`
	FolloweeID string    `db:"followee_id" json:"followeeId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

type FollowStatus struct {
	Following      bool `json:"following"`
	FollowerCount  int  `json:"followerCount"`
	FollowingCount int  `json:"followingCount"`
}

var (
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
