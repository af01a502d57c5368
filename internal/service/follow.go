package service

import (
	"context"
	"fmt"
	"log"

	"lumigram/internal/model"
	"lumigram/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

func (s *FollowService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}

	if err := s.requireUser(ctx, followeeID); err != nil {
		return err
	}

	inserted, err := s.followRepo.Create(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !inserted {
		return model.ErrAlreadyFollowing
	}

	log.Printf("[FollowService] Followed: follower=%s followee=%s", followerID, followeeID)
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}
	if err := s.followRepo.Delete(ctx, followerID, followeeID); err != nil {
		return err
	}

	log.Printf("[FollowService] Unfollowed: follower=%s followee=%s", followerID, followeeID)
	return nil
}

// Status returns the follow counts of userID and whether viewerID follows
// them. An anonymous viewer never follows anyone.
func (s *FollowService) Status(ctx context.Context, viewerID, userID string) (*model.FollowStatus, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	followers, following, err := s.followRepo.Counts(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &model.FollowStatus{FollowerCount: followers, FollowingCount: following}
	if viewerID != "" && viewerID != userID {
		if status.Following, err = s.followRepo.Exists(ctx, viewerID, userID); err != nil {
			return nil, err
		}
	}
	return status, nil
}

func (s *FollowService) requireUser(ctx context.Context, userID string) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return model.ErrUserNotFound
	}
	return nil
}
