package service

import (
	"context"
	"fmt"
	"log"

	"lumigram/internal/model"
	"lumigram/internal/repository"
)

type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
}

func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo, postRepo: postRepo}
}

func (s *LikeService) Add(ctx context.Context, postID int64, userID string) error {
	if err := requirePost(ctx, s.postRepo, postID); err != nil {
		return err
	}
	if err := s.likeRepo.Create(ctx, postID, userID); err != nil {
		return err
	}
	log.Printf("[LikeService] Liked: post=%d user=%s", postID, userID)
	return nil
}

func (s *LikeService) Remove(ctx context.Context, postID int64, userID string) error {
	return s.likeRepo.Delete(ctx, postID, userID)
}

// Status reports whether userID likes the post together with its like
// count. An empty userID yields liked=false.
func (s *LikeService) Status(ctx context.Context, postID int64, userID string) (*model.LikeStatus, error) {
	if err := requirePost(ctx, s.postRepo, postID); err != nil {
		return nil, err
	}

	count, err := s.likeRepo.Count(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	status := &model.LikeStatus{LikeCount: count}
	if userID != "" {
		if status.Liked, err = s.likeRepo.Exists(ctx, postID, userID); err != nil {
			return nil, fmt.Errorf("check like: %w", err)
		}
	}
	return status, nil
}

func requirePost(ctx context.Context, postRepo repository.PostRepository, postID int64) error {
	exists, err := postRepo.Exists(ctx, postID)
	if err != nil {
		return fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return model.ErrPostNotFound
	}
	return nil
}
