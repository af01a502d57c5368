package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"lumigram/internal/extract"
	"lumigram/internal/model"
	"lumigram/internal/repository"
)

type PostService struct {
	postRepo    repository.PostRepository
	feedRepo    repository.FeedRepository
	commentRepo repository.CommentRepository
	hashtagRepo repository.HashtagRepository
	mentionRepo repository.MentionRepository
	images      ImageStore
	enricher    *postEnricher
}

func NewPostService(
	postRepo repository.PostRepository,
	feedRepo repository.FeedRepository,
	commentRepo repository.CommentRepository,
	hashtagRepo repository.HashtagRepository,
	mentionRepo repository.MentionRepository,
	likeRepo repository.LikeRepository,
	bookmarkRepo repository.BookmarkRepository,
	images ImageStore,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		feedRepo:    feedRepo,
		commentRepo: commentRepo,
		hashtagRepo: hashtagRepo,
		mentionRepo: mentionRepo,
		images:      images,
		enricher: &postEnricher{
			feedRepo:     feedRepo,
			likeRepo:     likeRepo,
			bookmarkRepo: bookmarkRepo,
			mentionRepo:  mentionRepo,
		},
	}
}

// Create uploads the image, stores the post, then records its hashtags and
// mentions. Those last two steps are best effort: the post is already
// visible if either fails.
func (s *PostService) Create(ctx context.Context, userID string, in model.CreatePostInput, file multipart.File, header *multipart.FileHeader) (*model.FeedPost, error) {
	caption := normalizeCaption(in.Caption)
	if caption != nil && utf8.RuneCountInString(*caption) > model.MaxPostCaptionLength {
		return nil, model.ErrCaptionTooLong
	}
	if file == nil || header == nil {
		return nil, model.ErrImageRequired
	}

	upload, err := s.images.UploadPostImage(ctx, file, header)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:   userID,
		ImageURL: upload.URL,
		ImageKey: upload.Key,
		Caption:  caption,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		if delErr := s.images.DeleteObject(ctx, upload.Key); delErr != nil {
			log.Printf("[PostService] Failed to remove orphaned image: key=%s err=%v", upload.Key, delErr)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	text := ""
	if caption != nil {
		text = *caption
	}
	s.linkHashtags(ctx, post.ID, text)
	s.storeMentions(ctx, post.ID, userID, text, in.Mentions)

	log.Printf("[PostService] Created post=%d user=%s", post.ID, userID)

	created, err := s.feedRepo.GetPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("load created post: %w", err)
	}
	posts := []model.FeedPost{*created}
	if err := s.enricher.enrich(ctx, posts, userID); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (s *PostService) linkHashtags(ctx context.Context, postID int64, text string) {
	for _, tag := range extract.Hashtags(text) {
		id, err := s.hashtagRepo.Upsert(ctx, tag)
		if err != nil {
			log.Printf("[PostService] Failed to upsert hashtag: post=%d tag=%s err=%v", postID, tag, err)
			continue
		}
		if err := s.hashtagRepo.LinkPost(ctx, postID, id); err != nil {
			log.Printf("[PostService] Failed to link hashtag: post=%d tag=%s err=%v", postID, tag, err)
		}
	}
}

func (s *PostService) storeMentions(ctx context.Context, postID int64, userID, text string, candidates []model.MentionCandidate) {
	valid := extract.ValidMentions(text, candidates)
	if len(valid) == 0 {
		return
	}
	n, err := s.mentionRepo.CreateForPost(ctx, postID, userID, valid)
	if err != nil {
		log.Printf("[PostService] Failed to store mentions: post=%d err=%v", postID, err)
		return
	}
	if n < len(valid) {
		log.Printf("[PostService] Skipped %d mentions of unknown users: post=%d", len(valid)-n, postID)
	}
}

// Get returns a post with the same enrichment as the feed plus the whole
// comment thread, oldest first.
func (s *PostService) Get(ctx context.Context, postID int64, viewerID string) (*model.PostDetail, error) {
	post, err := s.feedRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	posts := []model.FeedPost{*post}
	if err := s.enricher.enrich(ctx, posts, viewerID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	comments, err = s.enricher.attachComments(ctx, comments)
	if err != nil {
		return nil, err
	}

	return &model.PostDetail{FeedPost: posts[0], Comments: comments}, nil
}

// Delete removes a post owned by userID. Likes, comments, bookmarks,
// mentions and hashtag links go with it; the image is removed afterwards.
func (s *PostService) Delete(ctx context.Context, postID int64, userID string) error {
	post, err := s.postRepo.Delete(ctx, postID, userID)
	if err != nil {
		return err
	}

	if err := s.images.DeleteObject(ctx, post.ImageKey); err != nil {
		log.Printf("[PostService] Failed to delete image: post=%d key=%s err=%v", postID, post.ImageKey, err)
	}

	log.Printf("[PostService] Deleted post=%d user=%s", postID, userID)
	return nil
}

// normalizeCaption trims surrounding whitespace. A blank caption is stored
// as NULL.
func normalizeCaption(caption *string) *string {
	if caption == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*caption)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
