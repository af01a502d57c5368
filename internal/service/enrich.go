package service

import (
	"context"
	"fmt"

	"lumigram/internal/model"
	"lumigram/internal/repository"
)

// postEnricher attaches counts, recent comments, mentions, hashtags and
// viewer flags to posts loaded by the feed repository.
type postEnricher struct {
	feedRepo     repository.FeedRepository
	likeRepo     repository.LikeRepository
	bookmarkRepo repository.BookmarkRepository
	mentionRepo  repository.MentionRepository
}

func (e *postEnricher) enrich(ctx context.Context, posts []model.FeedPost, viewerID string) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]int64, len(posts))
	for i := range posts {
		postIDs[i] = posts[i].ID
	}

	stats, err := e.feedRepo.Stats(ctx, postIDs)
	if err != nil {
		return fmt.Errorf("load post stats: %w", err)
	}

	recent, err := e.feedRepo.RecentComments(ctx, postIDs, model.RecentCommentsPerPost)
	if err != nil {
		return fmt.Errorf("load recent comments: %w", err)
	}

	hashtags, err := e.feedRepo.Hashtags(ctx, postIDs)
	if err != nil {
		return fmt.Errorf("load hashtags: %w", err)
	}

	postMentions, err := e.mentionRepo.ListForPosts(ctx, postIDs)
	if err != nil {
		return fmt.Errorf("load post mentions: %w", err)
	}

	var commentIDs []int64
	for _, comments := range recent {
		for _, c := range comments {
			commentIDs = append(commentIDs, c.ID)
		}
	}
	commentMentions, err := e.mentionRepo.ListForComments(ctx, commentIDs)
	if err != nil {
		return fmt.Errorf("load comment mentions: %w", err)
	}

	var liked, bookmarked map[int64]bool
	if viewerID != "" {
		if liked, err = e.likeRepo.CheckLikes(ctx, viewerID, postIDs); err != nil {
			return fmt.Errorf("check likes: %w", err)
		}
		if bookmarked, err = e.bookmarkRepo.CheckBookmarks(ctx, viewerID, postIDs); err != nil {
			return fmt.Errorf("check bookmarks: %w", err)
		}
	}

	for i := range posts {
		p := &posts[i]
		s := stats[p.ID]
		p.LikeCount = s.LikeCount
		p.CommentCount = s.CommentCount
		p.RecentComments = attachCommentMentions(recent[p.ID], commentMentions)
		p.Mentions = nonNilMentions(postMentions[p.ID])
		p.Hashtags = hashtags[p.ID]
		if p.Hashtags == nil {
			p.Hashtags = []string{}
		}
		if viewerID != "" {
			isLiked, isBookmarked := liked[p.ID], bookmarked[p.ID]
			p.IsLiked = &isLiked
			p.IsBookmarked = &isBookmarked
		}
	}
	return nil
}

// attachComments resolves mentions for a full comment thread.
func (e *postEnricher) attachComments(ctx context.Context, comments []model.Comment) ([]model.Comment, error) {
	commentIDs := make([]int64, len(comments))
	for i := range comments {
		commentIDs[i] = comments[i].ID
	}
	mentions, err := e.mentionRepo.ListForComments(ctx, commentIDs)
	if err != nil {
		return nil, fmt.Errorf("load comment mentions: %w", err)
	}
	return attachCommentMentions(comments, mentions), nil
}

func attachCommentMentions(comments []model.Comment, mentions map[int64][]model.Mention) []model.Comment {
	if comments == nil {
		return []model.Comment{}
	}
	for i := range comments {
		comments[i].Mentions = nonNilMentions(mentions[comments[i].ID])
	}
	return comments
}

func nonNilMentions(m []model.Mention) []model.Mention {
	if m == nil {
		return []model.Mention{}
	}
	return m
}
