package service

import (
	"context"
	"mime/multipart"
	"sync"
	"time"

	"lumigram/internal/model"
	"lumigram/internal/repository"
)

// Func-field mocks. A nil func falls back to a harmless default so each test
// only spells out the behaviour it cares about.

type mockUserRepository struct {
	ensureExistsFn func(ctx context.Context, id, name string, imageURL *string) error
	getByIDFn      func(ctx context.Context, id string) (*model.User, error)
	existsFn       func(ctx context.Context, id string) (bool, error)
	updateFn       func(ctx context.Context, user *model.User) error
	getStatsFn     func(ctx context.Context, id string) (model.UserStats, error)
	searchFn       func(ctx context.Context, query string, limit int) ([]model.UserSummary, error)

	mu          sync.Mutex
	ensureCalls []string
	searchCalls []string
}

func (m *mockUserRepository) EnsureExists(ctx context.Context, id, name string, imageURL *string) error {
	m.mu.Lock()
	m.ensureCalls = append(m.ensureCalls, id)
	m.mu.Unlock()
	if m.ensureExistsFn != nil {
		return m.ensureExistsFn(ctx, id, name, imageURL)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return true, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *model.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetStats(ctx context.Context, id string) (model.UserStats, error) {
	if m.getStatsFn != nil {
		return m.getStatsFn(ctx, id)
	}
	return model.UserStats{}, nil
}

func (m *mockUserRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	m.searchCalls = append(m.searchCalls, query)
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return []model.UserSummary{}, nil
}

type mockPostRepository struct {
	createFn func(ctx context.Context, post *model.Post) error
	existsFn func(ctx context.Context, postID int64) (bool, error)
	deleteFn func(ctx context.Context, postID int64, userID string) (*model.Post, error)
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	post.ID = 1
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	return nil
}

func (m *mockPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return true, nil
}

func (m *mockPostRepository) Delete(ctx context.Context, postID int64, userID string) (*model.Post, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID, userID)
	}
	return nil, model.ErrPostNotFound
}

type listPostsCall struct {
	Filter        repository.FeedFilter
	Limit, Offset int
}

type mockFeedRepository struct {
	listPostsFn      func(ctx context.Context, filter repository.FeedFilter, limit, offset int) ([]model.FeedPost, error)
	countPostsFn     func(ctx context.Context, filter repository.FeedFilter) (int, error)
	getPostFn        func(ctx context.Context, postID int64) (*model.FeedPost, error)
	listBookmarkedFn func(ctx context.Context, userID string, limit, offset int) ([]model.FeedPost, error)
	statsFn          func(ctx context.Context, postIDs []int64) (map[int64]model.PostStats, error)
	recentFn         func(ctx context.Context, postIDs []int64, perPost int) (map[int64][]model.Comment, error)
	hashtagsFn       func(ctx context.Context, postIDs []int64) (map[int64][]string, error)

	bookmarkedTotal int
	listCalls       []listPostsCall
}

func (m *mockFeedRepository) ListPosts(ctx context.Context, filter repository.FeedFilter, limit, offset int) ([]model.FeedPost, error) {
	m.listCalls = append(m.listCalls, listPostsCall{Filter: filter, Limit: limit, Offset: offset})
	if m.listPostsFn != nil {
		return m.listPostsFn(ctx, filter, limit, offset)
	}
	return []model.FeedPost{}, nil
}

func (m *mockFeedRepository) CountPosts(ctx context.Context, filter repository.FeedFilter) (int, error) {
	if m.countPostsFn != nil {
		return m.countPostsFn(ctx, filter)
	}
	return 0, nil
}

func (m *mockFeedRepository) GetPost(ctx context.Context, postID int64) (*model.FeedPost, error) {
	if m.getPostFn != nil {
		return m.getPostFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockFeedRepository) ListBookmarked(ctx context.Context, userID string, limit, offset int) ([]model.FeedPost, error) {
	m.listCalls = append(m.listCalls, listPostsCall{Filter: repository.FeedFilter{UserID: userID}, Limit: limit, Offset: offset})
	if m.listBookmarkedFn != nil {
		return m.listBookmarkedFn(ctx, userID, limit, offset)
	}
	return []model.FeedPost{}, nil
}

func (m *mockFeedRepository) CountBookmarked(ctx context.Context, userID string) (int, error) {
	return m.bookmarkedTotal, nil
}

func (m *mockFeedRepository) Stats(ctx context.Context, postIDs []int64) (map[int64]model.PostStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, postIDs)
	}
	return map[int64]model.PostStats{}, nil
}

func (m *mockFeedRepository) RecentComments(ctx context.Context, postIDs []int64, perPost int) (map[int64][]model.Comment, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, postIDs, perPost)
	}
	return map[int64][]model.Comment{}, nil
}

func (m *mockFeedRepository) Hashtags(ctx context.Context, postIDs []int64) (map[int64][]string, error) {
	if m.hashtagsFn != nil {
		return m.hashtagsFn(ctx, postIDs)
	}
	return map[int64][]string{}, nil
}

// pairSet is an in-memory (post, user) set shared by the like and bookmark
// mocks.
type pairSet map[int64]map[string]bool

func (s pairSet) add(postID int64, userID string) bool {
	if s[postID] == nil {
		s[postID] = map[string]bool{}
	}
	if s[postID][userID] {
		return false
	}
	s[postID][userID] = true
	return true
}

func (s pairSet) remove(postID int64, userID string) bool {
	if !s[postID][userID] {
		return false
	}
	delete(s[postID], userID)
	return true
}

func (s pairSet) check(userID string, postIDs []int64) map[int64]bool {
	out := make(map[int64]bool, len(postIDs))
	for _, id := range postIDs {
		out[id] = s[id][userID]
	}
	return out
}

type mockLikeRepository struct {
	pairs pairSet
}

func newMockLikeRepository() *mockLikeRepository {
	return &mockLikeRepository{pairs: pairSet{}}
}

func (m *mockLikeRepository) Create(ctx context.Context, postID int64, userID string) error {
	if !m.pairs.add(postID, userID) {
		return model.ErrAlreadyLiked
	}
	return nil
}

func (m *mockLikeRepository) Delete(ctx context.Context, postID int64, userID string) error {
	if !m.pairs.remove(postID, userID) {
		return model.ErrNotLiked
	}
	return nil
}

func (m *mockLikeRepository) Exists(ctx context.Context, postID int64, userID string) (bool, error) {
	return m.pairs[postID][userID], nil
}

func (m *mockLikeRepository) Count(ctx context.Context, postID int64) (int, error) {
	return len(m.pairs[postID]), nil
}

func (m *mockLikeRepository) CheckLikes(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error) {
	return m.pairs.check(userID, postIDs), nil
}

type mockBookmarkRepository struct {
	pairs pairSet
}

func newMockBookmarkRepository() *mockBookmarkRepository {
	return &mockBookmarkRepository{pairs: pairSet{}}
}

func (m *mockBookmarkRepository) Create(ctx context.Context, postID int64, userID string) error {
	if !m.pairs.add(postID, userID) {
		return model.ErrAlreadyBookmarked
	}
	return nil
}

func (m *mockBookmarkRepository) Delete(ctx context.Context, postID int64, userID string) error {
	if !m.pairs.remove(postID, userID) {
		return model.ErrNotBookmarked
	}
	return nil
}

func (m *mockBookmarkRepository) Exists(ctx context.Context, postID int64, userID string) (bool, error) {
	return m.pairs[postID][userID], nil
}

func (m *mockBookmarkRepository) CheckBookmarks(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error) {
	return m.pairs.check(userID, postIDs), nil
}

type mockFollowRepository struct {
	edges map[[2]string]bool
}

func newMockFollowRepository() *mockFollowRepository {
	return &mockFollowRepository{edges: map[[2]string]bool{}}
}

func (m *mockFollowRepository) Create(ctx context.Context, followerID, followeeID string) (bool, error) {
	key := [2]string{followerID, followeeID}
	if m.edges[key] {
		return false, nil
	}
	m.edges[key] = true
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followeeID string) error {
	key := [2]string{followerID, followeeID}
	if !m.edges[key] {
		return model.ErrNotFollowing
	}
	delete(m.edges, key)
	return nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	return m.edges[[2]string{followerID, followeeID}], nil
}

func (m *mockFollowRepository) Counts(ctx context.Context, userID string) (int, int, error) {
	followers, following := 0, 0
	for edge := range m.edges {
		if edge[1] == userID {
			followers++
		}
		if edge[0] == userID {
			following++
		}
	}
	return followers, following, nil
}

type mockCommentRepository struct {
	createFn     func(ctx context.Context, postID int64, userID, content string) (*model.Comment, error)
	deleteFn     func(ctx context.Context, commentID int64, userID string) error
	listByPostFn func(ctx context.Context, postID int64) ([]model.Comment, error)

	createCalls []string
}

func (m *mockCommentRepository) Create(ctx context.Context, postID int64, userID, content string) (*model.Comment, error) {
	m.createCalls = append(m.createCalls, content)
	if m.createFn != nil {
		return m.createFn(ctx, postID, userID, content)
	}
	return &model.Comment{ID: 1, PostID: postID, UserID: userID, Content: content}, nil
}

func (m *mockCommentRepository) Delete(ctx context.Context, commentID int64, userID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, commentID, userID)
	}
	return nil
}

func (m *mockCommentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	if m.listByPostFn != nil {
		return m.listByPostFn(ctx, postID)
	}
	return []model.Comment{}, nil
}

type mockHashtagRepository struct {
	upsertFn func(ctx context.Context, tag string) (int64, error)
	searchFn func(ctx context.Context, prefix string, limit int) ([]model.HashtagResult, error)

	ids         map[string]int64
	links       map[int64][]string
	searchCalls []string
}

func newMockHashtagRepository() *mockHashtagRepository {
	return &mockHashtagRepository{ids: map[string]int64{}, links: map[int64][]string{}}
}

func (m *mockHashtagRepository) Upsert(ctx context.Context, tag string) (int64, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, tag)
	}
	if id, ok := m.ids[tag]; ok {
		return id, nil
	}
	id := int64(len(m.ids) + 1)
	m.ids[tag] = id
	return id, nil
}

func (m *mockHashtagRepository) LinkPost(ctx context.Context, postID, hashtagID int64) error {
	for tag, id := range m.ids {
		if id == hashtagID {
			m.links[postID] = append(m.links[postID], tag)
		}
	}
	return nil
}

func (m *mockHashtagRepository) Search(ctx context.Context, prefix string, limit int) ([]model.HashtagResult, error) {
	m.searchCalls = append(m.searchCalls, prefix)
	if m.searchFn != nil {
		return m.searchFn(ctx, prefix, limit)
	}
	return []model.HashtagResult{}, nil
}

// mockMentionRepository stores mentions in memory. Users listed in unknown
// are skipped on insert, as the database does.
type mockMentionRepository struct {
	createErr error
	unknown   map[string]bool

	byPost    map[int64][]model.Mention
	byComment map[int64][]model.Mention
}

func newMockMentionRepository() *mockMentionRepository {
	return &mockMentionRepository{
		unknown:   map[string]bool{},
		byPost:    map[int64][]model.Mention{},
		byComment: map[int64][]model.Mention{},
	}
}

func (m *mockMentionRepository) store(parent map[int64][]model.Mention, parentID int64, postID, commentID *int64, mentionerID string, mentions []model.MentionCandidate) (int, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	n := 0
	for _, c := range mentions {
		if m.unknown[c.UserID] {
			continue
		}
		parent[parentID] = append(parent[parentID], model.Mention{
			ID:              int64(len(parent[parentID]) + 1),
			PostID:          postID,
			CommentID:       commentID,
			MentionedUserID: c.UserID,
			MentionerUserID: mentionerID,
			DisplayText:     c.DisplayText,
		})
		n++
	}
	return n, nil
}

func (m *mockMentionRepository) CreateForPost(ctx context.Context, postID int64, mentionerID string, mentions []model.MentionCandidate) (int, error) {
	return m.store(m.byPost, postID, &postID, nil, mentionerID, mentions)
}

func (m *mockMentionRepository) CreateForComment(ctx context.Context, commentID int64, mentionerID string, mentions []model.MentionCandidate) (int, error) {
	return m.store(m.byComment, commentID, nil, &commentID, mentionerID, mentions)
}

func (m *mockMentionRepository) ListForPosts(ctx context.Context, postIDs []int64) (map[int64][]model.Mention, error) {
	out := map[int64][]model.Mention{}
	for _, id := range postIDs {
		if ms, ok := m.byPost[id]; ok {
			out[id] = ms
		}
	}
	return out, nil
}

func (m *mockMentionRepository) ListForComments(ctx context.Context, commentIDs []int64) (map[int64][]model.Mention, error) {
	out := map[int64][]model.Mention{}
	for _, id := range commentIDs {
		if ms, ok := m.byComment[id]; ok {
			out[id] = ms
		}
	}
	return out, nil
}

type mockImageStore struct {
	uploadErr error
	deleteErr error

	uploads []string
	deleted []string
	crops   []*model.CropRect
}

func (m *mockImageStore) UploadPostImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	key := "posts/test.jpg"
	m.uploads = append(m.uploads, key)
	return &model.UploadResult{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (m *mockImageStore) UploadProfileImage(ctx context.Context, file multipart.File, header *multipart.FileHeader, crop *model.CropRect) (*model.UploadResult, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	key := "avatars/new.jpg"
	m.uploads = append(m.uploads, key)
	m.crops = append(m.crops, crop)
	return &model.UploadResult{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (m *mockImageStore) DeleteObject(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return m.deleteErr
}

// memoryStore is a map-backed cache.Store.
type memoryStore struct {
	mu      sync.Mutex
	values  map[string]any
	getErr  error
	markers map[string]bool
	sets    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]any{}, markers: map[string]bool{}}
}

func (m *memoryStore) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return false, m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return false, nil
	}
	if resp, ok := v.(*model.SearchResponse); ok {
		*(dst.(*model.SearchResponse)) = *resp
	}
	return true, nil
}

func (m *memoryStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.values[key] = value
	return nil
}

func (m *memoryStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markers[key], nil
}

func (m *memoryStore) SetMarker(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers[key] = true
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.markers, key)
	delete(m.values, key)
	return nil
}

// fakeFile satisfies multipart.File for services that only pass it through.
type fakeFile struct{}

func (fakeFile) Read(p []byte) (int, error)                   { return 0, nil }
func (fakeFile) ReadAt(p []byte, off int64) (int, error)      { return 0, nil }
func (fakeFile) Seek(offset int64, whence int) (int64, error) { return 0, nil }
func (fakeFile) Close() error                                 { return nil }
