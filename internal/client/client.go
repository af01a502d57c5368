// Package client is a Go client for the lumigram JSON API.
//
// Read calls used for browsing (Feed, HashtagPosts, Search, SearchUsers)
// are retried with exponential backoff on network errors and 5xx answers.
// Writes are sent exactly once.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"lumigram/internal/httputil"
	"lumigram/internal/model"
)

const (
	DefaultMaxRetries      = 2
	DefaultInitialInterval = 200 * time.Millisecond
	defaultTimeout         = 15 * time.Second
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string

	maxRetries      uint64
	initialInterval time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends token as a Bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithRetry(maxRetries uint64, initialInterval time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initialInterval = initialInterval
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		httpClient:      &http.Client{Timeout: defaultTimeout},
		maxRetries:      DefaultMaxRetries,
		initialInterval: DefaultInitialInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FeedParams selects a page of posts. Zero values use server defaults.
type FeedParams struct {
	Page    int
	Limit   int
	UserID  string
	Hashtag string
}

func (p FeedParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.UserID != "" {
		v.Set("userId", p.UserID)
	}
	if p.Hashtag != "" {
		v.Set("hashtag", p.Hashtag)
	}
	return v
}

func (c *Client) Feed(ctx context.Context, p FeedParams) (*model.PostPage, error) {
	var page model.PostPage
	if err := c.getWithRetry(ctx, "/api/posts", p.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// HashtagPosts loads the grid for a single hashtag.
func (c *Client) HashtagPosts(ctx context.Context, tag string, page int) (*model.PostPage, error) {
	return c.Feed(ctx, FeedParams{Page: page, Hashtag: tag})
}

func (c *Client) Search(ctx context.Context, query, searchType string) (*model.SearchResponse, error) {
	v := url.Values{"q": {query}}
	if searchType != "" {
		v.Set("type", searchType)
	}
	var resp model.SearchResponse
	if err := c.getWithRetry(ctx, "/api/search", v, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchUsers backs @-autocomplete.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]model.UserSummary, error) {
	var resp struct {
		Users []model.UserSummary `json:"users"`
	}
	if err := c.getWithRetry(ctx, "/api/users/search", url.Values{"q": {query}}, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) LikeStatus(ctx context.Context, postID int64) (*model.LikeStatus, error) {
	var status model.LikeStatus
	err := c.do(ctx, http.MethodGet, "/api/likes", url.Values{"postId": {strconv.FormatInt(postID, 10)}}, nil, &status)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Like(ctx context.Context, postID int64) error {
	return c.do(ctx, http.MethodPost, "/api/likes", nil, map[string]int64{"postId": postID}, nil)
}

func (c *Client) Unlike(ctx context.Context, postID int64) error {
	return c.do(ctx, http.MethodDelete, "/api/likes", url.Values{"postId": {strconv.FormatInt(postID, 10)}}, nil, nil)
}

func (c *Client) BookmarkStatus(ctx context.Context, postID int64) (*model.BookmarkStatus, error) {
	var status model.BookmarkStatus
	err := c.do(ctx, http.MethodGet, "/api/bookmarks", url.Values{"postId": {strconv.FormatInt(postID, 10)}}, nil, &status)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Bookmark(ctx context.Context, postID int64) error {
	return c.do(ctx, http.MethodPost, "/api/bookmarks", nil, map[string]int64{"postId": postID}, nil)
}

func (c *Client) Unbookmark(ctx context.Context, postID int64) error {
	return c.do(ctx, http.MethodDelete, "/api/bookmarks", url.Values{"postId": {strconv.FormatInt(postID, 10)}}, nil, nil)
}

func (c *Client) FollowStatus(ctx context.Context, userID string) (*model.FollowStatus, error) {
	var status model.FollowStatus
	if err := c.do(ctx, http.MethodGet, "/api/follows", url.Values{"userId": {userID}}, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Follow(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPost, "/api/follows", nil, map[string]string{"userId": userID}, nil)
}

func (c *Client) Unfollow(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/api/follows", url.Values{"userId": {userID}}, nil, nil)
}

// getWithRetry performs an idempotent GET, retrying transient failures.
func (c *Client) getWithRetry(ctx context.Context, path string, query url.Values, out any) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	attempt := 0
	op := func() error {
		attempt++
		err := c.do(ctx, http.MethodGet, path, query, nil, out)
		if err != nil && !retryable(ctx, err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Printf("[Client] GET %s attempt %d failed, retrying in %v: %v", path, attempt, wait, err)
	}
	return backoff.RetryNotify(op, policy, notify)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var envelope httputil.ErrorResponse
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
