package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"lumigram/internal/client"
	"lumigram/internal/toggle"
)

const (
	keyAPIURL     = "api_url"
	keyAPIToken   = "api_token"
	keyAPITimeout = "api_timeout"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print a page of the feed from a running server",
	Long: `Print a page of the feed from a running server.

Examples:
  lumigram feed --page 2
  lumigram feed --user user_123
  lumigram feed --hashtag sunny`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		page, _ := flags.GetInt("page")
		limit, _ := flags.GetInt("limit")
		userID, _ := flags.GetString("user")
		hashtag, _ := flags.GetString("hashtag")

		result, err := apiClient().Feed(cmd.Context(), client.FeedParams{
			Page:    page,
			Limit:   limit,
			UserID:  userID,
			Hashtag: hashtag,
		})
		if err != nil {
			return userError(err)
		}
		return printJSON(cmd, result)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search hashtags and users",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		searchType, _ := cmd.Flags().GetString("type")
		result, err := apiClient().Search(cmd.Context(), args[0], searchType)
		if err != nil {
			return userError(err)
		}
		return printJSON(cmd, result)
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <postId>",
	Short: "Toggle your like on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parsePostID(args[0])
		if err != nil {
			return err
		}

		c := apiClient()
		status, err := c.LikeStatus(cmd.Context(), postID)
		if err != nil {
			return userError(err)
		}

		tg := toggle.New(status.Liked, status.LikeCount,
			func(ctx context.Context) error { return c.Like(ctx, postID) },
			func(ctx context.Context) error { return c.Unlike(ctx, postID) },
		)
		return flipAndReport(cmd, tg, "liked", "likes")
	},
}

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark <postId>",
	Short: "Toggle saving a post to your bookmarks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parsePostID(args[0])
		if err != nil {
			return err
		}

		c := apiClient()
		status, err := c.BookmarkStatus(cmd.Context(), postID)
		if err != nil {
			return userError(err)
		}

		tg := toggle.New(status.Bookmarked, 0,
			func(ctx context.Context) error { return c.Bookmark(ctx, postID) },
			func(ctx context.Context) error { return c.Unbookmark(ctx, postID) },
		)
		if err := tg.Flip(cmd.Context()); err != nil {
			return userError(err)
		}
		return printJSON(cmd, map[string]bool{"bookmarked": tg.On()})
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <userId>",
	Short: "Toggle following a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := args[0]

		c := apiClient()
		status, err := c.FollowStatus(cmd.Context(), userID)
		if err != nil {
			return userError(err)
		}

		tg := toggle.New(status.Following, status.FollowerCount,
			func(ctx context.Context) error { return c.Follow(ctx, userID) },
			func(ctx context.Context) error { return c.Unfollow(ctx, userID) },
		)
		return flipAndReport(cmd, tg, "following", "followers")
	},
}

func flipAndReport(cmd *cobra.Command, tg *toggle.Toggle, onLabel, countLabel string) error {
	if err := tg.Flip(cmd.Context()); err != nil {
		return userError(err)
	}
	return printJSON(cmd, map[string]any{
		onLabel:    tg.On(),
		countLabel: tg.Count(),
	})
}

func parsePostID(arg string) (int64, error) {
	postID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || postID <= 0 {
		return 0, fmt.Errorf("invalid post id %q", arg)
	}
	return postID, nil
}

func apiClient() *client.Client {
	return client.New(v.GetString(keyAPIURL),
		client.WithToken(v.GetString(keyAPIToken)),
		client.WithHTTPClient(&http.Client{Timeout: v.GetDuration(keyAPITimeout)}),
	)
}

func userError(err error) error {
	return fmt.Errorf("%s (%w)", client.UserMessage(err), err)
}

func printJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func init() {
	for _, cmd := range []*cobra.Command{feedCmd, searchCmd, likeCmd, bookmarkCmd, followCmd} {
		cmd.Flags().String("api-url", "http://localhost:8080", "Base URL of the API (API_URL)")
		cmd.Flags().String("api-token", "", "Session token sent as a Bearer credential (API_TOKEN)")
		cmd.Flags().Duration("api-timeout", 15*time.Second, "Timeout for each request attempt (API_TIMEOUT)")
		rootCmd.AddCommand(cmd)
	}

	feedCmd.Flags().Int("page", 1, "Page number")
	feedCmd.Flags().Int("limit", 0, "Page size, server default when 0")
	feedCmd.Flags().String("user", "", "Only posts by this user id")
	feedCmd.Flags().String("hashtag", "", "Only posts tagged with this hashtag")

	searchCmd.Flags().String("type", "all", "What to search: all, hashtag or user")
}
