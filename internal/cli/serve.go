package cli

import (
	"github.com/spf13/cobra"

	"lumigram/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return http.Run(cmd.Context(), cfg)
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.String("server-port", "", "Port to listen on (SERVER_PORT)")
	flags.String("redis-url", "", "Redis URL for caching, optional (REDIS_URL)")
	flags.Duration("shutdown-timeout", 0, "Graceful shutdown timeout (SHUTDOWN_TIMEOUT)")
	flags.Duration("search-cache-ttl", 0, "How long search results are cached (SEARCH_CACHE_TTL)")

	rootCmd.AddCommand(serveCmd)
}
