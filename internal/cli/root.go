// Package cli wires the lumigram commands: the API server, schema
// migrations, and a small API client for scripting against a running server.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lumigram/internal/config"
)

var v *viper.Viper

var rootCmd = &cobra.Command{
	Use:   "lumigram",
	Short: "Lumigram photo sharing backend",
	Long: `Lumigram serves the photo sharing API: posts with images, feeds,
likes, bookmarks, follows, comments, mentions, hashtags and search.

Configuration is read from the environment (and a .env file when present).
Flags override environment values, e.g. --server-port overrides SERVER_PORT.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v = config.New()
		return config.BindFlags(v, cmd.Flags())
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL (DATABASE_URL)")
}

func loadConfig() (*config.Config, error) {
	return config.Load(v)
}
