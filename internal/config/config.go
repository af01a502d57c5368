package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string
	RedisURL    string

	ServerPort      string
	ShutdownTimeout time.Duration

	// Session tokens are issued by the identity provider and verified here.
	AuthJWTSecret  string
	AuthIssuer     string
	AuthCookieName string

	StorageEndpoint        string
	StorageRegion          string
	StorageAccessKeyID     string
	StorageSecretAccessKey string
	StorageBucket          string
	StoragePublicURL       string

	SearchCacheTTL time.Duration
}

// Keys understood by Load. Flags bound through BindFlags use the same names
// with dashes instead of underscores (database-url, server-port, ...).
const (
	KeyDatabaseURL            = "database_url"
	KeyRedisURL               = "redis_url"
	KeyServerPort             = "server_port"
	KeyShutdownTimeout        = "shutdown_timeout"
	KeyAuthJWTSecret          = "auth_jwt_secret"
	KeyAuthIssuer             = "auth_issuer"
	KeyAuthCookieName         = "auth_cookie_name"
	KeyStorageEndpoint        = "storage_endpoint"
	KeyStorageRegion          = "storage_region"
	KeyStorageAccessKeyID     = "storage_access_key_id"
	KeyStorageSecretAccessKey = "storage_secret_access_key"
	KeyStorageBucket          = "storage_bucket"
	KeyStoragePublicURL       = "storage_public_url"
	KeySearchCacheTTL         = "search_cache_ttl"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerPort, "8080")
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)
	v.SetDefault(KeyAuthCookieName, "__session")
	v.SetDefault(KeyStorageRegion, "auto")
	v.SetDefault(KeySearchCacheTTL, 30*time.Second)
}

// BindFlags binds command line flags onto v. A flag named "server-port"
// overrides SERVER_PORT when it is set explicitly.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}

// New returns a viper instance reading from the environment, after loading a
// .env file if one exists.
func New() *viper.Viper {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	setDefaults(v)
	return v
}

// Load resolves the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL: v.GetString(KeyDatabaseURL),
		RedisURL:    v.GetString(KeyRedisURL),

		ServerPort:      v.GetString(KeyServerPort),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),

		AuthJWTSecret:  v.GetString(KeyAuthJWTSecret),
		AuthIssuer:     v.GetString(KeyAuthIssuer),
		AuthCookieName: v.GetString(KeyAuthCookieName),

		StorageEndpoint:        v.GetString(KeyStorageEndpoint),
		StorageRegion:          v.GetString(KeyStorageRegion),
		StorageAccessKeyID:     v.GetString(KeyStorageAccessKeyID),
		StorageSecretAccessKey: v.GetString(KeyStorageSecretAccessKey),
		StorageBucket:          v.GetString(KeyStorageBucket),
		StoragePublicURL:       v.GetString(KeyStoragePublicURL),

		SearchCacheTTL: v.GetDuration(KeySearchCacheTTL),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%s is required", strings.ToUpper(KeyDatabaseURL))
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	return cfg, nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.AuthJWTSecret == "" {
		return fmt.Errorf("%s is required", strings.ToUpper(KeyAuthJWTSecret))
	}
	if c.StorageBucket == "" || c.StoragePublicURL == "" || c.StorageEndpoint == "" {
		return fmt.Errorf("missing object storage configuration")
	}
	return nil
}
