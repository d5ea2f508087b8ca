package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/spectrumgame-go/internal/api"
	"github.com/mcoot/spectrumgame-go/internal/logging"
	redisstorage "github.com/mcoot/spectrumgame-go/internal/storage/redis"
	sqlitestorage "github.com/mcoot/spectrumgame-go/internal/storage/sqlite"
)

// EnvPrefix prefixes every environment variable, e.g. SPECTRUM_SERVER_PORT
const EnvPrefix = "SPECTRUM"

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the server configuration
type Config struct {
	Server    api.ServerConfig `mapstructure:"server"`
	Storage   StorageConfig    `mapstructure:"storage"`
	Log       logging.Config   `mapstructure:"log"`
	SSE       SSEConfig        `mapstructure:"sse"`
	PublicURL string           `mapstructure:"public_url"`
}

// StorageConfig selects and configures the room store
type StorageConfig struct {
	Type   string               `mapstructure:"type"`
	Redis  redisstorage.Config  `mapstructure:"redis"`
	SQLite sqlitestorage.Config `mapstructure:"sqlite"`
}

// SSEConfig controls the change notification stream
type SSEConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// Options say where configuration comes from besides defaults and the
// environment
type Options struct {
	// ConfigFile is an optional YAML/JSON/TOML file
	ConfigFile string
	// EnvFile is an optional dotenv file; a missing file is ignored
	EnvFile string
	// Flags are command line flags registered with RegisterFlags
	Flags *pflag.FlagSet
}

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"host":          "server.host",
	"port":          "server.port",
	"storage":       "storage.type",
	"redis-url":     "storage.redis.url",
	"sqlite-dsn":    "storage.sqlite.dsn",
	"legacy-schema": "storage.sqlite.legacy_schema",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"log-output":    "log.output",
	"sse":           "sse.enabled",
	"public-url":    "public_url",
}

// RegisterFlags adds the server flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("host", "", "address to bind to (env: SPECTRUM_SERVER_HOST)")
	fs.IntP("port", "p", 0, "port to listen on (env: SPECTRUM_SERVER_PORT)")
	fs.String("storage", "", "room store: memory, redis or sqlite (env: SPECTRUM_STORAGE_TYPE)")
	fs.String("redis-url", "", "redis connection URL (env: SPECTRUM_STORAGE_REDIS_URL)")
	fs.String("sqlite-dsn", "", "sqlite database file (env: SPECTRUM_STORAGE_SQLITE_DSN)")
	fs.Bool("legacy-schema", false, "create the sqlite rooms table without metadata columns")
	fs.String("log-level", "", "debug, info, warn or error (env: SPECTRUM_LOG_LEVEL)")
	fs.String("log-format", "", "json or text (env: SPECTRUM_LOG_FORMAT)")
	fs.String("log-output", "", "stdout, file or both (env: SPECTRUM_LOG_OUTPUT)")
	fs.Bool("sse", true, "serve change notifications (env: SPECTRUM_SSE_ENABLED)")
	fs.String("public-url", "", "join page encoded in share QR codes (env: SPECTRUM_PUBLIC_URL)")
}

// Load reads configuration with increasing precedence from defaults, the
// config file, the dotenv file and environment, and explicitly set flags
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	server := api.DefaultServerConfig()
	v.SetDefault("server.host", server.Host)
	v.SetDefault("server.port", server.Port)
	v.SetDefault("server.read_timeout", server.ReadTimeout)
	v.SetDefault("server.write_timeout", server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", server.ShutdownTimeout)

	redis := redisstorage.DefaultConfig()
	v.SetDefault("storage.type", StorageMemory)
	v.SetDefault("storage.redis.url", redis.URL)
	v.SetDefault("storage.redis.pool_size", redis.PoolSize)
	v.SetDefault("storage.redis.min_idle_conns", redis.MinIdleConns)
	v.SetDefault("storage.redis.room_ttl", redis.RoomTTL)
	v.SetDefault("storage.redis.max_update_retries", redis.MaxUpdateRetries)

	sqlite := sqlitestorage.DefaultConfig()
	v.SetDefault("storage.sqlite.dsn", sqlite.DSN)
	v.SetDefault("storage.sqlite.legacy_schema", sqlite.LegacySchema)
	v.SetDefault("storage.sqlite.log_queries", sqlite.LogQueries)

	log := logging.DefaultConfig()
	v.SetDefault("log.level", log.Level)
	v.SetDefault("log.format", log.Format)
	v.SetDefault("log.output", log.Output)
	v.SetDefault("log.file.path", log.File.Path)
	v.SetDefault("log.file.filename", log.File.Filename)
	v.SetDefault("log.file.max_size", log.File.MaxSize)
	v.SetDefault("log.file.max_age", log.File.MaxAge)
	v.SetDefault("log.file.max_backups", log.File.MaxBackups)
	v.SetDefault("log.file.compress", log.File.Compress)

	v.SetDefault("sse.enabled", true)
	v.SetDefault("sse.cleanup_interval", time.Minute)
	v.SetDefault("public_url", "http://localhost:8080")
}

// Validate checks settings that cannot be defaulted
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Server.Port)
	}
	switch c.Storage.Type {
	case StorageMemory, StorageSQLite:
	case StorageRedis:
		if c.Storage.Redis.URL == "" {
			return errors.New("redis url required when storage type is redis")
		}
	default:
		return fmt.Errorf("invalid storage type %q: must be 'memory', 'redis' or 'sqlite'", c.Storage.Type)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
