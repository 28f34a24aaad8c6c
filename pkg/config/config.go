// Package config handles groupfit configuration.
//
// Configuration lives in a TOML file at $XDG_CONFIG_HOME/groupfit/config.toml
// (falling back to ~/.config/groupfit/config.toml). Every key is optional;
// [Default] supplies the rest. A handful of environment variables override
// the file so that the server can be configured in containers without one.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/groupfit/pkg/errors"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists every snapshot store backend.
var Backends = []string{BackendMemory, BackendFile, BackendSQLite, BackendRedis, BackendMongo}

// Config represents groupfit configuration.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Redis  RedisConfig  `toml:"redis"`
	Mongo  MongoConfig  `toml:"mongo"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Render RenderConfig `toml:"render"`
}

// StoreConfig selects where snapshots are kept.
type StoreConfig struct {
	// Backend is one of memory, file, sqlite, redis, mongo.
	Backend string `toml:"backend"`

	// Dir holds one JSON file per snapshot (file backend, and the
	// fallback target).
	Dir string `toml:"dir"`

	// SQLitePath is the database file of the sqlite backend.
	SQLitePath string `toml:"sqlite_path"`

	// Fallback retries on the file backend when a remote backend rejects
	// credentials or is unreachable.
	Fallback bool `toml:"fallback"`
}

// RedisConfig configures the redis snapshot store and render cache.
type RedisConfig struct {
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	TTL      Duration `toml:"ttl"`
}

// MongoConfig configures the mongo snapshot store.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// CacheConfig configures the fit/render cache.
type CacheConfig struct {
	Enabled bool `toml:"enabled"`

	// Backend is "file" or "redis".
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`

	// PublicURL is the base of share links returned for saved diagrams.
	PublicURL string `toml:"public_url"`

	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// RenderConfig holds render defaults for the CLI.
type RenderConfig struct {
	Formats []string `toml:"formats"`
	Scale   float64  `toml:"scale"`
	Edges   bool     `toml:"edges"`
}

// Duration is a time.Duration written as a string such as "24h" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:    BackendFile,
			Dir:        filepath.Join(dataDir(), "snapshots"),
			SQLitePath: filepath.Join(dataDir(), "snapshots.db"),
			Fallback:   true,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "groupfit",
			Collection: "snapshots",
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: BackendFile,
			Dir:     cacheDir(),
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:         ":8787",
			MaxBodyBytes: 10 << 20,
		},
		Render: RenderConfig{
			Formats: []string{"svg"},
			Scale:   2,
		},
	}
}

// Path returns the path to the config file.
// Uses ~/.config/groupfit/config.toml (XDG style) on all Unix systems.
func Path() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "groupfit", "config.toml")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "groupfit", "config.toml")
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "groupfit", "config.toml")
	}
	return filepath.Join(configDir, "groupfit", "config.toml")
}

func dataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "groupfit")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share", "groupfit")
	}
	return filepath.Join(os.TempDir(), "groupfit")
}

func cacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "groupfit")
}

// Load reads the config file at path over the defaults and then applies
// environment overrides. An empty path means [Path]. A missing file is not an
// error. Unknown keys are returned as warnings.
func Load(path string) (*Config, []string, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	var warnings []string
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		for _, key := range md.Undecoded() {
			warnings = append(warnings, fmt.Sprintf("unknown config key %q", key.String()))
		}
	case os.IsNotExist(err):
	default:
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, warnings, nil
}

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
//
//	GROUPFIT_STORE        store.backend
//	GROUPFIT_REDIS_ADDR   redis.addr
//	GROUPFIT_MONGO_URI    mongo.uri
//	GROUPFIT_SERVER_ADDR  server.addr
//	PORT                  server.addr as ":<port>", unless GROUPFIT_SERVER_ADDR is set
//	PUBLIC_URL            server.public_url
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("GROUPFIT_STORE"); ok && v != "" {
		c.Store.Backend = strings.ToLower(v)
	}
	if v, ok := lookup("GROUPFIT_REDIS_ADDR"); ok && v != "" {
		c.Redis.Addr = v
	}
	if v, ok := lookup("GROUPFIT_MONGO_URI"); ok && v != "" {
		c.Mongo.URI = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return errors.New(errors.ErrCodeInvalidConfig, "PORT must be a number, got %q", v)
		}
		c.Server.Addr = ":" + v
	}
	if v, ok := lookup("GROUPFIT_SERVER_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup("PUBLIC_URL"); ok && v != "" {
		c.Server.PublicURL = strings.TrimRight(v, "/")
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains(Backends, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend: unknown backend %q (expected %s)",
			c.Store.Backend, strings.Join(Backends, ", "))
	}
	if c.Store.Backend == BackendFile && c.Store.Dir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "store.dir is required for the file backend")
	}
	if c.Store.Backend == BackendSQLite && c.Store.SQLitePath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "store.sqlite_path is required for the sqlite backend")
	}
	if c.Cache.Enabled && c.Cache.Backend != BackendFile && c.Cache.Backend != BackendRedis {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend: expected file or redis, got %q", c.Cache.Backend)
	}
	if c.Server.PublicURL != "" {
		if err := errors.ValidateURL(c.Server.PublicURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "server.public_url")
		}
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must not be negative")
	}
	if c.Render.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.scale must not be negative")
	}
	return nil
}

// Save writes c to path as TOML, creating parent directories.
func Save(c *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString("# groupfit configuration\n\n"); err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}
