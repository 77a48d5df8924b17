// Package config loads canopy.toml, the optional per-workspace settings file.
//
// Every field has a sensible default, so a missing file is not an error and a
// partial file only overrides what it names:
//
//	[cache]
//	backend = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[serve]
//	addr = ":9000"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Filename is the settings file looked up inside a workspace.
const Filename = "canopy.toml"

// Cache backend names accepted in [cache].
const (
	CacheFile  = "file"
	CacheNull  = "null"
	CacheRedis = "redis"
)

// Store backend names accepted in [store].
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config is the full settings tree.
type Config struct {
	Cache CacheConfig `toml:"cache"`
	Store StoreConfig `toml:"store"`
	Serve ServeConfig `toml:"serve"`
	Watch WatchConfig `toml:"watch"`
}

// CacheConfig selects and configures the position cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`   // file backend only; empty means the user cache dir
	Scope   string      `toml:"scope"` // key prefix when several projects share one backend
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig holds redis backend settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StoreConfig selects and configures workspace persistence.
type StoreConfig struct {
	Backend string      `toml:"backend"`
	Mongo   MongoConfig `toml:"mongo"`
}

// MongoConfig holds mongo backend settings.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServeConfig holds HTTP server settings.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// WatchConfig holds file watching settings.
type WatchConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Cache: CacheConfig{Backend: CacheFile},
		Store: StoreConfig{Backend: StoreMemory},
		Serve: ServeConfig{Addr: ":8080"},
		Watch: WatchConfig{DebounceMS: 250},
	}
}

// Debounce returns the watch debounce as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// Validate checks backend names and value ranges.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheNull, CacheRedis:
	default:
		return fmt.Errorf("invalid cache backend: %q (must be one of: file, null, redis)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case StoreMemory, StoreMongo:
	default:
		return fmt.Errorf("invalid store backend: %q (must be one of: memory, mongo)", c.Store.Backend)
	}
	if c.Store.Backend == StoreMongo && c.Store.Mongo.URI == "" {
		return fmt.Errorf("store.mongo.uri is required for the mongo backend")
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms cannot be negative")
	}
	return nil
}

// Load reads and validates a settings file.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadWorkspace loads the settings file inside a workspace directory,
// falling back to defaults when the file does not exist.
func LoadWorkspace(workspace string) (Config, error) {
	path := filepath.Join(workspace, Filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}
