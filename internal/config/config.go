// Package config loads the storefront configuration from a YAML file and
// STOREFRONT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
// STOREFRONT_STORE_REDIS_ADDR sets store.redis.addr.
const EnvPrefix = "STOREFRONT_"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

type Config struct {
	Log          Log          `mapstructure:"log"`
	Telegram     Telegram     `mapstructure:"telegram"`
	Store        Store        `mapstructure:"store"`
	Database     Database     `mapstructure:"database"`
	Navigation   Navigation   `mapstructure:"navigation"`
	HTTP         HTTP         `mapstructure:"http"`
	Subscription Subscription `mapstructure:"subscription"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Telegram struct {
	Token        string        `mapstructure:"token"`
	PaymentToken string        `mapstructure:"payment_token"`
	Currency     string        `mapstructure:"currency"`
	PollTimeout  time.Duration `mapstructure:"poll_timeout"`
}

type Store struct {
	Driver        string `mapstructure:"driver"`
	Redis         Redis  `mapstructure:"redis"`
	Dir           string `mapstructure:"dir"` // file driver
	EncryptionKey string `mapstructure:"encryption_key"` // comma separated base64 keys, first is active
}

type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type Database struct {
	Path string `mapstructure:"path"`
}

type Navigation struct {
	PageSize    int           `mapstructure:"page_size"`
	LoadTimeout time.Duration `mapstructure:"load_timeout"`
}

type HTTP struct {
	Addr string `mapstructure:"addr"`
}

type Subscription struct {
	Enabled bool `mapstructure:"enabled"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Log:      Log{Level: "info", Format: "text"},
		Telegram: Telegram{Currency: "USD", PollTimeout: 10 * time.Second},
		Store: Store{
			Driver: DriverMemory,
			Dir:    ".storefront/sessions",
			Redis:  Redis{Addr: "localhost:6379", Prefix: "storefront:session:"},
		},
		Database:   Database{Path: "storefront.db"},
		Navigation: Navigation{PageSize: 5, LoadTimeout: 10 * time.Second},
		HTTP:       HTTP{Addr: ":8080"},
	}
}

// Load reads path (optional, may be empty) and applies environment overrides.
func Load(path string) (Config, error) {
	return load(path, os.Environ())
}

func load(path string, environ []string) (Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	applyEnv(raw, environ)

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, cfg.Validate()
}

// applyEnv merges STOREFRONT_* variables into raw. Keys are matched against
// the known sections so that names containing underscores survive.
func applyEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		path := envPath(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)))
		if path == nil {
			continue
		}
		set(raw, path, value)
	}
}

// envKeys lists every settable key in dotted form.
var envKeys = []string{
	"log.level", "log.format",
	"telegram.token", "telegram.payment_token", "telegram.currency", "telegram.poll_timeout",
	"store.driver", "store.dir", "store.encryption_key",
	"store.redis.addr", "store.redis.password", "store.redis.db", "store.redis.prefix", "store.redis.ttl",
	"database.path",
	"navigation.page_size", "navigation.load_timeout",
	"http.addr",
	"subscription.enabled",
}

func envPath(name string) []string {
	for _, key := range envKeys {
		if strings.ReplaceAll(key, ".", "_") == name {
			return strings.Split(key, ".")
		}
	}
	return nil
}

func set(raw map[string]any, path []string, value string) {
	for _, part := range path[:len(path)-1] {
		next, ok := raw[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			raw[part] = next
		}
		raw = next
	}
	raw[path[len(path)-1]] = value
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Navigation.PageSize < 1 {
		return errors.New("navigation.page_size must be positive")
	}
	if c.Navigation.LoadTimeout <= 0 {
		return errors.New("navigation.load_timeout must be positive")
	}
	if len(c.Telegram.Currency) != 3 {
		return fmt.Errorf("telegram.currency %q is not an ISO 4217 code", c.Telegram.Currency)
	}
	return nil
}
