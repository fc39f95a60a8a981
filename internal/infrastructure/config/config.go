package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env        string `mapstructure:"ENV"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	ListenAddr string `mapstructure:"LISTEN_ADDR"`

	AmadeusBaseURL      string  `mapstructure:"AMADEUS_BASE_URL"`
	AmadeusClientID     string  `mapstructure:"AMADEUS_CLIENT_ID"`
	AmadeusClientSecret string  `mapstructure:"AMADEUS_CLIENT_SECRET"`
	AmadeusTimeoutSec   int     `mapstructure:"AMADEUS_TIMEOUT_SECONDS"`
	AmadeusRPS          float64 `mapstructure:"AMADEUS_REQUESTS_PER_SECOND"`

	MaxFlightResults int `mapstructure:"MAX_FLIGHT_RESULTS"`
	MaxHotelResults  int `mapstructure:"MAX_HOTEL_RESULTS"`
	TurnLimit        int `mapstructure:"TURN_LIMIT"`

	// Inventory database. Empty disables the inventory provider.
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	InventorySweepSec int    `mapstructure:"INVENTORY_SWEEP_SECONDS"`

	// Search cache. Empty REDIS_ADDR disables caching.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"REDIS_DB"`
	SearchCacheTTL int    `mapstructure:"SEARCH_CACHE_TTL_SECONDS"`

	AnthropicAPIKey string `mapstructure:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `mapstructure:"ANTHROPIC_MODEL"`

	CookieHashKeyB64  string `mapstructure:"COOKIE_HASH_KEY"`
	CookieBlockKeyB64 string `mapstructure:"COOKIE_BLOCK_KEY"`
	CookieHashKey     []byte `mapstructure:"-"`
	CookieBlockKey    []byte `mapstructure:"-"`

	// bcrypt hash of the bearer token required on /api. Empty leaves the API open.
	APITokenHash string `mapstructure:"API_TOKEN_HASH"`

	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	CORSOrigins        string `mapstructure:"CORS_ORIGINS"`
}

func (c Config) IsProduction() bool { return c.Env == "production" }

func (c Config) AmadeusTimeout() time.Duration {
	return time.Duration(c.AmadeusTimeoutSec) * time.Second
}

func (c Config) SearchCacheTTLDuration() time.Duration {
	return time.Duration(c.SearchCacheTTL) * time.Second
}

func (c Config) InventorySweepInterval() time.Duration {
	return time.Duration(c.InventorySweepSec) * time.Second
}

func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

var defaults = map[string]any{
	"ENV":                         "development",
	"LOG_LEVEL":                   "info",
	"LISTEN_ADDR":                 ":5000",
	"AMADEUS_BASE_URL":            "https://test.api.amadeus.com",
	"AMADEUS_TIMEOUT_SECONDS":     15,
	"AMADEUS_REQUESTS_PER_SECOND": 8.0,
	"MAX_FLIGHT_RESULTS":          5,
	"MAX_HOTEL_RESULTS":           3,
	"TURN_LIMIT":                  20,
	"DATABASE_URL":                "",
	"INVENTORY_SWEEP_SECONDS":     300,
	"REDIS_ADDR":                  "",
	"REDIS_PASSWORD":              "",
	"REDIS_DB":                    0,
	"SEARCH_CACHE_TTL_SECONDS":    600,
	"ANTHROPIC_API_KEY":           "",
	"ANTHROPIC_MODEL":             "claude-sonnet-4-20250514",
	"COOKIE_HASH_KEY":             "",
	"COOKIE_BLOCK_KEY":            "",
	"API_TOKEN_HASH":              "",
	"RATE_LIMIT_PER_MINUTE":       60,
	"CORS_ORIGINS":                "*",
}

// FromEnv reads configuration from the environment, an optional .env file
// (outside production) and an optional tripplanner.yaml.
func FromEnv() (Config, error) {
	if os.Getenv("ENV") != "production" {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetConfigName("tripplanner")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.resolve()
}

func (c *Config) resolve() error {
	if c.TurnLimit < 1 {
		return fmt.Errorf("TURN_LIMIT must be >= 1")
	}
	if c.MaxHotelResults < 1 || c.MaxFlightResults < 1 {
		return fmt.Errorf("MAX_FLIGHT_RESULTS and MAX_HOTEL_RESULTS must be >= 1")
	}
	var err error
	c.CookieHashKey, err = keyOrRandom("COOKIE_HASH_KEY", c.CookieHashKeyB64, c.IsProduction())
	if err != nil {
		return err
	}
	c.CookieBlockKey, err = keyOrRandom("COOKIE_BLOCK_KEY", c.CookieBlockKeyB64, c.IsProduction())
	if err != nil {
		return err
	}
	if n := len(c.CookieBlockKey); n != 16 && n != 24 && n != 32 {
		return fmt.Errorf("COOKIE_BLOCK_KEY must decode to 16, 24 or 32 bytes (got %d)", n)
	}
	return nil
}

// keyOrRandom decodes a base64 key. Outside production a missing key is
// replaced by a random one, so cookies do not survive a restart.
func keyOrRandom(name, val string, required bool) ([]byte, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		if required {
			return nil, fmt.Errorf("%s is required (base64)", name)
		}
		b := make([]byte, 32)
		_, err := rand.Read(b)
		return b, err
	}
	if b, err := base64.StdEncoding.DecodeString(val); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(val)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}
