// internal/config/config.go
//
// Process configuration read from the environment (after godotenv has loaded
// any .env file) through viper, with defaults for local development.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Session store kinds.
const (
	SessionMemory = "memory"
	SessionValkey = "valkey"
)

type Config struct {
	Port string

	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	DatabasePath string

	WordsFile    string // empty = embedded dictionary
	WordMinLen   int
	WordMaxLen   int
	WordBandSize int

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool

	SessionStore string
	ValkeyAddr   string
	ValkeyPass   string
	ValkeyDB     int
	SessionTTL   time.Duration

	AuthRatePerMinute int
	LeaderboardLimit  int
}

var defaults = map[string]any{
	"PORT":                 "5175",
	"LOG_LEVEL":            "info",
	"LOG_FILE":             "",
	"LOG_MAX_SIZE_MB":      50,
	"LOG_MAX_BACKUPS":      3,
	"LOG_MAX_AGE_DAYS":     14,
	"DATABASE_PATH":        "./data/hangman.db",
	"WORDS_FILE":           "",
	"WORD_MIN_LEN":         6,
	"WORD_MAX_LEN":         10,
	"WORD_BAND_SIZE":       2000,
	"JWT_SECRET":           "dev_secret_change_me",
	"JWT_EXPIRES_DAYS":     14,
	"COOKIE_NAME":          "hangman_token",
	"CLIENT_ORIGIN":        "http://localhost:5173",
	"NODE_ENV":             "development",
	"SESSION_STORE":        SessionMemory,
	"VALKEY_ADDR":          "localhost:6379",
	"VALKEY_PASSWORD":      "",
	"VALKEY_DB":            0,
	"SESSION_TTL":          "24h",
	"AUTH_RATE_PER_MINUTE": 20,
	"LEADERBOARD_LIMIT":    20,
}

// Load reads and validates the configuration.
func Load() (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	c := &Config{
		Port:              v.GetString("PORT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFile:           v.GetString("LOG_FILE"),
		LogMaxSizeMB:      v.GetInt("LOG_MAX_SIZE_MB"),
		LogMaxBackups:     v.GetInt("LOG_MAX_BACKUPS"),
		LogMaxAgeDays:     v.GetInt("LOG_MAX_AGE_DAYS"),
		DatabasePath:      v.GetString("DATABASE_PATH"),
		WordsFile:         strings.TrimSpace(v.GetString("WORDS_FILE")),
		WordMinLen:        v.GetInt("WORD_MIN_LEN"),
		WordMaxLen:        v.GetInt("WORD_MAX_LEN"),
		WordBandSize:      v.GetInt("WORD_BAND_SIZE"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTExpiresDays:    v.GetInt("JWT_EXPIRES_DAYS"),
		CookieName:        v.GetString("COOKIE_NAME"),
		ClientOrigin:      v.GetString("CLIENT_ORIGIN"),
		Production:        v.GetString("NODE_ENV") == "production",
		SessionStore:      strings.ToLower(strings.TrimSpace(v.GetString("SESSION_STORE"))),
		ValkeyAddr:        v.GetString("VALKEY_ADDR"),
		ValkeyPass:        v.GetString("VALKEY_PASSWORD"),
		ValkeyDB:          v.GetInt("VALKEY_DB"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		AuthRatePerMinute: v.GetInt("AUTH_RATE_PER_MINUTE"),
		LeaderboardLimit:  v.GetInt("LEADERBOARD_LIMIT"),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	if c.WordMinLen < 1 || c.WordMinLen > c.WordMaxLen {
		errs = append(errs, fmt.Errorf("word length range %d..%d is invalid", c.WordMinLen, c.WordMaxLen))
	}
	if c.WordBandSize <= 0 {
		errs = append(errs, fmt.Errorf("WORD_BAND_SIZE must be positive, got %d", c.WordBandSize))
	}
	switch c.SessionStore {
	case SessionMemory, SessionValkey:
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is empty"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address.
func (c *Config) Addr() string { return ":" + c.Port }
