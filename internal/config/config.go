// internal/config/config.go
//
// Runtime configuration for the server and the terminal client.
//
// Precedence (highest wins):
//  1. Environment variables (a .env file is loaded into the environment by main)
//  2. Optional JSONC config file (comments and trailing commas allowed)
//  3. Defaults

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tailscale/hujson"

	"github.com/robalobadob/wordle/apps/go-engine/internal/game"
)

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigInvalid      = errors.New("invalid config")
)

// Config holds all configuration options.
type Config struct {
	Port         string `json:"port"`
	LogLevel     string `json:"log_level"`
	Attempts     int    `json:"attempts"`
	Feedback     string `json:"feedback"`
	WordsFile    string `json:"words_file,omitempty"`
	DictDB       string `json:"dict_db,omitempty"`
	WordLength   int    `json:"word_length"`
	JWTSecret    string `json:"jwt_secret,omitempty"`
	DailySalt    string `json:"daily_salt,omitempty"`
	ClientOrigin string `json:"client_origin"`
	SessionTTL   string `json:"session_ttl"`

	// Source is the config file that was loaded, if any.
	Source string `json:"-"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Port:         "5175",
		LogLevel:     "info",
		Attempts:     game.DefaultAttempts,
		Feedback:     "simple",
		WordLength:   5,
		DailySalt:    "wordle",
		ClientOrigin: "http://localhost:5173",
		SessionTTL:   "24h",
	}
}

// Load reads path (if non-empty) and applies the process environment.
func Load(path string) (Config, error) {
	return LoadWith(path, os.Getenv)
}

// LoadWith is Load with an explicit environment lookup.
func LoadWith(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Config{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		fileCfg, err := parse(data)
		if err != nil {
			return Config{}, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
		}
		cfg = merge(cfg, fileCfg)
		cfg.Source = path
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Attempts < 1 || c.Attempts > game.MaxAttempts {
		return fmt.Errorf("attempts must be between 1 and %d, got %d", game.MaxAttempts, c.Attempts)
	}
	if c.WordLength < 1 {
		return fmt.Errorf("word_length must be positive, got %d", c.WordLength)
	}
	if _, err := c.FeedbackRule(); err != nil {
		return err
	}
	if _, err := c.TTL(); err != nil {
		return err
	}
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	return nil
}

// FeedbackRule maps Feedback to the game rule.
func (c Config) FeedbackRule() (game.FeedbackRule, error) {
	switch strings.ToLower(c.Feedback) {
	case "", "simple":
		return game.FeedbackSimple, nil
	case "strict":
		return game.FeedbackStrict, nil
	}
	return 0, fmt.Errorf("feedback must be simple or strict, got %q", c.Feedback)
}

// TTL parses SessionTTL. Zero disables pruning.
func (c Config) TTL() (time.Duration, error) {
	if c.SessionTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("session_ttl: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("session_ttl must not be negative, got %s", c.SessionTTL)
	}
	return d, nil
}

func parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config
	dec := json.NewDecoder(strings.NewReader(string(standardized)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Port != "" {
		base.Port = overlay.Port
	}
	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}
	if overlay.Attempts != 0 {
		base.Attempts = overlay.Attempts
	}
	if overlay.Feedback != "" {
		base.Feedback = overlay.Feedback
	}
	if overlay.WordsFile != "" {
		base.WordsFile = overlay.WordsFile
	}
	if overlay.DictDB != "" {
		base.DictDB = overlay.DictDB
	}
	if overlay.WordLength != 0 {
		base.WordLength = overlay.WordLength
	}
	if overlay.JWTSecret != "" {
		base.JWTSecret = overlay.JWTSecret
	}
	if overlay.DailySalt != "" {
		base.DailySalt = overlay.DailySalt
	}
	if overlay.ClientOrigin != "" {
		base.ClientOrigin = overlay.ClientOrigin
	}
	if overlay.SessionTTL != "" {
		base.SessionTTL = overlay.SessionTTL
	}
	return base
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := map[string]*string{
		"PORT":          &cfg.Port,
		"LOG_LEVEL":     &cfg.LogLevel,
		"FEEDBACK":      &cfg.Feedback,
		"WORDS_FILE":    &cfg.WordsFile,
		"DICT_DB":       &cfg.DictDB,
		"JWT_SECRET":    &cfg.JWTSecret,
		"DAILY_SALT":    &cfg.DailySalt,
		"CLIENT_ORIGIN": &cfg.ClientOrigin,
		"SESSION_TTL":   &cfg.SessionTTL,
	}
	for k, dst := range str {
		if v := getenv(k); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"ATTEMPTS":    &cfg.Attempts,
		"WORD_LENGTH": &cfg.WordLength,
	}
	for k, dst := range ints {
		v := getenv(k)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		*dst = n
	}
	return nil
}
