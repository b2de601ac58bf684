// Package config loads runtime settings from the environment, after
// merging an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting.
type Config struct {
	Port            string
	DatabasePath    string
	SecretKey       string
	Debug           bool
	AllowedHosts    []string
	AdminPassword   string
	BcryptCost      int
	CookieSecure    bool
	ScheduleFile    string
	ExpiryInterval  time.Duration
	ChannelBackend  string
	ChannelBrokers  []string
	ChannelTopic    string
	ResultRetention time.Duration
}

// Load reads .env files (when present) and then the environment.
// Variables already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           envOrDefault("PORT", "8080"),
		DatabasePath:   envOrDefault("DATABASE_PATH", "db.sqlite3"),
		SecretKey:      os.Getenv("SECRET_KEY"),
		Debug:          os.Getenv("DEBUG") == "True",
		AllowedHosts:   splitList(envOrDefault("ALLOWED_HOSTS", "*")),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		CookieSecure:   os.Getenv("COOKIE_SECURE") != "false",
		ScheduleFile:   os.Getenv("SCHEDULE_FILE"),
		ChannelBackend: envOrDefault("CHANNEL_BACKEND", "memory"),
		ChannelBrokers: splitList(envOrDefault("CHANNEL_BROKERS", "localhost:9092")),
		ChannelTopic:   envOrDefault("CHANNEL_TOPIC", "students"),
	}

	if len(cfg.SecretKey) < 32 {
		return nil, errors.New("SECRET_KEY must be set and at least 32 characters for HMAC-SHA256 security")
	}

	var err error
	if cfg.BcryptCost, err = intEnv("BCRYPT_COST", 12); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 14 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cfg.BcryptCost)
	}

	if cfg.ExpiryInterval, err = durationEnv("EXPIRY_INTERVAL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ResultRetention, err = durationEnv("RESULT_RETENTION", 24*time.Hour); err != nil {
		return nil, err
	}

	switch cfg.ChannelBackend {
	case "memory", "kafka":
	default:
		return nil, fmt.Errorf("CHANNEL_BACKEND must be memory or kafka, got %q", cfg.ChannelBackend)
	}

	return cfg, nil
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func intEnv(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// durationEnv accepts Go durations ("10s") or bare seconds ("10").
func durationEnv(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		secs, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		if secs > math.MaxInt64/float64(time.Second) {
			return 0, fmt.Errorf("%s out of range: %s", key, v)
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
