package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the tester account credentials and run defaults. Everything
// here is externally supplied and treated as opaque; nothing is validated
// beyond presence and basic syntax.
type Config struct {
	APIID          int32
	APIHash        string
	Phone          string
	TargetBot      string // username of the bot under test, without the @
	SessionFile    string
	DefaultTimeout time.Duration
	Verbose        bool // set from the command line, not the environment
}

// loadConfig reads configuration from the environment. A .env file in the
// working directory is honored when present; real environment variables win.
func loadConfig() (Config, error) {
	_ = godotenv.Load()

	var missing []string
	need := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	apiID := need("TELEGRAM_API_ID")
	apiHash := need("TELEGRAM_API_HASH")
	phone := need("TELEGRAM_PHONE")
	target := need("TARGET_BOT_USERNAME")

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	id, err := strconv.ParseInt(apiID, 10, 32)
	if err != nil {
		return Config{}, fmt.Errorf("TELEGRAM_API_ID must be numeric: %w", err)
	}

	cfg := Config{
		APIID:          int32(id),
		APIHash:        apiHash,
		Phone:          phone,
		TargetBot:      strings.TrimPrefix(target, "@"),
		SessionFile:    "tester.session",
		DefaultTimeout: 30 * time.Second,
	}

	if v := os.Getenv("SESSION_NAME"); v != "" {
		cfg.SessionFile = v
	}
	if v := os.Getenv("RESPONSE_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("RESPONSE_TIMEOUT must be a positive number of seconds, got %q", v)
		}
		cfg.DefaultTimeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}
