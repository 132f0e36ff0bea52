package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTesterEnv(t *testing.T) {
	t.Setenv("TELEGRAM_API_ID", "123456")
	t.Setenv("TELEGRAM_API_HASH", "0123456789abcdef0123456789abcdef")
	t.Setenv("TELEGRAM_PHONE", "+15551234567")
	t.Setenv("TARGET_BOT_USERNAME", "@mockbot")
	t.Setenv("SESSION_NAME", "")
	t.Setenv("RESPONSE_TIMEOUT", "")
}

func TestLoadConfig_Valid(t *testing.T) {
	setTesterEnv(t)

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, int32(123456), cfg.APIID)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.APIHash)
	assert.Equal(t, "+15551234567", cfg.Phone)
	assert.Equal(t, "mockbot", cfg.TargetBot, "leading @ should be stripped")
	assert.Equal(t, "tester.session", cfg.SessionFile)
	assert.Equal(t, 30*time.Second, cfg.DefaultTimeout)
}

func TestLoadConfig_MissingVariables(t *testing.T) {
	setTesterEnv(t)
	t.Setenv("TELEGRAM_API_HASH", "")
	t.Setenv("TARGET_BOT_USERNAME", "")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_API_HASH")
	assert.Contains(t, err.Error(), "TARGET_BOT_USERNAME")
	assert.NotContains(t, err.Error(), "TELEGRAM_PHONE")
}

func TestLoadConfig_BadAPIID(t *testing.T) {
	setTesterEnv(t)
	t.Setenv("TELEGRAM_API_ID", "not-a-number")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_API_ID")
}

func TestLoadConfig_Overrides(t *testing.T) {
	setTesterEnv(t)
	t.Setenv("SESSION_NAME", "alt.session")
	t.Setenv("RESPONSE_TIMEOUT", "5")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "alt.session", cfg.SessionFile)
	assert.Equal(t, 5*time.Second, cfg.DefaultTimeout)
}

func TestLoadConfig_BadTimeout(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Non Numeric", "soon"},
		{"Zero", "0"},
		{"Negative", "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setTesterEnv(t)
			t.Setenv("RESPONSE_TIMEOUT", tt.value)

			_, err := loadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "RESPONSE_TIMEOUT")
		})
	}
}
