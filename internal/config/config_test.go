package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_ID", "1001")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "contactdesk")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, int64(1001), cfg.AdminID)
	assert.Equal(t, "uz", cfg.DefaultLanguage)
	assert.Equal(t, 20, cfg.UpdatesRate)
	assert.Equal(t, 25, cfg.BroadcastRate)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Empty(t, cfg.AMQPURL)
	assert.Empty(t, cfg.HealthAddr)
}

func TestFromEnv_HashOnly(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuu")

	cfg, err := fromEnv()
	require.NoError(t, err)
	assert.Empty(t, cfg.AdminPassword)
	assert.NotEmpty(t, cfg.AdminPasswordHash)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"missing token", "TELEGRAM_BOT_TOKEN", "", "TELEGRAM_BOT_TOKEN is required"},
		{"missing admin", "ADMIN_ID", "", "ADMIN_ID is required"},
		{"bad admin", "ADMIN_ID", "abc", "invalid ADMIN_ID"},
		{"missing password", "ADMIN_PASSWORD", "", "ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required"},
		{"missing uri", "MONGODB_URI", "", "MONGODB_URI is required"},
		{"zero broadcast rate", "BROADCAST_RATE", "0", "BROADCAST_RATE must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := fromEnv()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
