package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromYAMLWithDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "1:abc"
  channel_id: -100200
  admin_id: 7
database:
  host: db
  user: bot
  name: reviews
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "1:abc", cfg.Telegram.Token)
	require.Equal(t, int64(-100200), cfg.Telegram.ChannelID)
	require.Equal(t, int64(7), cfg.Telegram.AdminID)
	require.True(t, cfg.Database.Enabled())
	require.Zero(t, cfg.Review.SessionTTL(), "drafts never expire unless configured")
	require.Zero(t, cfg.Review.SweepInterval())
	require.Same(t, &cfg.Config, cfg.CoreConfig())
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("BOT_TOKEN", "2:env")
	t.Setenv("TELEGRAM_CHANNEL_ID", "-42")
	t.Setenv("REVIEW_SESSION_TTL_MINUTES", "45")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	require.Equal(t, "2:env", cfg.Telegram.Token)
	require.Equal(t, int64(-42), cfg.Telegram.ChannelID)
	require.False(t, cfg.Database.Enabled())
	require.Equal(t, 45*time.Minute, cfg.Review.SessionTTL())
	require.Equal(t, time.Minute, cfg.Review.SweepInterval())
}

func TestLoadRequiresTokenAndChannel(t *testing.T) {
	path := writeConfig(t, "review:\n  session_ttl_minutes: 5\n")
	_, err := Load(path)
	require.EqualError(t, err, "missing required config: telegram.token, telegram.channel_id")
}

func TestValidateSections(t *testing.T) {
	path := writeConfig(t, `
telegram: {token: "t", channel_id: -1}
database: {host: db}
`)
	_, err := Load(path)
	require.ErrorContains(t, err, "database.user")

	path = writeConfig(t, `
telegram: {token: "t", channel_id: -1}
review: {session_ttl_minutes: -1}
`)
	_, err = Load(path)
	require.ErrorContains(t, err, "session_ttl_minutes")
}
