package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PLOTBOOK_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "share", "plotbook", "plotbook.db"), cfg.Database.Path)
	require.Equal(t, "maps", cfg.UI.StartScreen)
	require.Equal(t, "₹", cfg.UI.CurrencySymbol)
	require.Equal(t, "Asia/Kolkata", cfg.UI.Timezone)
	require.Equal(t, time.Second, cfg.UI.OnboardingDelay)
	require.Equal(t, 200*time.Millisecond, cfg.Payment.TickInterval)
	require.Equal(t, 10, cfg.Payment.Step)
	require.Equal(t, 3*time.Second, cfg.Payment.ScheduleDelay)
	require.Equal(t, "127.0.0.1:8765", cfg.Bridge.Addr)
	require.True(t, cfg.Bridge.Enabled)
}

func TestLoadFileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[ui]
start_screen = "home"

[payment]
tick_interval = "50ms"
step = 25

[bridge]
enabled = false
`), 0o600))
	t.Setenv("PLOTBOOK_CONFIG", path)
	t.Setenv("PLOTBOOK_DATABASE_SEED_DEMO", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "home", cfg.UI.StartScreen)
	require.Equal(t, 50*time.Millisecond, cfg.Payment.TickInterval)
	require.Equal(t, 25, cfg.Payment.Step)
	require.False(t, cfg.Bridge.Enabled)
	require.False(t, cfg.Database.SeedDemo)
}

func TestLoadRejectsBadStartScreen(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PLOTBOOK_CONFIG", "")
	t.Setenv("PLOTBOOK_UI_START_SCREEN", "payment")

	_, err := Load()
	require.ErrorContains(t, err, "start_screen")
}

func TestSaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "cfg", "config.toml")
	t.Setenv("PLOTBOOK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.UI.StartScreen = "home"
	cfg.Payment.SuccessDelay = 2 * time.Second
	cfg.Catalog.Path = "/tmp/catalog.toml"
	require.NoError(t, Save(cfg))

	again, err := Load()
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}
