package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	UI       UIConfig       `mapstructure:"ui"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Log      LogConfig      `mapstructure:"log"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path     string `mapstructure:"path"`
	SeedDemo bool   `mapstructure:"seed_demo"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	StartScreen     string        `mapstructure:"start_screen"`
	CurrencySymbol  string        `mapstructure:"currency_symbol"`
	Timezone        string        `mapstructure:"timezone"`
	// OnboardingDelay is the simulated sign-in wait on the welcome flow.
	OnboardingDelay time.Duration `mapstructure:"onboarding_delay"`
}

// PaymentConfig tunes the simulated payment.
type PaymentConfig struct {
	TickInterval  time.Duration `mapstructure:"tick_interval"`
	Step          int           `mapstructure:"step"`
	SuccessDelay  time.Duration `mapstructure:"success_delay"`
	ScheduleDelay time.Duration `mapstructure:"schedule_delay"`
}

// BridgeConfig controls the loopback location/back-button bridge.
type BridgeConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Addr          string  `mapstructure:"addr"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// LogConfig controls the zap logger. The terminal belongs to the UI, so logs
// always go to a file.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	File        string `mapstructure:"file"`
	Development bool   `mapstructure:"development"`
}

// CatalogConfig points at an alternative plot catalogue. Empty uses the
// built-in one.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "plotbook")
}

func configPath() string {
	if p := os.Getenv("PLOTBOOK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "plotbook", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix PLOTBOOK_.
// A .env file in the working directory is applied first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(dataDir(), "plotbook.db"))
	v.SetDefault("database.seed_demo", true)
	v.SetDefault("ui.start_screen", "maps")
	v.SetDefault("ui.currency_symbol", "₹")
	v.SetDefault("ui.timezone", "Asia/Kolkata")
	v.SetDefault("ui.onboarding_delay", time.Second)
	v.SetDefault("payment.tick_interval", 200*time.Millisecond)
	v.SetDefault("payment.step", 10)
	v.SetDefault("payment.success_delay", time.Second)
	v.SetDefault("payment.schedule_delay", 3*time.Second)
	v.SetDefault("bridge.enabled", true)
	v.SetDefault("bridge.addr", "127.0.0.1:8765")
	v.SetDefault("bridge.rate_per_second", 5.0)
	v.SetDefault("bridge.burst", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dataDir(), "plotbook.log"))
	v.SetDefault("log.development", false)
	v.SetDefault("catalog.path", "")

	v.SetConfigType("toml")

	if cfgPath := os.Getenv("PLOTBOOK_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "plotbook"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PLOTBOOK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the app cannot run with.
func (c Config) Validate() error {
	switch c.UI.StartScreen {
	case "maps", "home":
	default:
		return fmt.Errorf("ui.start_screen must be maps or home, got %q", c.UI.StartScreen)
	}
	if c.Payment.Step <= 0 || c.Payment.Step > 100 {
		return fmt.Errorf("payment.step must be in 1..100, got %d", c.Payment.Step)
	}
	if c.Payment.TickInterval <= 0 {
		return fmt.Errorf("payment.tick_interval must be positive")
	}
	if c.Bridge.Enabled && c.Bridge.RatePerSecond <= 0 {
		return fmt.Errorf("bridge.rate_per_second must be positive")
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.seed_demo", cfg.Database.SeedDemo)
	v.Set("ui.start_screen", cfg.UI.StartScreen)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.onboarding_delay", cfg.UI.OnboardingDelay.String())
	v.Set("payment.tick_interval", cfg.Payment.TickInterval.String())
	v.Set("payment.step", cfg.Payment.Step)
	v.Set("payment.success_delay", cfg.Payment.SuccessDelay.String())
	v.Set("payment.schedule_delay", cfg.Payment.ScheduleDelay.String())
	v.Set("bridge.enabled", cfg.Bridge.Enabled)
	v.Set("bridge.addr", cfg.Bridge.Addr)
	v.Set("bridge.rate_per_second", cfg.Bridge.RatePerSecond)
	v.Set("bridge.burst", cfg.Bridge.Burst)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("log.development", cfg.Log.Development)
	v.Set("catalog.path", cfg.Catalog.Path)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
