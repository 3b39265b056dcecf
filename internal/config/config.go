package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all payoff configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds planning defaults.
type GeneralConfig struct {
	Portfolio     string           `toml:"portfolio,omitempty"`
	Strategy      string           `toml:"strategy"`
	MonthlyBudget *decimal.Decimal `toml:"monthly_budget,omitempty"`
	Horizon       int              `toml:"horizon"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds settings for the background planner.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	Schedule     string `toml:"schedule"` // cron spec
	EventsBuffer int    `toml:"events_buffer"`
}

// LogConfig controls the logger built in cmd.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

// Environment variables that override the file.
const (
	EnvBudget    = "PAYOFF_BUDGET"
	EnvStrategy  = "PAYOFF_STRATEGY"
	EnvPortfolio = "PAYOFF_PORTFOLIO"
	EnvLogLevel  = "PAYOFF_LOG_LEVEL"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Strategy: "avalanche",
			Horizon:  600,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			Schedule:     "@every 15m",
			EventsBuffer: 200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "payoff")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "payoff")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the run history.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "payoff")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "payoff")
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies .env and PAYOFF_* overrides.
func Load() (Config, error) {
	cfg, err := LoadFile(ConfigPath())
	if err != nil {
		return cfg, err
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads one config file without env overrides.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides cfg with PAYOFF_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvBudget)); v != "" {
		b, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBudget, err)
		}
		cfg.General.MonthlyBudget = &b
	}
	if v := strings.TrimSpace(os.Getenv(EnvStrategy)); v != "" {
		cfg.General.Strategy = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPortfolio)); v != "" {
		cfg.General.Portfolio = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return SaveFile(ConfigPath(), cfg)
}

// SaveFile writes cfg to path with owner-only permissions.
func SaveFile(path string, cfg Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// PortfolioPath returns the configured portfolio file, defaulting to
// portfolio.toml next to the config.
func PortfolioPath(cfg Config) string {
	if cfg.General.Portfolio != "" {
		return expandHome(cfg.General.Portfolio)
	}
	return filepath.Join(ConfigDir(), "portfolio.toml")
}

// HistoryPath returns the SQLite run history location.
func HistoryPath() string {
	return filepath.Join(DataDir(), "history.db")
}

// BudgetString renders the configured budget for display, or "unset".
func BudgetString(cfg Config) string {
	if cfg.General.MonthlyBudget == nil {
		return "unset"
	}
	return cfg.General.MonthlyBudget.StringFixed(2)
}

// HorizonOrDefault returns the configured horizon or def when unset.
func HorizonOrDefault(cfg Config, def int) int {
	if cfg.General.Horizon > 0 {
		return cfg.General.Horizon
	}
	return def
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
