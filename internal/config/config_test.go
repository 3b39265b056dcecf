package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.General.Strategy != "avalanche" {
		t.Fatalf("Strategy = %q, want avalanche", cfg.General.Strategy)
	}
	if cfg.General.Horizon != 600 {
		t.Fatalf("Horizon = %d, want 600", cfg.General.Horizon)
	}
	if cfg.General.MonthlyBudget != nil {
		t.Fatalf("MonthlyBudget = %v, want nil", cfg.General.MonthlyBudget)
	}
}

func TestLoadFile_ParsesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[general]
portfolio = "/tmp/debts.toml"
strategy = "snowball"
monthly_budget = 850.5
horizon = 360

[daemon]
schedule = "0 6 * * *"

[log]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.General.Strategy != "snowball" || cfg.General.Horizon != 360 {
		t.Fatalf("general = %+v", cfg.General)
	}
	if cfg.General.MonthlyBudget == nil || !cfg.General.MonthlyBudget.Equal(decimal.RequireFromString("850.5")) {
		t.Fatalf("MonthlyBudget = %v, want 850.5", cfg.General.MonthlyBudget)
	}
	if cfg.Daemon.Schedule != "0 6 * * *" {
		t.Fatalf("Daemon.Schedule = %q", cfg.Daemon.Schedule)
	}
	// unset keys keep their defaults
	if cfg.Daemon.Addr != "127.0.0.1:8787" {
		t.Fatalf("Daemon.Addr = %q, want default", cfg.Daemon.Addr)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("log = %+v", cfg.Log)
	}
}

func TestLoadFile_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\nstrategy ="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvBudget, " 1200.25 ")
	t.Setenv(EnvStrategy, "snowball")
	t.Setenv(EnvPortfolio, "/data/p.json")
	t.Setenv(EnvLogLevel, "warn")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if got := BudgetString(cfg); got != "1200.25" {
		t.Fatalf("budget = %s, want 1200.25", got)
	}
	if cfg.General.Strategy != "snowball" || cfg.General.Portfolio != "/data/p.json" || cfg.Log.Level != "warn" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestApplyEnv_BadBudget(t *testing.T) {
	t.Setenv(EnvBudget, "lots")
	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err == nil {
		t.Fatal("expected error for non-numeric budget")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if Exists() {
		t.Fatal("Exists() = true before Save")
	}

	cfg := DefaultConfig()
	b := decimal.RequireFromString("640")
	cfg.General.MonthlyBudget = &b
	cfg.Appearance.Theme = "catppuccin-mocha"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	info, err := os.Stat(ConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("config mode = %o, want 600", perm)
	}

	got, err := LoadFile(ConfigPath())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Appearance.Theme != "catppuccin-mocha" {
		t.Fatalf("Theme = %q", got.Appearance.Theme)
	}
	if BudgetString(got) != "640.00" {
		t.Fatalf("budget = %s, want 640.00", BudgetString(got))
	}
}

func TestPortfolioPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	cfg := DefaultConfig()
	if got := PortfolioPath(cfg); got != "/cfg/payoff/portfolio.toml" {
		t.Fatalf("PortfolioPath = %q", got)
	}
	cfg.General.Portfolio = "/elsewhere/debts.json"
	if got := PortfolioPath(cfg); got != "/elsewhere/debts.json" {
		t.Fatalf("PortfolioPath = %q", got)
	}
}
