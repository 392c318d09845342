// Package config loads trader configuration from YAML with environment
// overrides for secrets and deploy-time switches.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string `yaml:"log_level"`

	Paper   PaperConfig   `yaml:"paper"`
	Risk    RiskConfig    `yaml:"risk"`
	Oracle  OracleConfig  `yaml:"oracle"`
	API     APIConfig     `yaml:"api"`
	Journal JournalConfig `yaml:"journal"`

	Telegram TelegramConfig `yaml:"telegram"`
}

type PaperConfig struct {
	InitialCash float64 `yaml:"initial_cash"`
	// RandomSeed pins the fill simulator's randomness. Zero means
	// time-seeded.
	RandomSeed int64 `yaml:"random_seed"`
}

// RiskConfig optionally seeds the engine's active policy at startup. With
// Enabled false the engine starts unconstrained.
type RiskConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Policy          string  `yaml:"policy"`
	MaxPositionSize float64 `yaml:"max_position_size"`
	MaxVaR          float64 `yaml:"max_var"`
	MaxDrawdown     float64 `yaml:"max_drawdown"`
	MaxLeverage     float64 `yaml:"max_leverage"`
}

type OracleConfig struct {
	// Mode selects the price source: "mock" (random walk) or "deribit"
	// (public websocket ticker feed).
	Mode        string        `yaml:"mode"`
	Instruments []string      `yaml:"instruments"`
	DeribitURL  string        `yaml:"deribit_url"`
	Reconnect   time.Duration `yaml:"reconnect"`
}

type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Paper: PaperConfig{
			InitialCash: 100000,
		},
		Oracle: OracleConfig{
			Mode:        "mock",
			Instruments: []string{"BTC-PERPETUAL", "ETH-PERPETUAL"},
			Reconnect:   5 * time.Second,
		},
		API: APIConfig{
			Enabled: true,
			Addr:    ":8090",
		},
		Journal: JournalConfig{
			Enabled: true,
			Dir:     "data",
		},
	}
}

// LoadFile reads a YAML config over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides secrets and deploy switches from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := strings.TrimSpace(os.Getenv("TRADER_LOG_LEVEL")); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("TRADER_ORACLE_MODE")); v != "" {
		c.Oracle.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("TRADER_API_ADDR")); v != "" {
		c.API.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("TRADER_INITIAL_CASH")); v != "" {
		if cash, err := strconv.ParseFloat(v, 64); err == nil {
			c.Paper.InitialCash = cash
		}
	}
}

// Validate checks high-impact runtime configuration constraints.
func (c Config) Validate() error {
	if c.Paper.InitialCash <= 0 {
		return fmt.Errorf("paper.initial_cash must be > 0, got %f", c.Paper.InitialCash)
	}

	mode := strings.ToLower(strings.TrimSpace(c.Oracle.Mode))
	if mode != "" && mode != "mock" && mode != "deribit" {
		return fmt.Errorf("oracle.mode must be 'mock' or 'deribit', got %q", c.Oracle.Mode)
	}
	if mode == "deribit" && len(c.Oracle.Instruments) == 0 {
		return fmt.Errorf("oracle.instruments must not be empty in deribit mode")
	}

	if c.Risk.Enabled {
		if c.Risk.MaxVaR < 0 || c.Risk.MaxVaR > 1 {
			return fmt.Errorf("risk.max_var must be within [0,1], got %f", c.Risk.MaxVaR)
		}
		if c.Risk.MaxDrawdown < 0 || c.Risk.MaxDrawdown > 1 {
			return fmt.Errorf("risk.max_drawdown must be within [0,1], got %f", c.Risk.MaxDrawdown)
		}
		if c.Risk.MaxPositionSize < 0 {
			return fmt.Errorf("risk.max_position_size must be >= 0, got %f", c.Risk.MaxPositionSize)
		}
	}

	if c.API.Enabled && strings.TrimSpace(c.API.Addr) == "" {
		return fmt.Errorf("api.addr must be set when the API is enabled")
	}
	return nil
}
