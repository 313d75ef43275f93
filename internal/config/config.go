package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"PortfolioGuard/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider      string        `yaml:"provider"` // "finnhub" or "yahoo"
		BaseURL       string        `yaml:"base_url"`
		APIKey        string        `yaml:"api_key"`
		Timeout       time.Duration `yaml:"timeout"`
		RatePerMinute int           `yaml:"rate_per_minute"`
		Concurrency   int           `yaml:"concurrency"`
		CacheTTL      time.Duration `yaml:"cache_ttl"`
	} `yaml:"data_source"`
	Risk struct {
		PerPositionLimit float64 `yaml:"per_position_limit"`
		HardLimit        float64 `yaml:"hard_limit"`
		CurrencySymbol   string  `yaml:"currency_symbol"`
	} `yaml:"risk"`
	Store struct {
		Backend         string           `yaml:"backend"` // "file" or "sqlite"
		File            string           `yaml:"file"`
		SQLitePath      string           `yaml:"sqlite_path"`
		Timezone        string           `yaml:"timezone"`
		WindowStartHour *int             `yaml:"window_start_hour"`
		WindowEndHour   *int             `yaml:"window_end_hour"`
		Seed            []model.Position `yaml:"seed"`
	} `yaml:"store"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		CheckCron string `yaml:"check_cron"`
	} `yaml:"schedule"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Logger struct {
		Level    string `yaml:"level"`
		Encoding string `yaml:"encoding"`
	} `yaml:"logger"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults and env fill in.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("QUOTE_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	if v := os.Getenv("POSITIONS_FILE"); v != "" {
		c.Store.File = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Store.SQLitePath = v
		c.Store.Backend = "sqlite"
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := os.Getenv("CRON_CHECK"); v != "" {
		c.Schedule.CheckCron = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "finnhub"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 5 * time.Second
	}
	if c.DataSource.RatePerMinute == 0 {
		c.DataSource.RatePerMinute = 60
	}
	if c.DataSource.Concurrency == 0 {
		c.DataSource.Concurrency = 4
	}
	if c.Risk.PerPositionLimit == 0 {
		c.Risk.PerPositionLimit = 35
	}
	if c.Risk.HardLimit == 0 {
		c.Risk.HardLimit = 60
	}
	if c.Risk.CurrencySymbol == "" {
		c.Risk.CurrencySymbol = "€"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	if c.Store.File == "" {
		c.Store.File = "data/positions.json"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "data/portfolio_guard.db"
	}
	if c.Store.WindowStartHour == nil {
		start := 8
		c.Store.WindowStartHour = &start
	}
	if c.Store.WindowEndHour == nil {
		end := 22
		c.Store.WindowEndHour = &end
	}
	if c.Schedule.CheckCron == "" {
		c.Schedule.CheckCron = "0 */15 9-22 * * 1-5"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Encoding == "" {
		c.Logger.Encoding = "console"
	}
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "finnhub", "yahoo":
	default:
		return fmt.Errorf("data_source.provider must be finnhub or yahoo, got %q", c.DataSource.Provider)
	}
	if c.DataSource.Timeout < 0 {
		return fmt.Errorf("data_source.timeout must not be negative")
	}
	if c.DataSource.Concurrency < 0 {
		return fmt.Errorf("data_source.concurrency must not be negative")
	}
	if c.Risk.PerPositionLimit <= 0 {
		return fmt.Errorf("risk.per_position_limit must be positive")
	}
	if c.Risk.HardLimit <= 0 {
		return fmt.Errorf("risk.hard_limit must be positive")
	}
	switch c.Store.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("store.backend must be file or sqlite, got %q", c.Store.Backend)
	}
	start, end := *c.Store.WindowStartHour, *c.Store.WindowEndHour
	if start < 0 || start > 23 || end < 0 || end > 23 {
		return fmt.Errorf("store window hours must be within 0..23")
	}
	if start >= end {
		return fmt.Errorf("store.window_start_hour must be before store.window_end_hour")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	seen := map[string]bool{}
	for i, p := range c.Store.Seed {
		if p.Symbol == "" {
			return fmt.Errorf("store.seed[%d]: symbol is required", i)
		}
		if seen[p.Symbol] {
			return fmt.Errorf("store.seed[%d]: duplicate symbol %s", i, p.Symbol)
		}
		seen[p.Symbol] = true
		if p.InvestedAmount < 0 {
			return fmt.Errorf("store.seed[%d]: invested_amount must not be negative", i)
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// Location resolves store.timezone; empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Store.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Store.Timezone)
	if err != nil {
		return nil, fmt.Errorf("store.timezone: %w", err)
	}
	return loc, nil
}

// TelegramEnabled reports whether Telegram delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != 0
}
