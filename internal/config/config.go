package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"SignalSentinel/internal/model"
)

// DefaultTickers is the watchlist used when none is configured.
var DefaultTickers = []string{"AMD", "NVDA", "MSFT", "META", "NFLX", "TSLA", "AMZN", "AAPL", "COST"}

// DefaultSlots fire twice each weekday, shortly after the open and mid-morning (Pacific).
var DefaultSlots = []string{
	"Mon 06:31", "Mon 10:31",
	"Tue 06:31", "Tue 10:31",
	"Wed 06:31", "Wed 10:31",
	"Thu 06:31", "Thu 10:31",
	"Fri 06:31", "Fri 10:31",
}

// Config holds all application configuration.
type Config struct {
	Tickers    []string              `yaml:"tickers"`
	Indicators model.IndicatorParams `yaml:"indicators"`
	DataSource struct {
		Provider         string        `yaml:"provider"`
		BaseURL          string        `yaml:"base_url"`
		APIKey           string        `yaml:"api_key"`
		APISecret        string        `yaml:"api_secret"`
		DailyPeriod      string        `yaml:"daily_period"`
		DailyInterval    string        `yaml:"daily_interval"`
		IntradayPeriod   string        `yaml:"intraday_period"`
		IntradayInterval string        `yaml:"intraday_interval"`
		Timeout          time.Duration `yaml:"timeout"`
		Concurrency      int           `yaml:"concurrency"`
	} `yaml:"data_source"`
	State struct {
		Backend   string `yaml:"backend"`
		File      string `yaml:"file"`
		RedisAddr string `yaml:"redis_addr"`
		RedisPass string `yaml:"redis_password"`
		RedisDB   int    `yaml:"redis_db"`
		RedisKey  string `yaml:"redis_key"`
	} `yaml:"state"`
	Schedule struct {
		Slots    []string `yaml:"slots"`
		Timezone string   `yaml:"timezone"`
	} `yaml:"schedule"`
	Email struct {
		Host     string   `yaml:"host"`
		Port     int      `yaml:"port"`
		Username string   `yaml:"username"`
		Password string   `yaml:"password"`
		From     string   `yaml:"from"`
		To       []string `yaml:"to"`
	} `yaml:"email"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	LogLevel   string `yaml:"log_level"`
	LogConsole bool   `yaml:"log_console"`
	Proxy      string `yaml:"proxy"`
}

// Load reads .env (if present) and the YAML file, then applies environment
// variable overrides and defaults. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("EMAIL_ADDRESS"); v != "" {
		c.Email.Username = v
	}
	if v := os.Getenv("EMAIL_PASSWORD"); v != "" {
		c.Email.Password = v
	}
	if v := os.Getenv("EMAIL_RECIPIENT"); v != "" {
		c.Email.To = splitList(v)
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("TICKERS"); v != "" {
		c.Tickers = splitList(v)
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		c.State.File = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.State.RedisAddr = v
		if c.State.Backend == "" {
			c.State.Backend = "redis"
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("ALPACA_SECRET_KEY"); v != "" {
		c.DataSource.APISecret = v
	}
}

func (c *Config) applyDefaults() {
	if len(c.Tickers) == 0 {
		c.Tickers = append([]string(nil), DefaultTickers...)
	}
	def := model.DefaultIndicatorParams()
	fill := func(v *int, d int) {
		if *v == 0 {
			*v = d
		}
	}
	fill(&c.Indicators.EMAFast, def.EMAFast)
	fill(&c.Indicators.EMASlow, def.EMASlow)
	fill(&c.Indicators.MACDFast, def.MACDFast)
	fill(&c.Indicators.MACDSlow, def.MACDSlow)
	fill(&c.Indicators.MACDSignal, def.MACDSignal)
	fill(&c.Indicators.SwingWindow, def.SwingWindow)
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.DailyPeriod == "" {
		c.DataSource.DailyPeriod = "1y"
	}
	if c.DataSource.DailyInterval == "" {
		c.DataSource.DailyInterval = "1d"
	}
	if c.DataSource.IntradayPeriod == "" {
		c.DataSource.IntradayPeriod = "7d"
	}
	if c.DataSource.IntradayInterval == "" {
		c.DataSource.IntradayInterval = "1h"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.DataSource.Concurrency == 0 {
		c.DataSource.Concurrency = 4
	}
	if c.State.Backend == "" {
		c.State.Backend = "file"
	}
	if c.State.File == "" {
		c.State.File = "data/signal_states.json"
	}
	if c.State.RedisKey == "" {
		c.State.RedisKey = "sentinel:signal_states"
	}
	if len(c.Schedule.Slots) == 0 {
		c.Schedule.Slots = append([]string(nil), DefaultSlots...)
	}
	if c.Email.Host == "" {
		c.Email.Host = "smtp.gmail.com"
	}
	if c.Email.Port == 0 {
		c.Email.Port = 587
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the configuration. Every failure wraps model.ErrInvalidParameter.
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return errors.Wrap(model.ErrInvalidParameter, "tickers must not be empty")
	}
	seen := make(map[string]bool, len(c.Tickers))
	for _, t := range c.Tickers {
		if t == "" {
			return errors.Wrap(model.ErrInvalidParameter, "tickers must not contain empty symbols")
		}
		if seen[t] {
			return errors.Wrapf(model.ErrInvalidParameter, "duplicate ticker %q", t)
		}
		seen[t] = true
	}

	p := c.Indicators
	spans := []struct {
		name string
		v    int
	}{
		{"ema_fast", p.EMAFast}, {"ema_slow", p.EMASlow},
		{"macd_fast", p.MACDFast}, {"macd_slow", p.MACDSlow},
		{"macd_signal", p.MACDSignal}, {"swing_window", p.SwingWindow},
	}
	for _, s := range spans {
		if s.v < 1 {
			return errors.Wrapf(model.ErrInvalidParameter, "indicators.%s=%d must be >= 1", s.name, s.v)
		}
	}
	if p.EMAFast >= p.EMASlow {
		return errors.Wrapf(model.ErrInvalidParameter, "indicators.ema_fast (%d) must be below ema_slow (%d)", p.EMAFast, p.EMASlow)
	}
	if p.MACDFast >= p.MACDSlow {
		return errors.Wrapf(model.ErrInvalidParameter, "indicators.macd_fast (%d) must be below macd_slow (%d)", p.MACDFast, p.MACDSlow)
	}

	switch c.DataSource.Provider {
	case "yahoo":
	case "bars_api":
		if c.DataSource.BaseURL == "" {
			return errors.Wrap(model.ErrInvalidParameter, "data_source.base_url is required for bars_api")
		}
	case "alpaca":
		if c.DataSource.APIKey == "" || c.DataSource.APISecret == "" {
			return errors.Wrap(model.ErrInvalidParameter, "alpaca requires api_key and api_secret")
		}
	default:
		return errors.Wrapf(model.ErrInvalidParameter, "unknown data_source.provider %q", c.DataSource.Provider)
	}
	if c.DataSource.Concurrency < 1 {
		return errors.Wrap(model.ErrInvalidParameter, "data_source.concurrency must be >= 1")
	}

	switch c.State.Backend {
	case "file":
		if c.State.File == "" {
			return errors.Wrap(model.ErrInvalidParameter, "state.file is required")
		}
	case "redis":
		if c.State.RedisAddr == "" {
			return errors.Wrap(model.ErrInvalidParameter, "state.redis_addr is required for the redis backend")
		}
	default:
		return errors.Wrapf(model.ErrInvalidParameter, "unknown state.backend %q", c.State.Backend)
	}

	if _, err := c.CronSpecs(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// EmailEnabled reports whether SMTP credentials and recipients are configured.
func (c *Config) EmailEnabled() bool {
	return c.Email.Username != "" && c.Email.Password != "" && len(c.Email.To) > 0
}

// TelegramEnabled reports whether the Telegram bot is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Location resolves schedule.timezone. Empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Schedule.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, errors.Wrapf(model.ErrInvalidParameter, "schedule.timezone %q: %v", c.Schedule.Timezone, err)
	}
	return loc, nil
}

// CronSpecs converts every slot to a 6-field cron spec.
func (c *Config) CronSpecs() ([]string, error) {
	specs := make([]string, 0, len(c.Schedule.Slots))
	for _, s := range c.Schedule.Slots {
		spec, err := ParseSlot(s)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

var weekdays = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

// ParseSlot converts "Mon 06:31" into the cron spec "0 31 6 * * 1".
func ParseSlot(slot string) (string, error) {
	fields := strings.Fields(slot)
	if len(fields) != 2 {
		return "", errors.Wrapf(model.ErrInvalidParameter, "slot %q: want \"<Day> HH:MM\"", slot)
	}
	day, ok := weekdays[strings.ToLower(fields[0])]
	if !ok {
		return "", errors.Wrapf(model.ErrInvalidParameter, "slot %q: unknown weekday %q", slot, fields[0])
	}
	hh, mm, ok := strings.Cut(fields[1], ":")
	if !ok {
		return "", errors.Wrapf(model.ErrInvalidParameter, "slot %q: want HH:MM", slot)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return "", errors.Wrapf(model.ErrInvalidParameter, "slot %q: bad hour", slot)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return "", errors.Wrapf(model.ErrInvalidParameter, "slot %q: bad minute", slot)
	}
	return fmt.Sprintf("0 %d %d * * %d", minute, hour, day), nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
