package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"NoticeBot/internal/domain"
)

const (
	defaultTimezone   = "Asia/Seoul"
	configPathEnv     = "NOTICEBOT_CONFIG"
	modeEnv           = "NOTICEBOT_MODE"
	stateEnv          = "NOTICEBOT_STATE"
	logLevelEnv       = "LOG_LEVEL"
	logFormatEnv      = "LOG_FORMAT"
	githubEventEnv    = "GITHUB_EVENT_NAME"
	geminiAPIKeyEnv   = "GEMINI_API_KEY"
	geminiModelEnv    = "GEMINI_MODEL"
	chatGPTAPIKeyEnv  = "OPENAI_API_KEY"
	emailAddressEnv   = "EMAIL_ADDRESS"
	emailPasswordEnv  = "EMAIL_PASSWORD"
	toEmailEnv        = "TO_EMAIL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Organization string          `yaml:"organization"`
	Logging      LoggingConfig   `yaml:"logging"`
	Scheduler    SchedulerConfig `yaml:"scheduler"`
	Browser      BrowserConfig   `yaml:"browser"`
	Storage      StorageConfig   `yaml:"storage"`
	Digest       DigestConfig    `yaml:"digest"`
	Summary      SummaryConfig   `yaml:"summary"`
	Gemini       GeminiConfig    `yaml:"gemini"`
	ChatGPT      ChatGPTConfig   `yaml:"chatgpt"`
	Service      ServiceConfig   `yaml:"service"`
	Delivery     DeliveryConfig  `yaml:"delivery"`
	Boards       []BoardConfig   `yaml:"boards"`
	Layouts      []LayoutConfig  `yaml:"layouts"`

	Mode domain.Mode `yaml:"-"`
}

// LoggingConfig selects the slog level and handler ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SchedulerConfig defines when the serve command runs the pipeline.
type SchedulerConfig struct {
	RunAt    string         `yaml:"runAt"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BrowserConfig selects the page engine and its timeouts.
type BrowserConfig struct {
	Engine         string   `yaml:"engine"`
	WaitTimeoutSec int      `yaml:"waitTimeoutSec"`
	LoadTimeoutSec int      `yaml:"loadTimeoutSec"`
	UserAgent      string   `yaml:"userAgent"`
	BodySelectors  []string `yaml:"bodySelectors"`
}

// WaitTimeout returns the row-readiness timeout.
func (b BrowserConfig) WaitTimeout() time.Duration {
	return time.Duration(b.WaitTimeoutSec) * time.Second
}

// LoadTimeout bounds one page navigation, snapshot included.
func (b BrowserConfig) LoadTimeout() time.Duration {
	return time.Duration(b.LoadTimeoutSec) * time.Second
}

// StorageConfig points at the sent-history store.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// DigestConfig caps the number of notices per run mode.
type DigestConfig struct {
	MaxScheduled int `yaml:"maxScheduled"`
	MaxManual    int `yaml:"maxManual"`
}

// Cap returns the limit for mode.
func (d DigestConfig) Cap(mode domain.Mode) int {
	if mode.Manual() {
		return d.MaxManual
	}
	return d.MaxScheduled
}

// SummaryConfig selects the summarization backend and its pacing.
type SummaryConfig struct {
	Provider   string `yaml:"provider"`
	Attempts   int    `yaml:"attempts"`
	PaceSec    int    `yaml:"paceSec"`
	BackoffSec int    `yaml:"backoffSec"`
}

// GeminiConfig holds Gemini API credentials.
type GeminiConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// ChatGPTConfig defines how to contact an OpenAI-compatible API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// ServiceConfig points at a self-hosted summarization HTTP service.
type ServiceConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
}

// DeliveryConfig selects the digest transport.
type DeliveryConfig struct {
	Transport string         `yaml:"transport"`
	Mail      MailConfig     `yaml:"mail"`
	Telegram  TelegramConfig `yaml:"telegram"`
}

// MailConfig describes the SMTP account and recipients.
type MailConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// BoardConfig is one notice board; list order is digest order.
type BoardConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Layout string `yaml:"layout"`
}

// LayoutConfig registers an additional selector profile.
type LayoutConfig struct {
	Name   string   `yaml:"name"`
	Rows   []string `yaml:"rows"`
	Dates  []string `yaml:"dates"`
	Titles []string `yaml:"titles"`
}

// DomainBoards converts board configs into domain values, keeping order.
func (c Config) DomainBoards() []domain.Board {
	boards := make([]domain.Board, 0, len(c.Boards))
	for _, b := range c.Boards {
		boards = append(boards, domain.Board{Name: b.Name, URL: b.URL, Layout: b.Layout})
	}
	return boards
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
// path overrides NOTICEBOT_CONFIG when non-empty.
func Load(path string) Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot read .env: %v", err)
	}

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	cfg.Mode = DetectMode(os.Getenv)

	if len(cfg.Boards) == 0 {
		cfg.Boards = defaultConfig().Boards
	}

	return cfg
}

// DetectMode reads the run-mode signal from the environment.
// NOTICEBOT_MODE wins; otherwise a GitHub workflow_dispatch event means manual.
func DetectMode(getenv func(string) string) domain.Mode {
	switch strings.ToLower(strings.TrimSpace(getenv(modeEnv))) {
	case "manual", "test":
		return domain.ModeManual
	case "scheduled", "schedule":
		return domain.ModeScheduled
	}
	if getenv(githubEventEnv) == "workflow_dispatch" {
		return domain.ModeManual
	}
	return domain.ModeScheduled
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFormatEnv); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv(stateEnv); v != "" {
		c.Storage.Path = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}

	if v := os.Getenv(chatGPTAPIKeyEnv); v != "" {
		c.ChatGPT.APIKey = v
	}

	if v := os.Getenv(emailAddressEnv); v != "" {
		c.Delivery.Mail.Username = v
	}

	if v := os.Getenv(emailPasswordEnv); v != "" {
		c.Delivery.Mail.Password = v
	}

	if v := os.Getenv(toEmailEnv); v != "" {
		c.Delivery.Mail.To = splitList(v)
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Delivery.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Delivery.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, err = time.LoadLocation(defaultTimezone)
		if err != nil {
			loc = time.UTC
		}
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Organization != "" {
		base.Organization = override.Organization
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Scheduler.RunAt != "" {
		base.Scheduler.RunAt = override.Scheduler.RunAt
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Browser.Engine != "" {
		base.Browser.Engine = override.Browser.Engine
	}
	if override.Browser.WaitTimeoutSec > 0 {
		base.Browser.WaitTimeoutSec = override.Browser.WaitTimeoutSec
	}
	if override.Browser.LoadTimeoutSec > 0 {
		base.Browser.LoadTimeoutSec = override.Browser.LoadTimeoutSec
	}
	if override.Browser.UserAgent != "" {
		base.Browser.UserAgent = override.Browser.UserAgent
	}
	if len(override.Browser.BodySelectors) > 0 {
		base.Browser.BodySelectors = override.Browser.BodySelectors
	}

	if override.Storage.Driver != "" {
		base.Storage.Driver = override.Storage.Driver
	}
	if override.Storage.Path != "" {
		base.Storage.Path = override.Storage.Path
	}

	if override.Digest.MaxScheduled > 0 {
		base.Digest.MaxScheduled = override.Digest.MaxScheduled
	}
	if override.Digest.MaxManual > 0 {
		base.Digest.MaxManual = override.Digest.MaxManual
	}

	if override.Summary.Provider != "" {
		base.Summary.Provider = override.Summary.Provider
	}
	if override.Summary.Attempts > 0 {
		base.Summary.Attempts = override.Summary.Attempts
	}
	if override.Summary.PaceSec > 0 {
		base.Summary.PaceSec = override.Summary.PaceSec
	}
	if override.Summary.BackoffSec > 0 {
		base.Summary.BackoffSec = override.Summary.BackoffSec
	}

	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}

	if override.ChatGPT.Endpoint != "" {
		base.ChatGPT.Endpoint = override.ChatGPT.Endpoint
	}
	if override.ChatGPT.Model != "" {
		base.ChatGPT.Model = override.ChatGPT.Model
	}
	if override.ChatGPT.APIKey != "" {
		base.ChatGPT.APIKey = override.ChatGPT.APIKey
	}
	if override.ChatGPT.SystemPrompt != "" {
		base.ChatGPT.SystemPrompt = override.ChatGPT.SystemPrompt
	}

	if override.Service.Endpoint != "" {
		base.Service.Endpoint = override.Service.Endpoint
	}
	if override.Service.APIKey != "" {
		base.Service.APIKey = override.Service.APIKey
	}

	if override.Delivery.Transport != "" {
		base.Delivery.Transport = override.Delivery.Transport
	}
	if override.Delivery.Mail.Host != "" {
		base.Delivery.Mail.Host = override.Delivery.Mail.Host
	}
	if override.Delivery.Mail.Port > 0 {
		base.Delivery.Mail.Port = override.Delivery.Mail.Port
	}
	if override.Delivery.Mail.Username != "" {
		base.Delivery.Mail.Username = override.Delivery.Mail.Username
	}
	if override.Delivery.Mail.Password != "" {
		base.Delivery.Mail.Password = override.Delivery.Mail.Password
	}
	if override.Delivery.Mail.From != "" {
		base.Delivery.Mail.From = override.Delivery.Mail.From
	}
	if len(override.Delivery.Mail.To) > 0 {
		base.Delivery.Mail.To = override.Delivery.Mail.To
	}
	if override.Delivery.Telegram.BotToken != "" {
		base.Delivery.Telegram.BotToken = override.Delivery.Telegram.BotToken
	}
	if override.Delivery.Telegram.ChatID != "" {
		base.Delivery.Telegram.ChatID = override.Delivery.Telegram.ChatID
	}

	if len(override.Boards) > 0 {
		base.Boards = override.Boards
	}
	if len(override.Layouts) > 0 {
		base.Layouts = override.Layouts
	}

	return base
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() Config {
	return Config{
		Organization: "인하대 공지봇",
		Logging:      LoggingConfig{Level: "info", Format: "text"},
		Scheduler:    SchedulerConfig{RunAt: "09:00", Timezone: defaultTimezone},
		Browser:      BrowserConfig{Engine: "http", WaitTimeoutSec: 10, LoadTimeoutSec: 30},
		Storage:      StorageConfig{Driver: "json", Path: "sent_notices.json"},
		Digest:       DigestConfig{MaxScheduled: 10, MaxManual: 3},
		Summary: SummaryConfig{
			Provider:   "gemini",
			Attempts:   3,
			PaceSec:    4,
			BackoffSec: 30,
		},
		Gemini: GeminiConfig{Model: "gemini-2.0-flash"},
		ChatGPT: ChatGPTConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You summarize university notices in Korean.",
		},
		Delivery: DeliveryConfig{
			Transport: "mail",
			Mail:      MailConfig{Host: "smtp.gmail.com", Port: 587},
		},
		Boards: []BoardConfig{
			{Name: "인하대 공지사항", URL: "https://www.inha.ac.kr/kr/950/subview.do"},
		},
	}
}

// String renders a one-line description without secrets, for logs.
func (c Config) String() string {
	return "mode=" + string(c.Mode) +
		" boards=" + strconv.Itoa(len(c.Boards)) +
		" engine=" + c.Browser.Engine +
		" storage=" + c.Storage.Driver +
		" summary=" + c.Summary.Provider +
		" transport=" + c.Delivery.Transport
}
