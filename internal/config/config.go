package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MoodScanner/internal/relevance"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "MOOD_SCANNER_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	classifierURLEnv  = "CLASSIFIER_URL"
	classifierKeyEnv  = "CLASSIFIER_API_KEY"
	llmProviderEnv    = "LLM_PROVIDER"
	llmEndpointEnv    = "LLM_ENDPOINT"
	llmAPIKeyEnv      = "LLM_API_KEY"
	llmModelEnv       = "LLM_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
)

var envFiles = []string{".env", ".env.local"}

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Sources       SourcesConfig      `yaml:"sources"`
	Relevance     RelevanceConfig    `yaml:"relevance"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	LLM           LLMConfig          `yaml:"llm"`
	Report        ReportConfig       `yaml:"report"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Metrics       MetricsConfig      `yaml:"metrics"`
}

// LoggingConfig selects slog level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SourcesConfig points at the SQLite files written by the scrapers and summarizers.
type SourcesConfig struct {
	GazetaDB           string `yaml:"gazetaDb"`
	PodrobnoDB         string `yaml:"podrobnoDb"`
	InstagramDB        string `yaml:"instagramDb"`
	ArticleSummariesDB string `yaml:"articleSummariesDb"`
	PostSummariesDB    string `yaml:"postSummariesDb"`
}

// RelevanceConfig overrides the social-post keyword allowlist.
type RelevanceConfig struct {
	Keywords []string `yaml:"keywords"`
}

// ClassifierConfig describes the sentiment model service.
type ClassifierConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
	Workers  int           `yaml:"workers"`
	MaxRunes int           `yaml:"maxRunes"`
}

// LLMConfig defines how to contact the report-writing model.
type LLMConfig struct {
	Provider     string        `yaml:"provider"`
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	MaxTokens    int           `yaml:"maxTokens"`
}

// ReportConfig controls prompt sampling and artifact locations.
type ReportConfig struct {
	PromptPath   string `yaml:"promptPath"`
	ReportPath   string `yaml:"reportPath"`
	Seed         int64  `yaml:"seed"`
	MaxSummaries int    `yaml:"maxSummaries"`
	MaxComments  int    `yaml:"maxComments"`
}

// DatabaseConfig describes the optional Postgres sink for mood labels.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig defines how often the batch runs in schedule mode.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// MetricsConfig selects where batch metrics are written.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfilePath"`
}

// Load reads YAML configuration (if present), local .env files and
// environment overrides. An empty path falls back to MOOD_SCANNER_CONFIG.
func Load(path string) Config {
	cfg := defaultConfig()

	loadEnvFiles()

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

	if len(cfg.Relevance.Keywords) == 0 {
		cfg.Relevance.Keywords = append([]string(nil), relevance.DefaultKeywords...)
	}

	return cfg
}

func loadEnvFiles() {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			log.Printf("config: cannot load %s: %v", file, err)
		}
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(classifierURLEnv); v != "" {
		c.Classifier.Endpoint = v
	}
	if v := os.Getenv(classifierKeyEnv); v != "" {
		c.Classifier.APIKey = v
	}
	if v := os.Getenv(llmProviderEnv); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv(llmEndpointEnv); v != "" {
		c.LLM.Endpoint = v
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
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
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	mergeString(&base.Sources.GazetaDB, override.Sources.GazetaDB)
	mergeString(&base.Sources.PodrobnoDB, override.Sources.PodrobnoDB)
	mergeString(&base.Sources.InstagramDB, override.Sources.InstagramDB)
	mergeString(&base.Sources.ArticleSummariesDB, override.Sources.ArticleSummariesDB)
	mergeString(&base.Sources.PostSummariesDB, override.Sources.PostSummariesDB)

	if len(override.Relevance.Keywords) > 0 {
		base.Relevance.Keywords = override.Relevance.Keywords
	}

	mergeString(&base.Classifier.Endpoint, override.Classifier.Endpoint)
	mergeString(&base.Classifier.APIKey, override.Classifier.APIKey)
	if override.Classifier.Timeout > 0 {
		base.Classifier.Timeout = override.Classifier.Timeout
	}
	if override.Classifier.Workers > 0 {
		base.Classifier.Workers = override.Classifier.Workers
	}
	if override.Classifier.MaxRunes > 0 {
		base.Classifier.MaxRunes = override.Classifier.MaxRunes
	}

	mergeString(&base.LLM.Provider, override.LLM.Provider)
	mergeString(&base.LLM.Endpoint, override.LLM.Endpoint)
	mergeString(&base.LLM.Model, override.LLM.Model)
	mergeString(&base.LLM.APIKey, override.LLM.APIKey)
	mergeString(&base.LLM.SystemPrompt, override.LLM.SystemPrompt)
	if override.LLM.Timeout > 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}
	if override.LLM.MaxRetries > 0 {
		base.LLM.MaxRetries = override.LLM.MaxRetries
	}
	if override.LLM.MaxTokens > 0 {
		base.LLM.MaxTokens = override.LLM.MaxTokens
	}

	mergeString(&base.Report.PromptPath, override.Report.PromptPath)
	mergeString(&base.Report.ReportPath, override.Report.ReportPath)
	if override.Report.Seed != 0 {
		base.Report.Seed = override.Report.Seed
	}
	if override.Report.MaxSummaries > 0 {
		base.Report.MaxSummaries = override.Report.MaxSummaries
	}
	if override.Report.MaxComments > 0 {
		base.Report.MaxComments = override.Report.MaxComments
	}

	mergeString(&base.Database.DSN, override.Database.DSN)
	mergeString(&base.Notifications.Telegram.BotToken, override.Notifications.Telegram.BotToken)
	mergeString(&base.Notifications.Telegram.ChatID, override.Notifications.Telegram.ChatID)

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	mergeString(&base.Scheduler.Timezone, override.Scheduler.Timezone)

	mergeString(&base.Metrics.TextfilePath, override.Metrics.TextfilePath)

	return base
}

func mergeString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Sources: SourcesConfig{
			GazetaDB:           "data/gazeta_articles.db",
			PodrobnoDB:         "data/podrobno_articles.db",
			InstagramDB:        "data/instagram_comments.db",
			ArticleSummariesDB: "data/article_summaries.db",
			PostSummariesDB:    "data/instagram_summaries.db",
		},
		Classifier: ClassifierConfig{
			Endpoint: "http://localhost:8000",
			Timeout:  10 * time.Second,
			MaxRunes: 2000,
		},
		LLM: LLMConfig{
			Provider:     "ollama",
			Model:        "llama3.1:8b",
			SystemPrompt: "Ты — аналитик СМИ. Пиши отчеты только на русском языке.",
			Timeout:      5 * time.Minute,
			MaxRetries:   2,
			MaxTokens:    2048,
		},
		Report: ReportConfig{
			PromptPath:   "reports/prompt.txt",
			ReportPath:   "reports/mood_report.md",
			Seed:         42,
			MaxSummaries: 5,
			MaxComments:  10,
		},
		Scheduler: SchedulerConfig{Interval: 24 * time.Hour, Timezone: defaultTimezone, location: tz},
	}
}

// String renders a short, secret-free description for startup logs.
func (c Config) String() string {
	return "llm=" + c.LLM.Provider + "/" + c.LLM.Model +
		" classifier=" + c.Classifier.Endpoint +
		" workers=" + strconv.Itoa(c.Classifier.Workers) +
		" keywords=" + strconv.Itoa(len(c.Relevance.Keywords))
}
