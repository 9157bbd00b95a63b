package conf

import (
	"os"
	"strconv"
	"time"
)

// Config is the full runtime configuration, built once at process
// start and passed explicitly into every component.
type Config struct {
	Bot    BotConfig
	Server ServerConfig
	Store  StoreConfig
	Notify NotifyConfig
	Docs   DocsConfig
}

// BotConfig identifies the bot and its administrator.
type BotConfig struct {
	Token       string
	AdminChatID int64
}

// ServerConfig configures the webhook HTTP surface.
type ServerConfig struct {
	ListenAddr  string
	WebhookPath string
	Secret      string
}

// StoreConfig configures the KV store.
type StoreConfig struct {
	DBPath         string
	MappingTTLDays int // 0 disables relay-mapping cleanup
}

// NotifyConfig configures the notification side effects.
type NotifyConfig struct {
	Enabled     bool
	Interval    time.Duration
	TipInterval time.Duration
}

// DocsConfig points at the externally hosted documents and the welcome
// button.
type DocsConfig struct {
	StartMessageURL string
	NotificationURL string
	FraudListURL    string
	StartButtonText string
	StartButtonURL  string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	dbPath := os.Getenv("KV_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/relay.db"
	}

	adminChatID := int64(0)
	if val := os.Getenv("ADMIN_UID"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			adminChatID = parsed
		}
	}

	notifyInterval := 3600
	if val := os.Getenv("NOTIFY_INTERVAL_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			notifyInterval = parsed
		}
	}

	tipInterval := 10
	if val := os.Getenv("TIP_INTERVAL_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			tipInterval = parsed
		}
	}

	mappingTTL := 30
	if val := os.Getenv("MAPPING_TTL_DAYS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			mappingTTL = parsed
		}
	}

	notifyEnabled := true
	if val := os.Getenv("ENABLE_NOTIFICATION"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			notifyEnabled = parsed
		}
	}

	return &Config{
		Bot: BotConfig{
			Token:       os.Getenv("BOT_TOKEN"),
			AdminChatID: adminChatID,
		},
		Server: ServerConfig{
			ListenAddr:  envOr("LISTEN_ADDR", ":8080"),
			WebhookPath: envOr("WEBHOOK_PATH", "/endpoint"),
			Secret:      os.Getenv("BOT_SECRET"),
		},
		Store: StoreConfig{
			DBPath:         dbPath,
			MappingTTLDays: mappingTTL,
		},
		Notify: NotifyConfig{
			Enabled:     notifyEnabled,
			Interval:    time.Duration(notifyInterval) * time.Second,
			TipInterval: time.Duration(tipInterval) * time.Second,
		},
		Docs: DocsConfig{
			StartMessageURL: envOr("START_MESSAGE_URL", "https://raw.githubusercontent.com/HuIn2479/nfd/main/data/startMessage.md"),
			NotificationURL: envOr("NOTIFICATION_URL", "https://raw.githubusercontent.com/HuIn2479/nfd/main/data/notification.md"),
			FraudListURL:    envOr("FRAUD_DB_URL", "https://raw.githubusercontent.com/HuIn2479/nfd/main/data/fraud.db"),
			StartButtonText: envOr("START_BUTTON_TEXT", "〇Enshō🌸"),
			StartButtonURL:  envOr("START_BUTTON_URL", "https://ns.onedays.top/"),
		},
	}
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return &ConfigError{Field: "BOT_TOKEN", Message: "required"}
	}
	if c.Server.Secret == "" {
		return &ConfigError{Field: "BOT_SECRET", Message: "required"}
	}
	if c.Bot.AdminChatID == 0 {
		return &ConfigError{Field: "ADMIN_UID", Message: "required numeric chat id"}
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
