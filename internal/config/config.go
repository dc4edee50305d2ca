package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	Primary   Primary         `koanf:"primary"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Processor ProcessorConfig `koanf:"processor"`
	Settings  SettingsSeed    `koanf:"settings"`
	Redis     RedisConfig     `koanf:"redis"`
	Kafka     KafkaConfig     `koanf:"kafka"`
	Logger    LoggerConfig    `koanf:"logger"`
	Worker    WorkerConfig    `koanf:"worker"`
	Redirect  RedirectConfig  `koanf:"redirect"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

// ProcessorConfig holds the static part of the processor connection. Credentials
// live in the settings record so they can change at runtime.
type ProcessorConfig struct {
	BaseURL       string        `koanf:"base_url" validate:"required,url"`
	Timeout       time.Duration `koanf:"timeout" validate:"required"`
	TillTimeout   time.Duration `koanf:"till_timeout" validate:"required"`
	PublicBaseURL string        `koanf:"public_base_url" validate:"required,url"`
}

// SettingsSeed initialises the settings record the first time the service starts.
type SettingsSeed struct {
	Enabled           bool   `koanf:"enabled"`
	EnableWebshop     bool   `koanf:"enable_webshop"`
	EnablePOSTerminal bool   `koanf:"enable_pos_terminal"`
	UserID            int64  `koanf:"user_id"`
	AuthenticationKey string `koanf:"authentication_key"`
	SpaceID           int64  `koanf:"space_id"`
	WebhookSecret     string `koanf:"webhook_secret"`
	SuccessURL        string `koanf:"success_url"`
	FailedURL         string `koanf:"failed_url"`
	LogAPICalls       bool   `koanf:"log_api_calls"`
}

// RedisConfig is optional. Without an address settings changes only
// invalidate the local client.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Channel  string `koanf:"channel" validate:"required"`
}

// KafkaConfig is optional. Without brokers terminal payments run in-process.
type KafkaConfig struct {
	Brokers string `koanf:"brokers"`
	Topic   string `koanf:"topic" validate:"required"`
	GroupID string `koanf:"group_id" validate:"required"`
}

func (k KafkaConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

type WorkerConfig struct {
	SyncInterval            time.Duration `koanf:"sync_interval" validate:"required"`
	BatchSize               int           `koanf:"batch_size" validate:"required"`
	CleanupInterval         time.Duration `koanf:"cleanup_interval" validate:"required"`
	WebhookLogRetentionDays int           `koanf:"webhook_log_retention_days" validate:"required"`
	ArchiveAfterDays        int           `koanf:"archive_after_days" validate:"required"`
}

// RedirectConfig bounds the status poll on the success page.
type RedirectConfig struct {
	PollAttempts int           `koanf:"poll_attempts" validate:"required"`
	PollDelay    time.Duration `koanf:"poll_delay" validate:"required"`
}

func defaults() map[string]any {
	return map[string]any{
		"primary.env":                       "development",
		"server.port":                       "8080",
		"server.read_timeout":               "15s",
		"server.write_timeout":              "30s",
		"server.idle_timeout":               "60s",
		"database.ssl_mode":                 "disable",
		"database.max_open_conns":           10,
		"database.max_idle_conns":           2,
		"database.conn_max_lifetime":        "1h",
		"database.conn_max_idle_time":       "30m",
		"processor.base_url":                "https://app-wallee.com/api",
		"processor.timeout":                 "30s",
		"processor.till_timeout":            "3m",
		"processor.public_base_url":         "http://localhost:8080",
		"redis.channel":                     "wallee:settings",
		"kafka.topic":                       "wallee.terminal-payments",
		"kafka.group_id":                    "wallee-gateway",
		"logger.level":                      "info",
		"logger.format":                     "json",
		"worker.sync_interval":              "5m",
		"worker.batch_size":                 100,
		"worker.cleanup_interval":           "24h",
		"worker.webhook_log_retention_days": 90,
		"worker.archive_after_days":         90,
		"redirect.poll_attempts":            5,
		"redirect.poll_delay":               "2s",
	}
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load config defaults", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider("GATEWAY_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "GATEWAY_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}
