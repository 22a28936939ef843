package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server      ServerConfig   `mapstructure:"server"`
	Log         LogConfig      `mapstructure:"log"`
	Storage     StorageConfig  `mapstructure:"storage"`
	Database    DatabaseConfig `mapstructure:"database"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
	S3          S3Config       `mapstructure:"s3"`
	JWT         JWTConfig      `mapstructure:"jwt"`
	Admin       AdminConfig    `mapstructure:"admin"`
	Telegram    TelegramConfig `mapstructure:"telegram"`
	Kafka       KafkaConfig    `mapstructure:"kafka"`
	Session     SessionConfig  `mapstructure:"session"`
	Feedback    FeedbackConfig `mapstructure:"feedback"`
	SeedOnStart bool           `mapstructure:"seed_on_start"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// StorageConfig selects the repository backend: mongo, postgres or memory.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether exports can be uploaded.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

// JWTConfig defines JWT specific configuration for the admin API.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// AdminConfig holds the single admin account. PasswordHash is a bcrypt hash.
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

type TelegramConfig struct {
	Token          string `mapstructure:"token"`
	Mode           string `mapstructure:"mode"` // polling or webhook
	WebhookURL     string `mapstructure:"webhook_url"`
	WebhookPath    string `mapstructure:"webhook_path"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	FeedbackChatID int64  `mapstructure:"feedback_chat_id"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type SessionConfig struct {
	InactivityTimeout time.Duration `mapstructure:"inactivity_timeout"`
	// SweepInterval enables the background sweeper when positive.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type FeedbackConfig struct {
	Cooldown time.Duration `mapstructure:"cooldown"`
}

const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, telegram.token -> TELEGRAM_TOKEN
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Env vars and defaults are enough.
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	// A comma separated KAFKA_BROKERS arrives as a single element.
	if len(config.Kafka.Brokers) == 1 && strings.Contains(config.Kafka.Brokers[0], ",") {
		config.Kafka.Brokers = strings.Split(config.Kafka.Brokers[0], ",")
	}

	return config, config.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("storage.backend", BackendMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "fitlog")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password_hash", "")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.mode", ModePolling)
	v.SetDefault("telegram.webhook_url", "")
	v.SetDefault("telegram.webhook_path", "/telegram/webhook")
	v.SetDefault("telegram.webhook_secret", "")
	v.SetDefault("telegram.feedback_chat_id", 0)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "fitlog.sessions")
	v.SetDefault("session.inactivity_timeout", "2h")
	v.SetDefault("session.sweep_interval", "0s")
	v.SetDefault("feedback.cooldown", "10s")
	v.SetDefault("seed_on_start", true)
}

// Validate checks cross-field constraints that defaults cannot express.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case BackendMongo, BackendMemory:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}
	switch c.Telegram.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.Telegram.WebhookURL == "" {
			errs = append(errs, errors.New("telegram.webhook_url is required in webhook mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown telegram.mode %q", c.Telegram.Mode))
	}
	if c.Session.InactivityTimeout <= 0 {
		errs = append(errs, errors.New("session.inactivity_timeout must be positive"))
	}
	return errors.Join(errs...)
}
