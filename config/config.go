package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Development bool   `mapstructure:"DEVELOPMENT"`

	MongoURI      string `mapstructure:"MONGODB_URI"`
	MongoDatabase string `mapstructure:"MONGODB_DATABASE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	AccessTokenTTL time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`

	KafkaBrokers []string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string   `mapstructure:"KAFKA_TOPIC"`

	MaxMessageLength int `mapstructure:"MAX_MESSAGE_LENGTH"`

	DialogIntegrityTTL  time.Duration `mapstructure:"DIALOG_INTEGRITY_TTL"`
	DialogsIntegrityTTL time.Duration `mapstructure:"DIALOGS_INTEGRITY_TTL"`
	UnreadDialogsTTL    time.Duration `mapstructure:"UNREAD_DIALOGS_TTL"`
	NewMessagesPeriod   time.Duration `mapstructure:"NEW_MESSAGES_PERIOD"`

	StoreWorkers int `mapstructure:"STORE_WORKERS"`
}

// Load reads configuration from the environment. A .env file, if present,
// is expected to be loaded by the caller before Load runs.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for _, key := range []string{
		"PORT", "DEVELOPMENT",
		"MONGODB_URI", "MONGODB_DATABASE",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"JWT_SECRET", "ACCESS_TOKEN_TTL",
		"KAFKA_BROKERS", "KAFKA_TOPIC",
		"MAX_MESSAGE_LENGTH",
		"DIALOG_INTEGRITY_TTL", "DIALOGS_INTEGRITY_TTL",
		"UNREAD_DIALOGS_TTL", "NEW_MESSAGES_PERIOD",
		"STORE_WORKERS",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}

	// Defaults mirror the original deployment values.
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.MongoURI == "" {
		c.MongoURI = "mongodb://localhost:27017"
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = "talkwire"
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 15 * time.Minute
	}
	if c.KafkaTopic == "" {
		c.KafkaTopic = "message.created"
	}
	if c.MaxMessageLength == 0 {
		c.MaxMessageLength = 400
	}
	if c.DialogIntegrityTTL == 0 {
		c.DialogIntegrityTTL = 20 * time.Minute
	}
	if c.DialogsIntegrityTTL == 0 {
		c.DialogsIntegrityTTL = 20 * time.Minute
	}
	if c.UnreadDialogsTTL == 0 {
		c.UnreadDialogsTTL = 20 * time.Minute
	}
	if c.NewMessagesPeriod == 0 {
		c.NewMessagesPeriod = time.Hour
	}
	if c.StoreWorkers == 0 {
		c.StoreWorkers = 64
	}

	return &c, nil
}
