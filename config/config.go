package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Pending-authorization store backends.
const (
	PendingStoreMemory = "memory"
	PendingStoreRedis  = "redis"
	PendingStoreMongo  = "mongo"
)

// ServerConfig holds all configuration for the bridge server. Tags use
// mapstructure for Viper unmarshalling.
type ServerConfig struct {
	HTTPPort  string `mapstructure:"HTTP_PORT"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// PendingStore selects the pending-authorization backend:
	// memory, redis or mongo.
	PendingStore  string `mapstructure:"PENDING_STORE"`
	PendingTTLMin int    `mapstructure:"PENDING_TTL_MIN"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPrefix   string `mapstructure:"REDIS_PREFIX"`

	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`

	// CallbackBaseURL is the interaction finish target handed to
	// authorization servers. For the mobile deep-link flow this is a custom
	// scheme URI the app intercepts.
	CallbackBaseURL string `mapstructure:"CALLBACK_BASE_URL"`
	// FrontendSuccessURL and FrontendErrorURL are where the HTTP callback
	// redirects the user after finalization.
	FrontendSuccessURL string `mapstructure:"FRONTEND_SUCCESS_URL"`
	FrontendErrorURL   string `mapstructure:"FRONTEND_ERROR_URL"`

	HistoryIncludeOutgoing bool `mapstructure:"HISTORY_INCLUDE_OUTGOING"`
	HistoryPageSize        int  `mapstructure:"HISTORY_PAGE_SIZE"`
}

// LoadConfig reads configuration from file, environment variables, and
// defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/peerpay/")
	v.AddConfigPath("$HOME/.peerpay")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("OTEL_SERVICE_NAME", "peerpay-server")
	v.SetDefault("PENDING_STORE", PendingStoreMemory)
	v.SetDefault("PENDING_TTL_MIN", 15)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PREFIX", "peerpay")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/peerpay_dev")
	v.SetDefault("MONGO_DB_NAME", "peerpay_dev")
	v.SetDefault("CALLBACK_BASE_URL", "http://localhost:3000/api/payment-callback")
	v.SetDefault("FRONTEND_SUCCESS_URL", "http://localhost:5173/payment-success")
	v.SetDefault("FRONTEND_ERROR_URL", "http://localhost:5173/payment-error")
	v.SetDefault("HISTORY_INCLUDE_OUTGOING", true)
	v.SetDefault("HISTORY_PAGE_SIZE", 50)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	switch cfg.PendingStore {
	case PendingStoreMemory, PendingStoreRedis, PendingStoreMongo:
	default:
		return nil, fmt.Errorf("unknown PENDING_STORE %q", cfg.PendingStore)
	}

	return &cfg, nil
}
