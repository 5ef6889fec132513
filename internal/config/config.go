// Package config loads the service configuration from the environment and an optional file.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads at startup.
type Config struct {
	AppPort              string        `mapstructure:"APP_PORT" validate:"required"`
	DBDriver             string        `mapstructure:"DB_DRIVER" validate:"oneof=sqlite postgres"`
	DatabaseDSN          string        `mapstructure:"DATABASE_DSN" validate:"required"`
	CatalogBackend       string        `mapstructure:"CATALOG_BACKEND" validate:"oneof=sql mongo"`
	MongoURI             string        `mapstructure:"MONGO_URI" validate:"required_if=CatalogBackend mongo"`
	MongoDBName          string        `mapstructure:"MONGO_DB_NAME" validate:"required_if=CatalogBackend mongo"`
	CartBackend          string        `mapstructure:"CART_BACKEND" validate:"oneof=memory redis"`
	RedisAddr            string        `mapstructure:"REDIS_ADDR" validate:"required_if=CartBackend redis"`
	RedisPassword        string        `mapstructure:"REDIS_PASSWORD"`
	CartTTL              time.Duration `mapstructure:"CART_TTL" validate:"gt=0"`
	RabbitMQURL          string        `mapstructure:"RABBITMQ_URL"`
	JWTSecret            string        `mapstructure:"JWT_SECRET" validate:"required,min=8"`
	TaxRate              float64       `mapstructure:"TAX_RATE" validate:"gte=0,lt=1"`
	PaymentVerifyTimeout time.Duration `mapstructure:"PAYMENT_VERIFY_TIMEOUT" validate:"gt=0"`
	LogLevel             string        `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:storefront.db?cache=shared")
	v.SetDefault("CATALOG_BACKEND", "sql")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "storefront")
	v.SetDefault("CART_BACKEND", "memory")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("CART_TTL", 30*24*time.Hour)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("TAX_RATE", 0.15)
	v.SetDefault("PAYMENT_VERIFY_TIMEOUT", 10*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads configuration from v. When file is set it is read first; environment
// variables always win.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		AppPort:              v.GetString("APP_PORT"),
		DBDriver:             v.GetString("DB_DRIVER"),
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		CatalogBackend:       v.GetString("CATALOG_BACKEND"),
		MongoURI:             v.GetString("MONGO_URI"),
		MongoDBName:          v.GetString("MONGO_DB_NAME"),
		CartBackend:          v.GetString("CART_BACKEND"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		CartTTL:              v.GetDuration("CART_TTL"),
		RabbitMQURL:          v.GetString("RABBITMQ_URL"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		TaxRate:              v.GetFloat64("TAX_RATE"),
		PaymentVerifyTimeout: v.GetDuration("PAYMENT_VERIFY_TIMEOUT"),
		LogLevel:             v.GetString("LOG_LEVEL"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
