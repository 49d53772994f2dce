package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Currency   CurrencyConfig   `mapstructure:"currency"`
	Commission CommissionConfig `mapstructure:"commission"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// StorageConfig selects the transaction store backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // memory, postgres
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"` // idempotency fast path on/off
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CurrencyConfig holds the base currency and the official conversion rates,
// fixed per deployment. Rates are base-currency units per one display unit.
type CurrencyConfig struct {
	Base  string             `mapstructure:"base"`
	Rates map[string]float64 `mapstructure:"rates"`
}

// CommissionConfig holds the platform commission constants. Percentage rates
// are fractions (0.15 = 15%); the flat fee is base-currency units added per
// transaction on top of the percentage.
type CommissionConfig struct {
	IndividualRate   float64 `mapstructure:"individual_rate"`
	ProfessionalRate float64 `mapstructure:"professional_rate"`
	FlatFee          int64   `mapstructure:"flat_fee"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: BFE_ (Booking Finance
// Engine). Nested keys use underscore: BFE_DATABASE_HOST, BFE_CURRENCY_BASE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "booking_finance")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("currency.base", "JPY")
	v.SetDefault("currency.rates", map[string]float64{
		"USD": 146.5,
		"EUR": 158.2,
		"GBP": 185.0,
	})
	v.SetDefault("commission.individual_rate", 0.15)
	v.SetDefault("commission.professional_rate", 0.10)
	v.SetDefault("commission.flat_fee", 500)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: BFE_DATABASE_HOST -> database.host
	v.SetEnvPrefix("BFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// viper lowercases keys read from files; currency codes are canonical uppercase.
	cfg.Currency.Base = strings.ToUpper(cfg.Currency.Base)
	rates := make(map[string]float64, len(cfg.Currency.Rates))
	for code, rate := range cfg.Currency.Rates {
		rates[strings.ToUpper(code)] = rate
	}
	cfg.Currency.Rates = rates

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Currency.Base == "" {
		return fmt.Errorf("currency.base must be set")
	}
	for code, rate := range c.Currency.Rates {
		if rate <= 0 {
			return fmt.Errorf("currency.rates.%s must be positive, got %v", code, rate)
		}
	}
	if c.Commission.IndividualRate < 0 || c.Commission.IndividualRate >= 1 {
		return fmt.Errorf("commission.individual_rate must be in [0, 1)")
	}
	if c.Commission.ProfessionalRate < 0 || c.Commission.ProfessionalRate >= 1 {
		return fmt.Errorf("commission.professional_rate must be in [0, 1)")
	}
	if c.Commission.FlatFee < 0 {
		return fmt.Errorf("commission.flat_fee must not be negative")
	}
	switch c.Storage.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("storage.driver must be memory or postgres, got %q", c.Storage.Driver)
	}
	return nil
}
