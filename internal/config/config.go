package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/ticketing/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Cache      CacheConfig
	Billing    BillingConfig   `validate:"required"`
	Scheduler  SchedulerConfig `mapstructure:"scheduler"`
	Cron       CronConfig
	Sentry     SentryConfig
	Metrics    MetricsConfig
	Events     EventsConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required,oneof=local api scheduler"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required,oneof=debug info warn error"`
}

type PostgresConfig struct {
	Host                   string `validate:"required"`
	Port                   int    `validate:"required"`
	User                   string `validate:"required"`
	Password               string
	DBName                 string `mapstructure:"dbname" validate:"required"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

type CacheConfig struct {
	Enabled bool
}

// BillingConfig holds the knobs of the payment date and ticket sweeps
type BillingConfig struct {
	// Timezone is the IANA zone "today" is evaluated in
	Timezone           string             `validate:"required"`
	SweepConcurrency   int                `mapstructure:"sweep_concurrency" validate:"gte=1"`
	StatusPolicy       types.StatusPolicy `mapstructure:"status_policy" validate:"required,oneof=preserve_cancelled expire_cancelled"`
	// WriteRetries caps the retries of a failed payment date write
	WriteRetries       int                `mapstructure:"write_retries" validate:"gte=0"`
	WriteRetryInterval time.Duration      `mapstructure:"write_retry_interval"`
}

type SchedulerConfig struct {
	Enabled              bool
	PaymentDateRefresh   string `mapstructure:"payment_date_refresh"`
	ProportionalBackfill string `mapstructure:"proportional_backfill"`
}

type CronConfig struct {
	Secret string
}

type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type MetricsConfig struct {
	Enabled bool
}

// EventsConfig drives the retry middleware of the in-process event router
type EventsConfig struct {
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

func NewConfig() (*Configuration, error) {
	// a missing .env is fine, it's only a local convenience
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/billing")

	// BILLING_POSTGRES_HOST overrides postgres.host
	v.SetEnvPrefix("BILLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "billing")
	v.SetDefault("postgres.dbname", "billing")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 30)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("billing.timezone", "UTC")
	v.SetDefault("billing.sweep_concurrency", 4)
	v.SetDefault("billing.status_policy", string(types.StatusPolicyPreserveCancelled))
	v.SetDefault("billing.write_retries", 3)
	v.SetDefault("billing.write_retry_interval", "200ms")
	v.SetDefault("scheduler.payment_date_refresh", "0 2 * * *")
	v.SetDefault("scheduler.proportional_backfill", "30 2 * * *")
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("events.max_retries", 3)
	v.SetDefault("events.initial_interval", "1s")
	v.SetDefault("events.max_interval", "10s")
	v.SetDefault("events.multiplier", 2.0)
	v.SetDefault("events.max_elapsed_time", "1m")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Billing.Timezone); err != nil {
		return fmt.Errorf("billing.timezone: %w", err)
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "billing",
			DBName:  "billing",
			SSLMode: "disable",
		},
		Billing: BillingConfig{
			Timezone:           "UTC",
			SweepConcurrency:   4,
			StatusPolicy:       types.StatusPolicyPreserveCancelled,
			WriteRetries:       3,
			WriteRetryInterval: 200 * time.Millisecond,
		},
		Scheduler: SchedulerConfig{
			PaymentDateRefresh:   "0 2 * * *",
			ProportionalBackfill: "30 2 * * *",
		},
		Events: EventsConfig{
			MaxRetries:      3,
			InitialInterval: time.Second,
			MaxInterval:     10 * time.Second,
			Multiplier:      2,
			MaxElapsedTime:  time.Minute,
		},
	}
}

// Location resolves the billing timezone, falling back to UTC
func (c BillingConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

// GetMigrateURL renders the connection as a postgres:// URL for golang-migrate
func (c PostgresConfig) GetMigrateURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}

// ConnMaxLifetime converts the configured minutes to a duration
func (c PostgresConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}
