package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rentstack/rentstack/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig
	Stripe     StripeConfig
	Plaid      PlaidConfig
	Webhook    WebhookConfig
	Billing    BillingConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int `mapstructure:"max_open_conns"`
	MaxIdleConns int `mapstructure:"max_idle_conns"`
}

// StripeConfig holds the payment gateway credentials. A missing secret key
// surfaces as a gateway authentication failure on the first remote call, not
// at startup.
type StripeConfig struct {
	SecretKey string
	// ProductID is the Stripe product all subscription prices hang off
	ProductID string
	Currency  string
}

// PlaidConfig holds the bank-link provider credentials used to resolve a
// linked account into attachable bank details.
type PlaidConfig struct {
	ClientID string
	Secret   string
	Host     string
}

type WebhookConfig struct {
	Topic string
}

// BillingConfig optionally overrides the built-in tier catalog.
type BillingConfig struct {
	Tiers []TierConfig
}

type TierConfig struct {
	ID                    string  `mapstructure:"id"`
	MonthlyPrice          float64 `mapstructure:"monthly_price"`
	YearlyPrice           float64 `mapstructure:"yearly_price"`
	PerUserPrice          float64 `mapstructure:"per_user_price"`
	MultilocationEligible bool    `mapstructure:"multilocation_eligible"`
	Custom                bool    `mapstructure:"custom"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/rentstack")

	v.SetEnvPrefix("RENTSTACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
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

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and tests.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Webhook:    WebhookConfig{Topic: "billing_events"},
		Postgres: PostgresConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "rentstack",
			Password:     "rentstack",
			DBName:       "rentstack",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
	}
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
