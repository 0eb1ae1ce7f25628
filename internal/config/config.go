package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/sakarghimire/ecommerce-products/internal/errs"
)

// -----------------------------------------------------------------------------
// Table and function names are injected by the deployment and have no default.
// Everything else falls back to a value that works in every environment.
// -----------------------------------------------------------------------------

type Config struct {
	AWS    AWSConfig
	Tables TablesConfig
	Events EventsConfig
	Log    LogConfig
}

type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Endpoint points the SDK at a local DynamoDB / localstack when set.
	Endpoint string `envconfig:"AWS_ENDPOINT"`
}

type TablesConfig struct {
	Products string `envconfig:"PRODUCTS_DDB"`
	Events   string `envconfig:"EVENTS_DDB"`
}

type EventsConfig struct {
	FunctionName      string        `envconfig:"PRODUCT_EVENTS_FUNCTION_NAME"`
	InvocationType    string        `envconfig:"PRODUCT_EVENTS_INVOCATION_TYPE" default:"RequestResponse"`
	TTL               time.Duration `envconfig:"EVENT_TTL" default:"5m"`
	DefaultActorEmail string        `envconfig:"DEFAULT_ACTOR_EMAIL" default:"unknown@catalog.local"`
}

type LogConfig struct {
	Level    string `envconfig:"LOG_LEVEL" default:"info"`
	Encoding string `envconfig:"LOG_ENCODING" default:"json"`
}

const (
	InvocationRequestResponse = "RequestResponse"
	InvocationEvent           = "Event"
)

// Load reads the environment, optionally seeded from a local .env file.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errs.Wrap(err, "failed to process env config")
	}
	if cfg.Events.InvocationType != InvocationRequestResponse && cfg.Events.InvocationType != InvocationEvent {
		return Config{}, errs.Newf("PRODUCT_EVENTS_INVOCATION_TYPE must be %q or %q, got %q",
			InvocationRequestResponse, InvocationEvent, cfg.Events.InvocationType)
	}
	if cfg.Events.TTL <= 0 {
		return Config{}, errs.Newf("EVENT_TTL must be positive, got %s", cfg.Events.TTL)
	}
	return cfg, nil
}

// ValidateFetch checks the settings the fetch function depends on.
func (c Config) ValidateFetch() error {
	if c.Tables.Products == "" {
		return errs.New("PRODUCTS_DDB is required")
	}
	return nil
}

// ValidateAdmin checks the settings the admin function depends on. Events are
// delivered either to a remote recorder function or, without one, recorded
// in-process into EVENTS_DDB.
func (c Config) ValidateAdmin() error {
	if err := c.ValidateFetch(); err != nil {
		return err
	}
	if c.Events.FunctionName == "" && c.Tables.Events == "" {
		return errs.New("PRODUCT_EVENTS_FUNCTION_NAME or EVENTS_DDB is required")
	}
	return nil
}

// ValidateRecorder checks the settings the event recorder function depends on.
func (c Config) ValidateRecorder() error {
	if c.Tables.Events == "" {
		return errs.New("EVENTS_DDB is required")
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		AWS: AWSConfig{
			Region:   "us-east-1",
			Endpoint: "http://localhost:8000",
		},
		Tables: TablesConfig{
			Products: "products",
			Events:   "events",
		},
		Events: EventsConfig{
			FunctionName:      "ProductsEventsFunction",
			InvocationType:    InvocationRequestResponse,
			TTL:               5 * time.Minute,
			DefaultActorEmail: "unknown@catalog.local",
		},
		Log: LogConfig{
			Level:    "error",
			Encoding: "console",
		},
	}
}
