package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServiceName  string       `mapstructure:"service_name"`
	Env          string       `mapstructure:"env"`
	Port         string       `mapstructure:"port"`
	Database     Database     `mapstructure:"database"`
	AWS          AWS          `mapstructure:"aws"`
	Downstream   Downstream   `mapstructure:"downstream"`
	Breaker      Breaker      `mapstructure:"breaker"`
	Publisher    Publisher    `mapstructure:"publisher"`
	Drainer      Drainer      `mapstructure:"drainer"`
	Telemetry    Telemetry    `mapstructure:"telemetry"`
}

type Database struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type AWS struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	EndpointSNS     string `mapstructure:"endpoint_sns"`
	EndpointSQS     string `mapstructure:"endpoint_sqs"`
	SNSTopicArn     string `mapstructure:"sns_topic_arn"`
	SQSQueueURL     string `mapstructure:"sqs_queue_url"`
}

// Downstream lists the base URLs of the five downstream services the saga
// fans out to
type Downstream struct {
	InventoryURL string `mapstructure:"inventory_url"`
	LogisticsURL string `mapstructure:"logistics_url"`
	AnalyticsURL string `mapstructure:"analytics_url"`
	CRMURL       string `mapstructure:"crm_url"`
	VendorURL    string `mapstructure:"vendor_url"`

	// CallTimeoutMs is the hard per-call deadline for downstream calls.
	CallTimeoutMs int `mapstructure:"call_timeout_ms"`
}

// Breaker tunes the per-dependency circuit breakers
type Breaker struct {
	FailureRateThreshold float64 `mapstructure:"failure_rate_threshold"`
	WindowSize           int     `mapstructure:"window_size"`
	MinimumCalls         int     `mapstructure:"minimum_calls"`
	CooldownMs           int     `mapstructure:"cooldown_ms"`
	HalfOpenMaxCalls     int     `mapstructure:"half_open_max_calls"`
}

// Publisher tunes the broker publish path
type Publisher struct {
	DeadlineMs int `mapstructure:"deadline_ms"`
}

// Drainer tunes the outbox drainer loop
type Drainer struct {
	IntervalMs   int `mapstructure:"interval_ms"`
	BatchSize    int `mapstructure:"batch_size"`
	MaxBackoffMs int `mapstructure:"max_backoff_ms"`
}

type Telemetry struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

func ReadConfig() (*Config, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("unable to get current file")
	}

	configDir := filepath.Join(filepath.Dir(filename))
	viper.SetConfigName(getConfigName())
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	// Allow environment variables to override config
	viper.AutomaticEnv()
	viper.SetEnvPrefix("ORDER")

	setDefaultsFromEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	err = viper.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func getConfigName() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		return "local"
	}
	return env
}

func setDefaultsFromEnv() {
	// Service defaults
	viper.SetDefault("service_name", "order-service")
	viper.SetDefault("env", getEnv("ENV", "local"))
	viper.SetDefault("port", getEnv("PORT", "8080"))

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "order_processing")
	viper.SetDefault("database.ssl_mode", "disable")

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
	}

	// AWS defaults
	viper.SetDefault("aws.access_key_id", getEnv("AWS_ACCESS_KEY_ID", "test"))
	viper.SetDefault("aws.secret_access_key", getEnv("AWS_SECRET_ACCESS_KEY", "test"))
	viper.SetDefault("aws.region", getEnv("AWS_DEFAULT_REGION", "us-east-1"))
	viper.SetDefault("aws.endpoint_sns", getEnv("AWS_ENDPOINT_URL_SNS", "http://localhost:4566"))
	viper.SetDefault("aws.endpoint_sqs", getEnv("AWS_ENDPOINT_URL_SQS", "http://localhost:4566"))
	viper.SetDefault("aws.sns_topic_arn", getEnv("SNS_TOPIC_ARN", "arn:aws:sns:us-east-1:000000000000:orders-topic"))
	viper.SetDefault("aws.sqs_queue_url", getEnv("SQS_QUEUE_URL", "http://localhost:4566/000000000000/orders-queue"))

	// Downstream dependency defaults
	viper.SetDefault("downstream.inventory_url", getEnv("INVENTORY_URL", "http://localhost:8081"))
	viper.SetDefault("downstream.logistics_url", getEnv("LOGISTICS_URL", "http://localhost:8082"))
	viper.SetDefault("downstream.analytics_url", getEnv("ANALYTICS_URL", "http://localhost:8083"))
	viper.SetDefault("downstream.crm_url", getEnv("CRM_URL", "http://localhost:8084"))
	viper.SetDefault("downstream.vendor_url", getEnv("VENDOR_URL", "http://localhost:8085"))
	viper.SetDefault("downstream.call_timeout_ms", 2000)

	// Breaker defaults
	viper.SetDefault("breaker.failure_rate_threshold", 0.5)
	viper.SetDefault("breaker.window_size", 10)
	viper.SetDefault("breaker.minimum_calls", 4)
	viper.SetDefault("breaker.cooldown_ms", 10000)
	viper.SetDefault("breaker.half_open_max_calls", 1)

	// Publisher defaults
	viper.SetDefault("publisher.deadline_ms", 2000)

	// Drainer defaults
	viper.SetDefault("drainer.interval_ms", 5000)
	viper.SetDefault("drainer.batch_size", 50)
	viper.SetDefault("drainer.max_backoff_ms", 120000)

	// Telemetry defaults
	viper.SetDefault("telemetry.enabled", getEnv("TELEMETRY_ENABLED", "true") == "true")
	viper.SetDefault("telemetry.otlp_endpoint", getEnv("OTLP_ENDPOINT", "localhost:4318"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDatabaseURL constructs database URL from config
func (c *Config) GetDatabaseURL() string {
	if url := viper.GetString("database.url"); url != "" {
		return url
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// CallTimeout returns the downstream call deadline as a duration
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Downstream.CallTimeoutMs) * time.Millisecond
}

// PublishDeadline returns the broker publish deadline as a duration
func (c *Config) PublishDeadline() time.Duration {
	return time.Duration(c.Publisher.DeadlineMs) * time.Millisecond
}
