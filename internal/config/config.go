package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// ----------------------------
	// SMTP
	// ----------------------------
	SMTPHost     string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"1025"`
	SMTPUser     string `envconfig:"SMTP_USER" default:""`
	SMTPPassword string `envconfig:"SMTP_PASSWORD" default:""`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"noreply@gatepass.events"`

	// ----------------------------
	// Workers
	// ----------------------------
	WorkerCount int           `envconfig:"WORKER_COUNT" default:"5"`
	RateLimit   int           `envconfig:"RATE_LIMIT" default:"10"`
	SendTimeout time.Duration `envconfig:"SEND_TIMEOUT" default:"30s"`

	// ----------------------------
	// Batch scheduling
	// ----------------------------
	BatchSize     int           `envconfig:"BATCH_SIZE" default:"50"`
	BatchInterval time.Duration `envconfig:"BATCH_INTERVAL" default:"30s"`
	Stagger       time.Duration `envconfig:"STAGGER" default:"1s"`

	// ----------------------------
	// Retry
	// ----------------------------
	RetryAttempts  int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"RETRY_BASE_DELAY" default:"5s"`

	// ----------------------------
	// HTTP API
	// ----------------------------
	APIPort string `envconfig:"API_PORT" default:"8080"`

	// ----------------------------
	// Metrics
	// ----------------------------
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`

	// ----------------------------
	// Storage / broker
	// ----------------------------
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	AMQPURL     string `envconfig:"AMQP_URL" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return &cfg, err
}
