package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=168h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Mongo MongoConfig
	Redis RedisConfig
	Face  FaceConfig
	Mail  MailConfig
	SMS   SMSConfig
	Media MediaConfig

	// RequireMobileOTP makes enrollment demand a completed mobile code flow
	// in addition to the email one.
	RequireMobileOTP bool `env:"REQUIRE_MOBILE_OTP, default=false"`

	NotifyWorkers int `env:"NOTIFY_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=election_system"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type FaceConfig struct {
	// URL of the embedding-extractor service.
	URL       string        `env:"FACE_SERVICE_URL, default=http://localhost:9000"`
	Timeout   time.Duration `env:"FACE_TIMEOUT,     default=30s"`
	Threshold float64       `env:"MATCH_THRESHOLD,  default=0.6"`
}

type MailConfig struct {
	// Provider selects the mailer: "mailersend", "smtp" or "dev".
	Provider  string `env:"MAIL_PROVIDER, default=dev"`
	APIKey    string `env:"MAILERSEND_API_KEY"`
	FromName  string `env:"MAIL_FROM_NAME,  default=Voting Portal"`
	FromEmail string `env:"MAIL_FROM_EMAIL, default=no-reply@voting-portal.local"`
	SMTPHost  string `env:"SMTP_HOST"`
	SMTPPort  int    `env:"SMTP_PORT, default=587"`
	SMTPUser  string `env:"SMTP_USER"`
	SMTPPass  string `env:"SMTP_PASS"`
}

type SMSConfig struct {
	GatewayURL string `env:"SMS_GATEWAY_URL, default=https://2factor.in/API/V1"`
	APIKey     string `env:"SMS_API_KEY"`
}

type MediaConfig struct {
	// Dir is the scratch directory for uploaded enrollment photos.
	Dir string `env:"MEDIA_DIR, default=/tmp/election-media"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
