package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the Excel analytics service.
type Config struct {
	Addr           string        `env:"ADDR,default=:5000"`
	Env            string        `env:"APP_ENV,default=development"`
	DBDSN          string        `env:"DB_DSN,required"`
	JWTSecret      string        `env:"JWT_SECRET,required"`
	TokenTTL       time.Duration `env:"TOKEN_TTL,default=168h"`
	InvitationTTL  time.Duration `env:"INVITATION_TTL,default=168h"`
	FrontendURL    string        `env:"FRONTEND_URL,default=http://localhost:3000"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
	UploadDir      string        `env:"UPLOAD_DIR,default=uploads"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES,default=10485760"`
	SMTPHost       string        `env:"SMTP_HOST"`
	SMTPPort       int           `env:"SMTP_PORT,default=587"`
	SMTPUser       string        `env:"SMTP_USER"`
	SMTPPassword   string        `env:"SMTP_PASS"`
	FromName       string        `env:"FROM_NAME,default=Excel Analytics"`
	FromEmail      string        `env:"FROM_EMAIL"`
	NATSURL        string        `env:"NATS_URL"`
	OTLPEndpoint   string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Development reports whether the service runs in a development-like mode,
// which controls how much error detail responses carry.
func (c Config) Development() bool {
	return c.Env == "development"
}
