package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port          string `env:"PORT,           default=8080"`
	Env           string `env:"ENV,            default=development"`
	LogLevel      string `env:"LOG_LEVEL,      default=info"`
	ProjectName   string `env:"PROJECT_NAME,   default=Accounts"`
	APIV1Str      string `env:"API_V1_STR,     default=/api/v1"`
	FrontendHost  string `env:"FRONTEND_HOST,  default=http://localhost:3000"`
	StorageDriver string `env:"STORAGE_DRIVER, default=mongo"`

	Security       SecurityConfig
	FirstSuperuser FirstSuperuserConfig
	SMTP           SMTPConfig
	Mail           MailConfig
	Mongo          MongoConfig
	Redis          RedisConfig

	secretGenerated bool
}

type SecurityConfig struct {
	SecretKey                 string `env:"SECRET_KEY"`
	AccessTokenExpireMinutes  int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES,  default=11520"`
	RefreshTokenExpireMinutes int    `env:"REFRESH_TOKEN_EXPIRE_MINUTES, default=259200"`
	ResetTokenExpireMinutes   int    `env:"RESET_TOKEN_EXPIRE_MINUTES,   default=60"`
	BcryptCost                int    `env:"BCRYPT_COST,                  default=10"`
}

type FirstSuperuserConfig struct {
	Email    string `env:"FIRST_SUPERUSER,          default=admin@example.com"`
	Username string `env:"FIRST_SUPERUSER_USERNAME, default=admin"`
	Password string `env:"FIRST_SUPERUSER_PASSWORD, default=admin"`
}

type SMTPConfig struct {
	TLS       bool   `env:"SMTP_TLS,  default=true"`
	Port      int    `env:"SMTP_PORT, default=587"`
	Host      string `env:"SMTP_HOST"`
	User      string `env:"SMTP_USER"`
	Password  string `env:"SMTP_PASSWORD"`
	FromEmail string `env:"EMAILS_FROM_EMAIL"`
	FromName  string `env:"EMAILS_FROM_NAME"`
}

type MailConfig struct {
	Workers          int           `env:"MAIL_WORKERS,      default=4"`
	RecoveryThrottle time.Duration `env:"RECOVERY_THROTTLE, default=1m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=account_service"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED, default=false"`
	Addr     string `env:"REDIS_ADDR,    default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,      default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.Security.SecretKey == "" {
		key, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("config: generate secret key: %w", err)
		}
		cfg.Security.SecretKey = key
		cfg.secretGenerated = true
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageMongo, StorageMemory:
	default:
		return fmt.Errorf("config: STORAGE_DRIVER must be %q or %q, got %q", StorageMongo, StorageMemory, c.StorageDriver)
	}
	if c.Security.AccessTokenExpireMinutes <= 0 || c.Security.RefreshTokenExpireMinutes <= 0 || c.Security.ResetTokenExpireMinutes <= 0 {
		return fmt.Errorf("config: token lifetimes must be positive")
	}
	if c.FirstSuperuser.Email == "" || c.FirstSuperuser.Username == "" || c.FirstSuperuser.Password == "" {
		return fmt.Errorf("config: first superuser email, username and password are required")
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SecretGenerated reports whether SECRET_KEY was unset and a random key was
// generated. Tokens signed with it do not survive a restart.
func (c *Config) SecretGenerated() bool { return c.secretGenerated }

// IsProduction reports whether ENV selects production behaviour (JSON logs).
func (c *Config) IsProduction() bool { return c.Env == "production" }

// EmailsEnabled reports whether an SMTP relay is configured.
func (c *Config) EmailsEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.FromEmail != ""
}

// EmailsFromName falls back to the project name.
func (c *Config) EmailsFromName() string {
	if c.SMTP.FromName != "" {
		return c.SMTP.FromName
	}
	return c.ProjectName
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.Security.AccessTokenExpireMinutes) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.Security.RefreshTokenExpireMinutes) * time.Minute
}

func (c *Config) ResetTokenTTL() time.Duration {
	return time.Duration(c.Security.ResetTokenExpireMinutes) * time.Minute
}
