package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const DefaultStoreEndpoint = "https://script.google.com/macros/s/AKfycbyahGxDOYN6BxLXIlufM0sfd8B-CU8VMEqmCiQsd3WDCrJJi4C8tGq4aeohJp0DwF_m/exec"

type Config struct {
	Port        string        `env:"PORT,         default=8080"`
	Env         string        `env:"ENV,          default=development"`
	LogLevel    string        `env:"LOG_LEVEL,    default=info"`
	JWTSecret   string        `env:"JWT_SECRET,   required"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,    default=12h"`
	CORSOrigins []string      `env:"CORS_ORIGINS, default=*"`

	Store     StoreConfig
	Chat      ChatConfig
	Bootstrap BootstrapConfig
	Session   SessionConfig
	Audit     AuditConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

// StoreConfig points at the spreadsheet-backed web endpoint.
type StoreConfig struct {
	Endpoint  string        `env:"STORE_ENDPOINT"`
	Retries   int           `env:"STORE_RETRIES,    default=3"`
	Backoff   time.Duration `env:"STORE_BACKOFF,    default=1s"`
	ViewerURL string        `env:"STORE_VIEWER_URL, default=https://lh3.googleusercontent.com/d/"`
}

type ChatConfig struct {
	PollInterval time.Duration `env:"CHAT_POLL_INTERVAL, default=3s"`
}

// BootstrapConfig is the built-in admin credential accepted when no registry
// row matches the login e-mail.
type BootstrapConfig struct {
	Email    string `env:"BOOTSTRAP_EMAIL,    default=admin@empresa.com"`
	Password string `env:"BOOTSTRAP_PASSWORD, default=admin"`
}

type SessionConfig struct {
	TTL time.Duration `env:"SESSION_TTL, default=720h"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=tracking_portal"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return process(ctx, envconfig.OsLookuper())
}

func process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Store.Endpoint == "" {
		cfg.Store.Endpoint = DefaultStoreEndpoint
	}
	return &cfg, nil
}
