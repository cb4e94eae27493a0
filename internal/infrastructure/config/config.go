package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port          string        `env:"PORT,           default=5000"`
	Env           string        `env:"ENV,            default=development"`
	JWTSecret     string        `env:"JWT_SECRET,     required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,      default=720h"`
	AllowedOrigin string        `env:"ALLOWED_ORIGIN, default=http://localhost:3000"`
	LogLevel      string        `env:"LOG_LEVEL,      default=info"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=accounts"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Production reports whether the service runs in production mode. Internal
// error details are only exposed in responses when it does not.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
