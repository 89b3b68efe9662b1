package config

import (
	"errors"
	"fmt"
	"time"

	"mindreel/relevance/internal/validation"
)

type Config struct {
	Database   DatabaseConfig   `koanf:"database"`
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Relevance  RelevanceConfig  `koanf:"relevance"`
	Prosperity ProsperityConfig `koanf:"prosperity"`
	RateLimit  RateLimitConfig  `koanf:"ratelimit"`
	Breaker    BreakerConfig    `koanf:"breaker"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            string        `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"sslmode" validate:"oneof=disable require verify-ca verify-full"`
	MaxConnections  int           `koanf:"max_connections" validate:"min=1"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// DSN builds a lib/pq keyword/value connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"user=%s dbname=%s sslmode=%s password=%s host=%s port=%s",
		c.User, c.Name, c.SSLMode, c.Password, c.Host, c.Port,
	)
}

type ServerConfig struct {
	Host             string        `koanf:"host"`
	Port             int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout      time.Duration `koanf:"read_timeout"`
	WriteTimeout     time.Duration `koanf:"write_timeout"`
	RequestTimeout   time.Duration `koanf:"request_timeout"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins      []string      `koanf:"cors_origins"`
	IPRequestsPerMin int           `koanf:"ip_requests_per_minute" validate:"min=0"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

type RelevanceConfig struct {
	// Threshold is the minimum relevance score (out of 7) for an item to count as relevant.
	Threshold int `koanf:"threshold" validate:"min=0,max=7"`
	// Policy is an optional CEL expression that replaces the threshold, e.g.
	// "score >= 4 && criteria.genres >= 1".
	Policy string `koanf:"policy"`
	// ReferenceYear anchors "new"/"recent"/"classic" age brackets. Zero means the current year.
	ReferenceYear int `koanf:"reference_year" validate:"min=0"`
}

type ProsperityConfig struct {
	Weights Weights `koanf:"weights"`
	Limit   int     `koanf:"limit" validate:"min=1"`
}

type Weights struct {
	Wins           float64 `koanf:"wins" validate:"min=0"`
	Nominations    float64 `koanf:"nominations" validate:"min=0"`
	BoxOffice      float64 `koanf:"box_office" validate:"min=0"`
	Metascore      float64 `koanf:"metascore" validate:"min=0"`
	IMDb           float64 `koanf:"imdb" validate:"min=0"`
	RottenTomatoes float64 `koanf:"rotten_tomatoes" validate:"min=0"`
}

type RateLimitConfig struct {
	Enabled   bool          `koanf:"enabled"`
	RedisAddr string        `koanf:"redis_addr" validate:"required_if=Enabled true"`
	RedisDB   int           `koanf:"redis_db" validate:"min=0"`
	Requests  int           `koanf:"requests" validate:"min=1"`
	Window    time.Duration `koanf:"window" validate:"min=1s"`
}

type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"min=1"`
}

// New returns the built-in defaults.
func New() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Name:            "mindreel",
			SSLMode:         "disable",
			MaxConnections:  20,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Server: ServerConfig{
			Port:             8080,
			ReadTimeout:      10 * time.Second,
			WriteTimeout:     30 * time.Second,
			RequestTimeout:   20 * time.Second,
			ShutdownTimeout:  15 * time.Second,
			CORSOrigins:      []string{"http://localhost:5173"},
			IPRequestsPerMin: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Relevance: RelevanceConfig{
			Threshold: 4,
		},
		Prosperity: ProsperityConfig{
			Weights: Weights{
				Wins:           0.30,
				Nominations:    0.25,
				BoxOffice:      0.15,
				Metascore:      0.10,
				IMDb:           0.10,
				RottenTomatoes: 0.10,
			},
			Limit: 100,
		},
		RateLimit: RateLimitConfig{
			RedisAddr: "localhost:6379",
			Requests:  30,
			Window:    time.Minute,
		},
		Breaker: BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
	}
}

func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.RequestTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}
	if c.Server.RequestTimeout > c.Server.WriteTimeout {
		return fmt.Errorf("server.request_timeout (%s) exceeds server.write_timeout (%s)",
			c.Server.RequestTimeout, c.Server.WriteTimeout)
	}
	return nil
}
