package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mindreel/relevance.yaml",
}

// Load layers configuration with precedence env > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(New(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	splitSliceFields(k)

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{"server.cors_origins"}

// splitSliceFields turns comma-separated env values into slices.
func splitSliceFields(k *koanf.Koanf) {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		_ = k.Set(path, parts)
	}
}

// envMappings keeps the variable names the service has always used.
var envMappings = map[string]string{
	"db_host":              "database.host",
	"db_port":              "database.port",
	"db_login":             "database.user",
	"db_password":          "database.password",
	"db_name":              "database.name",
	"db_sslmode":           "database.sslmode",
	"db_max_connections":   "database.max_connections",
	"server_host":          "server.host",
	"server_port":          "server.port",
	"request_timeout":      "server.request_timeout",
	"cors_origins":         "server.cors_origins",
	"ip_rate_limit":        "server.ip_requests_per_minute",
	"log_level":            "logging.level",
	"log_format":           "logging.format",
	"log_caller":           "logging.caller",
	"relevance_threshold":  "relevance.threshold",
	"relevance_policy":     "relevance.policy",
	"relevance_ref_year":   "relevance.reference_year",
	"prosperity_limit":     "prosperity.limit",
	"rate_limit_enabled":   "ratelimit.enabled",
	"redis_addr":           "ratelimit.redis_addr",
	"redis_db":             "ratelimit.redis_db",
	"rate_limit_requests":  "ratelimit.requests",
	"rate_limit_window":    "ratelimit.window",
	"breaker_timeout":      "breaker.timeout",
	"breaker_failure_rate": "breaker.failure_threshold",
}

// envTransformFunc maps known variables to koanf paths and drops the rest.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
