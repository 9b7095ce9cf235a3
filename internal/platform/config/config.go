// Package config loads service configuration with koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts     = 3
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10
	DefaultTransportIdleConnTimeout     = 90 * time.Second

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	DefaultDatabaseMaxOpenConns = 25
	DefaultDatabaseMaxIdleConns = 10

	DefaultClassifierModel     = "claude-3-5-haiku-latest"
	DefaultClassifierMaxTokens = 256
	DefaultClassifierCacheSize = 1024

	DefaultClassifierAPIVersion = "2023-06-01"

	DefaultVoteMaxRetries           = 3
	DefaultRecommendationCandidates = 100
	DefaultCORSMaxAge               = 12 * time.Hour
	DefaultAuthSubjectHeader        = "X-User-ID"
)

// Config is the root configuration structure.
type Config struct {
	App             AppConfig            `koanf:"app"             validate:"required"`
	Server          ServerConfig         `koanf:"server"          validate:"required"`
	Log             LogConfig            `koanf:"log"             validate:"required"`
	Telemetry       TelemetryConfig      `koanf:"telemetry"`
	Auth            AuthConfig           `koanf:"auth"`
	CORS            CORSConfig           `koanf:"cors"`
	Client          ClientConfig         `koanf:"client"          validate:"required"`
	Database        DatabaseConfig       `koanf:"database"        validate:"required"`
	Classifier      ClassifierConfig     `koanf:"classifier"`
	Votes           VotesConfig          `koanf:"votes"`
	Recommendations RecommendationConfig `koanf:"recommendations"`
	Features        map[string]bool      `koanf:"features"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`

	// Insecure sends to the collector without TLS.
	Insecure bool              `koanf:"insecure"`
	Headers  map[string]string `koanf:"headers"`
}

// AuthConfig controls bearer token verification.
// With auth disabled the caller identity is read from SubjectHeader.
type AuthConfig struct {
	Enabled       bool          `koanf:"enabled"`
	JWTSecret     string        `koanf:"jwt_secret"     validate:"required_if=Enabled true,omitempty,min=16"`
	Issuer        string        `koanf:"issuer"`
	Audience      string        `koanf:"audience"`
	ClockSkew     time.Duration `koanf:"clock_skew"`
	SubjectHeader string        `koanf:"subject_header"`
}

// CORSConfig contains cross-origin settings for browser clients.
type CORSConfig struct {
	Enabled          bool          `koanf:"enabled"`
	AllowedOrigins   []string      `koanf:"allowed_origins"   validate:"required_if=Enabled true"`
	AllowCredentials bool          `koanf:"allow_credentials"`
	MaxAge           time.Duration `koanf:"max_age"`
}

// ClientConfig contains HTTP client settings for downstream services.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// DatabaseConfig selects and tunes the storage backend.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"            validate:"required,oneof=postgres sqlite"`
	DSN             string        `koanf:"dsn"               validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"min=1"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
	LogLevel        string        `koanf:"log_level"         validate:"oneof=silent error warn info"`
}

// ClassifierConfig configures the LLM category classifier.
type ClassifierConfig struct {
	Enabled    bool          `koanf:"enabled"`
	BaseURL    string        `koanf:"base_url"    validate:"required_if=Enabled true,omitempty,url"`
	APIKey     string        `koanf:"api_key"     validate:"required_if=Enabled true"`
	APIVersion string        `koanf:"api_version"`
	Model      string        `koanf:"model"       validate:"required_if=Enabled true"`
	MaxTokens  int           `koanf:"max_tokens"  validate:"omitempty,min=16,max=4096"`
	Timeout    time.Duration `koanf:"timeout"     validate:"omitempty,min=100ms"`
	CacheSize  int           `koanf:"cache_size"  validate:"min=0"`
	CacheTTL   time.Duration `koanf:"cache_ttl"`
}

// VotesConfig controls how vote writes handle concurrent updates.
type VotesConfig struct {
	// OptimisticLocking turns on version compare-and-swap. Off means last write wins.
	OptimisticLocking bool `koanf:"optimistic_locking"`

	// MaxRetries is how many times a conflicting vote is reloaded and
	// reapplied before the caller gets a 409.
	MaxRetries int `koanf:"max_retries" validate:"min=1,max=10"`
}

// RecommendationConfig tunes the recommendation pipeline.
type RecommendationConfig struct {
	CandidateLimit int `koanf:"candidate_limit" validate:"min=1,max=1000"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "wellness-service",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "30s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/wellness.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "wellness-service",
		"telemetry.sampling_rate": 1.0,
		"telemetry.insecure":      true,

		"auth.enabled":        false,
		"auth.jwt_secret":     "",
		"auth.issuer":         "",
		"auth.audience":       "",
		"auth.clock_skew":     "30s",
		"auth.subject_header": DefaultAuthSubjectHeader,

		"cors.enabled":           false,
		"cors.allowed_origins":   []string{"http://localhost:3000"},
		"cors.allow_credentials": true,
		"cors.max_age":           DefaultCORSMaxAge.String(),

		"client.timeout":                           "30s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"database.driver":            "sqlite",
		"database.dsn":               "file:wellness.db?_foreign_keys=on",
		"database.max_open_conns":    DefaultDatabaseMaxOpenConns,
		"database.max_idle_conns":    DefaultDatabaseMaxIdleConns,
		"database.conn_max_lifetime": "30m",
		"database.auto_migrate":      true,
		"database.log_level":         "warn",

		"classifier.enabled":     false,
		"classifier.base_url":    "https://api.anthropic.com",
		"classifier.api_key":     "",
		"classifier.api_version": DefaultClassifierAPIVersion,
		"classifier.model":       DefaultClassifierModel,
		"classifier.max_tokens":  DefaultClassifierMaxTokens,
		"classifier.timeout":     "10s",
		"classifier.cache_size":  DefaultClassifierCacheSize,
		"classifier.cache_ttl":   "1h",

		"votes.optimistic_locking": true,
		"votes.max_retries":        DefaultVoteMaxRetries,

		"recommendations.candidate_limit": DefaultRecommendationCandidates,

		"features.nutrition_advice": true,
		"features.classifier_cache": true,
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadFileIfExists(k, "configs/base.yaml"); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		if err := loadFileIfExists(k, fmt.Sprintf("configs/%s.yaml", profile)); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	known := k.All()

	err := k.Load(env.Provider("APP_", ".", func(s string) string {
		return envKey(strings.ToLower(strings.TrimPrefix(s, "APP_")), known)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps an env suffix such as "classifier_api_key" onto a known key
// ("classifier.api_key"). Each underscore is either a level separator or part
// of a key name; the first combination naming a known key wins. Unknown names
// fall back to treating every underscore as a separator.
func envKey(name string, known map[string]any) string {
	parts := strings.Split(name, "_")
	if key, ok := matchKey(parts[0], parts[1:], known); ok {
		return key
	}

	return strings.Join(parts, ".")
}

func matchKey(prefix string, rest []string, known map[string]any) (string, bool) {
	if len(rest) == 0 {
		_, ok := known[prefix]
		return prefix, ok
	}

	if key, ok := matchKey(prefix+"."+rest[0], rest[1:], known); ok {
		return key, true
	}

	return matchKey(prefix+"_"+rest[0], rest[1:], known)
}

// loadFileIfExists loads a YAML config file if it exists.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
