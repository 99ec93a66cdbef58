// Package config provides configuration loading and management using koanf.
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

	"github.com/jsamuelsen/hourly-quotes/internal/domain"
)

// ErrMissingAPIKey is returned when a generating command runs without a key.
var ErrMissingAPIKey = errors.New("openai.api_key is required (set OPENAI_API_KEY)")

// Default configuration values.
const (
	// DefaultAppName names the service in logs, traces and the CLI.
	DefaultAppName = "hourly-quotes"

	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20 // 1048576 bytes

	// DefaultClientRetryMaxAttempts is the default number of attempts per call.
	// Generation is not retried: a failed hour is simply skipped.
	DefaultClientRetryMaxAttempts = 1

	// DefaultClientRetryMultiplier is the default exponential backoff multiplier.
	DefaultClientRetryMultiplier = 2.0

	// DefaultClientRetryJitterFactor is the default jitter percentage (±25%).
	DefaultClientRetryJitterFactor = 0.25

	// DefaultClientCircuitMaxFailures is the default failures before circuit opens.
	DefaultClientCircuitMaxFailures = 5

	// DefaultClientCircuitHalfOpenLimit is the default successes to close circuit.
	DefaultClientCircuitHalfOpenLimit = 3

	// DefaultTransportMaxIdleConns is the default max idle connections.
	DefaultTransportMaxIdleConns = 100

	// DefaultTransportMaxIdleConnsPerHost is the default max idle connections per host.
	DefaultTransportMaxIdleConnsPerHost = 10

	// DefaultTransportIdleConnTimeout is the default idle connection timeout.
	DefaultTransportIdleConnTimeout = 90 * time.Second

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28

	// DefaultOpenAIModel is the chat model used for quotes.
	DefaultOpenAIModel = "gpt-3.5-turbo"

	// DefaultOpenAIMaxTokens caps the completion length.
	DefaultOpenAIMaxTokens = 100

	// DefaultOpenAITemperature favours varied wording between hours.
	DefaultOpenAITemperature = 0.9

	// DefaultStoreReadConcurrency bounds parallel day-log reads for the history view.
	DefaultStoreReadConcurrency = 8

	// DefaultSchedulerSpec fires at the top of every hour.
	DefaultSchedulerSpec = "0 * * * *"
)

// Config is the root configuration structure.
type Config struct {
	App        AppConfig        `koanf:"app"        validate:"required"`
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	Log        LogConfig        `koanf:"log"        validate:"required"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Client     ClientConfig     `koanf:"client"     validate:"required"`
	OpenAI     OpenAIConfig     `koanf:"openai"     validate:"required"`
	Generation GenerationConfig `koanf:"generation" validate:"required"`
	Store      StoreConfig      `koanf:"store"      validate:"required"`
	Scheduler  SchedulerConfig  `koanf:"scheduler"`
	Site       SiteConfig       `koanf:"site"       validate:"required"`
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
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
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
	MaxIdleConns        int           `koanf:"max_idle_conns"         validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"      validate:"required,min=1s"`
}

// OpenAIConfig contains settings for the chat completion API used to write quotes.
// The API key is only needed by commands that generate.
type OpenAIConfig struct {
	APIKey      string        `koanf:"api_key"`
	BaseURL     string        `koanf:"base_url"    validate:"required,url"`
	Name        string        `koanf:"name"        validate:"required"`
	Model       string        `koanf:"model"       validate:"required"`
	MaxTokens   int           `koanf:"max_tokens"  validate:"required,min=1,max=4096"`
	Temperature float32       `koanf:"temperature" validate:"min=0,max=2"`
	Timeout     time.Duration `koanf:"timeout"     validate:"required,min=1s"`
}

// GenerationConfig controls which parameters an hourly run uses.
type GenerationConfig struct {
	// Timezone names the location whose wall clock picks the hour and the
	// date key. Empty means the system local zone.
	Timezone string `koanf:"timezone" validate:"omitempty,timezone"`

	// ParamsFile optionally points at a JSON or YAML file shaped like
	// {"global": {...}, "hourly": {"9": {...}}}. It is merged over Params.
	ParamsFile string       `koanf:"params_file"`
	Params     ParamsConfig `koanf:"params"`
}

// ParamsConfig is the on-disk shape of the hourly schedule.
type ParamsConfig struct {
	Global domain.GenerationParams            `koanf:"global"`
	Hourly map[string]domain.GenerationParams `koanf:"hourly"`
}

// StoreConfig selects and configures the quote store.
type StoreConfig struct {
	Driver          string `koanf:"driver"           validate:"required,oneof=file sqlite"`
	Dir             string `koanf:"dir"              validate:"required_if=Driver file"`
	SQLitePath      string `koanf:"sqlite_path"      validate:"required_if=Driver sqlite"`
	WriteMirrors    bool   `koanf:"write_mirrors"`
	ReadConcurrency int    `koanf:"read_concurrency" validate:"required,min=1,max=64"`
}

// SchedulerConfig controls the optional in-process hourly trigger.
type SchedulerConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Spec       string `koanf:"spec"         validate:"required_if=Enabled true"`
	RunOnStart bool   `koanf:"run_on_start"`
}

// SiteConfig contains settings for rendered pages and the static build.
type SiteConfig struct {
	Title  string `koanf:"title"   validate:"required"`
	OutDir string `koanf:"out_dir" validate:"required"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        DefaultAppName,
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  DefaultAppName,
		"telemetry.sampling_rate": 1.0,

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

		"openai.api_key":     "",
		"openai.base_url":    "https://api.openai.com/v1",
		"openai.name":        "openai",
		"openai.model":       DefaultOpenAIModel,
		"openai.max_tokens":  DefaultOpenAIMaxTokens,
		"openai.temperature": DefaultOpenAITemperature,
		"openai.timeout":     "30s",

		"generation.timezone":               "",
		"generation.params_file":            "",
		"generation.params.global.theme":    "life",
		"generation.params.global.tone":     "inspirational",
		"generation.params.global.audience": "general",

		"store.driver":           "file",
		"store.dir":              "data/quotes",
		"store.sqlite_path":      "data/quotes.db",
		"store.write_mirrors":    true,
		"store.read_concurrency": DefaultStoreReadConcurrency,

		"scheduler.enabled":      false,
		"scheduler.spec":         DefaultSchedulerSpec,
		"scheduler.run_on_start": false,

		"site.title":   "Hourly Quotes",
		"site.out_dir": "public",
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (OPENAI_ prefix, then APP_ prefix)
//  2. Profile config file (configs/{profile}.yaml)
//  3. Base config file (configs/base.yaml)
//  4. Default values
//
// If generation.params_file is set after these layers, that file is merged
// over generation.params.
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load environment variables with APP_ prefix
	known := envKeys()

	err = k.Load(env.Provider("APP_", ".", func(s string) string {
		if key, ok := known[s]; ok {
			return key
		}

		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "APP_")),
			"_",
			".",
		)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// 5. OPENAI_API_KEY and friends, under the names the OpenAI tooling uses
	err = k.Load(env.Provider("OPENAI_", ".", func(s string) string {
		return "openai." + strings.ToLower(strings.TrimPrefix(s, "OPENAI_"))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading openai env vars: %w", err)
	}

	// 6. Hourly parameter file
	if path := k.String("generation.params_file"); path != "" {
		err = mergeParamsFile(k, path)
		if err != nil {
			return nil, fmt.Errorf("loading params file %q: %w", path, err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeys maps APP_* names onto the known config keys. Keys that contain
// underscores (store.write_mirrors) cannot be recovered by replacing "_"
// with ".", so every default key is listed explicitly.
func envKeys() map[string]string {
	keys := make(map[string]string)

	for key := range defaults() {
		name := "APP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		keys[name] = key
	}

	return keys
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

// mergeParamsFile merges a {global, hourly} document at generation.params.
// JSON is valid YAML, so one parser covers both formats. Unlike the profile
// files, a configured params file must exist.
func mergeParamsFile(k *koanf.Koanf, path string) error {
	pk := koanf.New(".")

	err := pk.Load(file.Provider(path), yaml.Parser())
	if err != nil {
		return err
	}

	return k.MergeAt(pk, "generation.params")
}

// Location resolves the configured timezone. Empty means time.Local.
func (g GenerationConfig) Location() (*time.Location, error) {
	if g.Timezone == "" {
		return time.Local, nil
	}

	return time.LoadLocation(g.Timezone)
}

// HourlyConfig converts the loaded schedule into its domain form.
func (g GenerationConfig) HourlyConfig() (domain.HourlyConfig, error) {
	hourly, err := domain.ParseHourlyOverrides(g.Params.Hourly)
	if err != nil {
		return domain.HourlyConfig{}, err
	}

	cfg := domain.HourlyConfig{
		Default: g.Params.Global,
		Hourly:  hourly,
	}

	if err := cfg.Validate(); err != nil {
		return domain.HourlyConfig{}, err
	}

	return cfg, nil
}

// RequireAPIKey reports a missing credential. Commands that generate call it
// after Validate; serving stored quotes works without a key.
func (o OpenAIConfig) RequireAPIKey() error {
	if strings.TrimSpace(o.APIKey) == "" {
		return ErrMissingAPIKey
	}

	return nil
}
