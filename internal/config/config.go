// Package config loads application settings from environment variables,
// applying defaults, normalization and validation in one place. Nothing
// else in the codebase reads the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings. An empty
// origin list means allow-all.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-header settings.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry tracing settings. Each field maps
// to the OTEL_* environment variable of the same name.
type OTELConfig struct {
	Enabled     bool
	Endpoint    string  // OTLP gRPC collector address, host:port
	Insecure    bool    // plaintext gRPC when true
	ServiceName string  // service.name resource attribute
	SampleRatio float64 // trace sampling ratio, 0..1
}

// Config holds every runtime setting of the registry service.
type Config struct {
	// HTTP server.
	Port              string        // listen port, no colon
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug, release or test

	// Logging and docs.
	LogLevel       string // zerolog level name
	LogPretty      bool   // human-readable console output
	SwaggerEnabled bool
	APIBasePath    string // prefix for all API routes, e.g. /api/v1

	// Registry behavior.
	DBPath      string // SQLite file path
	DaysToStale int    // lost/found registrations older than this are stale

	// Outbound mail service.
	MailServiceURL string
	MailTimeout    time.Duration

	// Per-client rate limiting.
	RateRPS   float64
	RateBurst int

	CORS     CORSConfig
	Security SecurityConfig
	OTEL     OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
// Meant for main(); everything else should take a Config value.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the environment, fills defaults, normalizes a few values,
// and validates the result before returning it.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		DBPath:      getenv("DB_PATH", "pets.db"),
		DaysToStale: getint("DAYS_TO_STALE_REGISTER", 30),

		MailServiceURL: getenv("MAIL_SERVICE_URL", "http://localhost:8025"),
		MailTimeout:    getdur("MAIL_TIMEOUT", 10*time.Second),

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-pet-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// Normalization before validation: accepted aliases and unknown gin
	// modes collapse to their canonical values.
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	checks := []struct {
		bad bool
		msg string
	}{
		{!validLogLevel(cfg.LogLevel), "LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"},
		{strings.TrimSpace(cfg.Port) == "", "PORT must not be empty"},
		{cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0,
			"timeouts must be positive durations"},
		{cfg.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0"},
		{strings.TrimSpace(cfg.DBPath) == "", "DB_PATH must not be empty"},
		{cfg.DaysToStale < 1, "DAYS_TO_STALE_REGISTER must be >= 1"},
		{strings.TrimSpace(cfg.MailServiceURL) == "", "MAIL_SERVICE_URL must not be empty"},
		{cfg.MailTimeout <= 0, "MAIL_TIMEOUT must be a positive duration"},
		{cfg.RateRPS < 0, "RATE_RPS must be >= 0"},
		{cfg.RateBurst < 1, "RATE_BURST must be >= 1"},
		{cfg.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0"},
		{cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]"},
	}
	for _, c := range checks {
		if c.bad {
			return errors.New(c.msg)
		}
	}
	return nil
}

func validLogLevel(lvl string) bool {
	switch lvl {
	case "debug", "info", "warn", "error", "fatal", "panic":
		return true
	}
	return false
}

// ---- env parsing helpers ----
//
// Each helper treats unset, empty, and unparsable values as "use the
// default"; a typo in the environment never crashes startup, validation
// catches genuinely unusable results instead.

func getenv(k, def string) string {
	if v, found := os.LookupEnv(k); found && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, found := os.LookupEnv(k); found && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, found := os.LookupEnv(k); found && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, found := os.LookupEnv(k); found && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, found := os.LookupEnv(k); found && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures a leading '/' and strips any trailing '/'
// (except for the bare root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
