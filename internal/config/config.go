// Package config provides application configuration management with support
// for command-line flags, environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Ramekin RamekinConfig
	Server  ServerConfig
	Capture CaptureConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds local storage configuration.
type DataConfig struct {
	// Path is the badger database directory (default: ~/.ramekin/data).
	Path string
}

// RamekinConfig describes the backend the client talks to.
type RamekinConfig struct {
	APIURL  string        // Backend origin, e.g. http://localhost:3000
	Timeout time.Duration // Per-request timeout (default: 30s)
	RPS     float64       // Outbound requests per second (default: 5)
	Burst   int           // Outbound burst (default: 10)
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	PublicURL      string // Origin the capture page and scripts are served from
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string // CORS origins for the relay API (default: *)
}

// CaptureConfig tunes the capture handshake.
type CaptureConfig struct {
	PollInterval time.Duration // Job status poll interval (default: 500ms)
	SessionTTL   time.Duration // Idle relay sessions are dropped after this (default: 15m)
	MaxHTMLBytes int64         // Largest snapshot accepted by the relay (default: 10MiB)
}

// flagValues holds the raw string value of every recognised flag.
type flagValues struct {
	env, logLevel, dataPath                         string
	apiURL, apiTimeout, apiRPS, apiBurst            string
	publicURL, port, readTimeout, writeTimeout      string
	idleTimeout, corsOrigins                        string
	pollInterval, sessionTTL, maxHTMLBytes, envFile string
}

func (v *flagValues) register(fs *flag.FlagSet) {
	fs.StringVar(&v.env, "env", "", "Environment (development, staging, production)")
	fs.StringVar(&v.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&v.dataPath, "data-path", "", "Directory for the local database")
	fs.StringVar(&v.apiURL, "api-url", "", "Ramekin backend URL")
	fs.StringVar(&v.apiTimeout, "api-timeout", "", "Backend request timeout (default: 30s)")
	fs.StringVar(&v.apiRPS, "api-rps", "", "Backend requests per second (default: 5)")
	fs.StringVar(&v.apiBurst, "api-burst", "", "Backend request burst (default: 10)")
	fs.StringVar(&v.publicURL, "public-url", "", "Public URL of this server")
	fs.StringVar(&v.port, "port", "", "Server port (default: 8090)")
	fs.StringVar(&v.readTimeout, "read-timeout", "", "HTTP read timeout (default: 15s)")
	fs.StringVar(&v.writeTimeout, "write-timeout", "", "HTTP write timeout (default: 0, SSE streams stay open)")
	fs.StringVar(&v.idleTimeout, "idle-timeout", "", "HTTP idle timeout (default: 60s)")
	fs.StringVar(&v.corsOrigins, "cors-origins", "", "Comma-separated CORS origins (default: *)")
	fs.StringVar(&v.pollInterval, "poll-interval", "", "Capture job poll interval (default: 500ms)")
	fs.StringVar(&v.sessionTTL, "session-ttl", "", "Idle capture session lifetime (default: 15m)")
	fs.StringVar(&v.maxHTMLBytes, "max-html-bytes", "", "Largest accepted page snapshot in bytes")
	fs.StringVar(&v.envFile, "env-file", ".env", "Path to .env file")
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	var v flagValues
	fs := flag.NewFlagSet("ramekin-web", flag.ContinueOnError)
	v.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(v.envFile)

	return build(v)
}

// FromEnv loads configuration from the environment and defaults only. The
// CLI uses it and applies its own flags on top.
func FromEnv() (*Config, error) {
	_ = loadEnvFile(".env")
	return build(flagValues{})
}

func build(v flagValues) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(v.env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(v.logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			Path: getConfigValue(v.dataPath, "DATA_PATH", ""),
		},
		Ramekin: RamekinConfig{
			APIURL: strings.TrimRight(getConfigValue(v.apiURL, "RAMEKIN_API_URL", "http://localhost:3000"), "/"),
			Burst:  getIntConfigValue(v.apiBurst, "API_BURST", 10),
		},
		Server: ServerConfig{
			PublicURL:      strings.TrimRight(getConfigValue(v.publicURL, "PUBLIC_URL", ""), "/"),
			Port:           getConfigValue(v.port, "SERVER_PORT", "8090"),
			AllowedOrigins: splitList(getConfigValue(v.corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
	}

	rps, err := strconv.ParseFloat(getConfigValue(v.apiRPS, "API_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid API_RPS: %w", err)
	}
	cfg.Ramekin.RPS = rps

	maxHTML, err := strconv.ParseInt(getConfigValue(v.maxHTMLBytes, "CAPTURE_MAX_HTML_BYTES", "10485760"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CAPTURE_MAX_HTML_BYTES: %w", err)
	}
	cfg.Capture.MaxHTMLBytes = maxHTML

	durations := []struct {
		dest     *time.Duration
		flag     string
		env      string
		fallback string
	}{
		{&cfg.Ramekin.Timeout, v.apiTimeout, "RAMEKIN_API_TIMEOUT", "30s"},
		{&cfg.Server.ReadTimeout, v.readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, v.writeTimeout, "SERVER_WRITE_TIMEOUT", "0s"},
		{&cfg.Server.IdleTimeout, v.idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Capture.PollInterval, v.pollInterval, "CAPTURE_POLL_INTERVAL", "500ms"},
		{&cfg.Capture.SessionTTL, v.sessionTTL, "CAPTURE_SESSION_TTL", "15m"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.env, d.fallback)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.env, raw, err)
		}
		*d.dest = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = "http://localhost:" + cfg.Server.Port
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.Path == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	for name, raw := range map[string]string{"RAMEKIN_API_URL": c.Ramekin.APIURL, "PUBLIC_URL": c.Server.PublicURL} {
		if err := validateOrigin(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if c.Capture.PollInterval <= 0 {
		return errors.New("capture poll interval must be positive")
	}
	if c.Ramekin.RPS <= 0 || c.Ramekin.Burst <= 0 {
		return errors.New("API_RPS and API_BURST must be positive")
	}

	return nil
}

// PublicOrigin returns scheme://host[:port] of the public URL.
func (c *Config) PublicOrigin() string {
	u, err := url.Parse(c.Server.PublicURL)
	if err != nil {
		return c.Server.PublicURL
	}
	return u.Scheme + "://" + u.Host
}

func validateOrigin(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Data.Path, filepath.Join(homeDir, ".ramekin", "data"))
	if err != nil {
		return err
	}
	c.Data.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Existing environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
