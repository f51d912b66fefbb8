package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	API       APIConfig
	Session   SessionConfig
	Logging   LoggingConfig
	Console   ConsoleConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
}

// APIConfig describes the remote ProjectHub backend
type APIConfig struct {
	// BaseURL is the backend root, e.g. https://api.projecthub.example.com
	BaseURL string
	// Timeout is the per-request timeout (seconds)
	Timeout int
	// WithCredentials sends cookies held by the client's jar on every request
	WithCredentials bool
	// ExemptPaths lists path fragments whose 401 responses are returned to the
	// caller instead of ending the session
	ExemptPaths []string
}

// SessionConfig controls where the auth token and user profile are kept
type SessionConfig struct {
	// Mode is "file" or "memory"
	Mode string
	// Path is the session file location when Mode is "file"
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// ConsoleConfig holds settings for the local console gateway
type ConsoleConfig struct {
	// Host is the listen interface; empty means loopback only
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	// RefreshCron schedules the session keep-alive job; empty disables it
	RefreshCron string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
}

// RateLimitConfig holds rate limiting configuration for the console gateway
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	WhitelistPaths    []string
}

// TimeoutDuration returns the API request timeout as duration
func (a *APIConfig) TimeoutDuration() time.Duration {
	return time.Duration(a.Timeout) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (c *ConsoleConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (c *ConsoleConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

// Addr returns the listen address for the console gateway
func (c *ConsoleConfig) Addr() string {
	host := c.Host
	if host == "" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(c.Port))
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if home := homeDir(); home != "" {
		v.AddConfigPath(filepath.Join(home, ".projecthub"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if url := v.GetString("PROJECTHUB_API_URL"); url != "" {
		cfg.API.BaseURL = url
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings that have no sensible fallback
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.baseURL is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.baseURL must start with http:// or https://, got %q", c.API.BaseURL)
	}
	switch c.Session.Mode {
	case "file", "memory":
	default:
		return fmt.Errorf("unsupported session mode: %s", c.Session.Mode)
	}
	if c.Session.Mode == "file" && c.Session.Path == "" {
		return fmt.Errorf("session.path is required when session.mode is file")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "ProjectHub Console")
	v.SetDefault("app.environment", "development")

	// API defaults
	v.SetDefault("api.baseURL", "http://localhost:8080")
	v.SetDefault("api.timeout", 30)
	v.SetDefault("api.withCredentials", true)
	v.SetDefault("api.exemptPaths", []string{"verification", "verify-code", "password/reset"})

	// Session defaults
	v.SetDefault("session.mode", "file")
	if home := homeDir(); home != "" {
		v.SetDefault("session.path", filepath.Join(home, ".projecthub", "session.json"))
	} else {
		v.SetDefault("session.path", ".projecthub-session.json")
	}

	// Logging defaults
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	// Console gateway defaults
	v.SetDefault("console.host", "127.0.0.1")
	v.SetDefault("console.port", 3000)
	v.SetDefault("console.readTimeout", 30)
	v.SetDefault("console.writeTimeout", 60)
	v.SetDefault("console.refreshCron", "")

	// CORS defaults; an empty origin list admits same-origin requests only
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/metrics"})
}
