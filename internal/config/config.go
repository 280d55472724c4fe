package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `json:"server"`
	Redis    RedisConfig    `json:"redis"`
	Backend  BackendConfig  `json:"backend"`
	Upload   UploadConfig   `json:"upload"`
	Review   ReviewConfig   `json:"review"`
	Download DownloadConfig `json:"download"`
	Log      LogConfig      `json:"log"`
	Security SecurityConfig `json:"security"`
	Browser  BrowserConfig  `json:"browser"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int    `json:"port"`
	Environment  string `json:"environment"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	IdleTimeout  int    `json:"idle_timeout"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	Password     string        `json:"password"`
	DB           int           `json:"db"`
	PoolSize     int           `json:"pool_size"`
	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	CacheTTL     time.Duration `json:"cache_ttl"`
}

// BackendConfig holds the extraction backend configuration
type BackendConfig struct {
	BaseURL         string        `json:"base_url"`
	RequestTimeout  time.Duration `json:"request_timeout"`
	GenerateTimeout time.Duration `json:"generate_timeout"`
	Breaker         BreakerConfig `json:"breaker"`
}

// BreakerConfig configures the circuit breaker in front of the backend.
// Calls are never retried; the breaker only fails fast while the backend is down.
type BreakerConfig struct {
	Enabled         bool          `json:"enabled"`
	MinRequests     uint32        `json:"min_requests"`
	FailureRatio    float64       `json:"failure_ratio"`
	OpenTimeout     time.Duration `json:"open_timeout"`
	HalfOpenMaxCall uint32        `json:"half_open_max_calls"`
}

// UploadConfig holds upload wizard limits
type UploadConfig struct {
	MaxFileSize    int64         `json:"max_file_size"`
	WizardTTL      time.Duration `json:"wizard_ttl"`
	MaxMultipartMB int64         `json:"max_multipart_mb"`
}

// ReviewConfig holds the debounce settings for field edits
type ReviewConfig struct {
	DebounceDelay   time.Duration `json:"debounce_delay"`
	DebounceMaxWait time.Duration `json:"debounce_max_wait"`
}

// DownloadConfig holds download settings
type DownloadConfig struct {
	Dir         string `json:"dir"`
	MinPDFBytes int    `json:"min_pdf_bytes"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `json:"rate_limit"`
	CORS      CORSConfig      `json:"cors"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute"`
	BurstSize         int           `json:"burst_size"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// BrowserConfig holds the headless Chrome settings used to render previews
type BrowserConfig struct {
	Enabled       bool          `json:"enabled"`
	Headless      bool          `json:"headless"`
	RenderTimeout time.Duration `json:"render_timeout"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvAsInt("PORT", 8080),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 60),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 60),
			IdleTimeout:  getEnvAsInt("IDLE_TIMEOUT", 120),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  time.Duration(getEnvAsInt("REDIS_DIAL_TIMEOUT", 5)) * time.Second,
			ReadTimeout:  time.Duration(getEnvAsInt("REDIS_READ_TIMEOUT", 3)) * time.Second,
			WriteTimeout: time.Duration(getEnvAsInt("REDIS_WRITE_TIMEOUT", 3)) * time.Second,
			CacheTTL:     time.Duration(getEnvAsInt("REDIS_CACHE_TTL", 3600)) * time.Second,
		},
		Backend: BackendConfig{
			BaseURL:         strings.TrimRight(getEnv("BACKEND_URL", "http://127.0.0.1:5000"), "/"),
			RequestTimeout:  getEnvAsDuration("BACKEND_REQUEST_TIMEOUT", 120*time.Second),
			GenerateTimeout: getEnvAsDuration("BACKEND_GENERATE_TIMEOUT", 30*time.Second),
			Breaker: BreakerConfig{
				Enabled:         getEnvAsBool("BACKEND_BREAKER_ENABLED", true),
				MinRequests:     uint32(getEnvAsInt("BACKEND_BREAKER_MIN_REQUESTS", 5)),
				FailureRatio:    getEnvAsFloat("BACKEND_BREAKER_FAILURE_RATIO", 0.6),
				OpenTimeout:     getEnvAsDuration("BACKEND_BREAKER_OPEN_TIMEOUT", 30*time.Second),
				HalfOpenMaxCall: uint32(getEnvAsInt("BACKEND_BREAKER_HALF_OPEN_MAX", 1)),
			},
		},
		Upload: UploadConfig{
			MaxFileSize:    int64(getEnvAsInt("UPLOAD_MAX_FILE_SIZE", 10*1024*1024)),
			WizardTTL:      getEnvAsDuration("UPLOAD_WIZARD_TTL", time.Hour),
			MaxMultipartMB: int64(getEnvAsInt("UPLOAD_MAX_MULTIPART_MB", 32)),
		},
		Review: ReviewConfig{
			DebounceDelay:   getEnvAsDuration("REVIEW_DEBOUNCE_DELAY", time.Second),
			DebounceMaxWait: getEnvAsDuration("REVIEW_DEBOUNCE_MAX_WAIT", 3*time.Second),
		},
		Download: DownloadConfig{
			Dir:         getEnv("DOWNLOAD_DIR", "./downloads"),
			MinPDFBytes: getEnvAsInt("DOWNLOAD_MIN_PDF_BYTES", 100),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 300),
				BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 30),
				CleanupInterval:   time.Duration(getEnvAsInt("RATE_LIMIT_CLEANUP", 60)) * time.Second,
			},
			CORS: CORSConfig{
				AllowedOrigins:   getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
				AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS"},
				AllowedHeaders:   []string{"*"},
				AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			},
		},
		Browser: BrowserConfig{
			Enabled:       getEnvAsBool("BROWSER_ENABLED", true),
			Headless:      getEnvAsBool("BROWSER_HEADLESS", true),
			RenderTimeout: time.Duration(getEnvAsInt("BROWSER_RENDER_TIMEOUT", 30)) * time.Second,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the services cannot run with
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute URL, got %q", c.Backend.BaseURL)
	}
	if c.Backend.GenerateTimeout <= 0 {
		return fmt.Errorf("BACKEND_GENERATE_TIMEOUT must be positive")
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.Review.DebounceDelay <= 0 {
		return fmt.Errorf("REVIEW_DEBOUNCE_DELAY must be positive")
	}
	if c.Review.DebounceMaxWait < c.Review.DebounceDelay {
		return fmt.Errorf("REVIEW_DEBOUNCE_MAX_WAIT must not be shorter than REVIEW_DEBOUNCE_DELAY")
	}
	if c.Backend.Breaker.FailureRatio <= 0 || c.Backend.Breaker.FailureRatio > 1 {
		return fmt.Errorf("BACKEND_BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("1500ms") or plain seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
