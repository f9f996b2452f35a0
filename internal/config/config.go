// SPDX-License-Identifier: MIT

// Package config loads and validates the service configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then BLOGICUM_* environment variables. Dynamic settings (log level, page
// size, session TTL, login throttling) can be hot-reloaded from the file at
// runtime, see Holder. Listener addresses and the global request-per-minute
// limit are fixed at startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the fully resolved runtime configuration.
type AppConfig struct {
	ListenAddr  string
	MetricsAddr string // empty disables the separate metrics listener
	DataDir     string
	DBPath      string
	ImagesDir   string
	PagesDir    string // optional directory with about.md / rules.md

	LogLevel   string
	LogService string

	PageSize       int
	MaxImageBytes  int64
	SessionTTL     time.Duration
	BcryptCost     int
	TrustedProxies string

	AllowedOrigins []string
	CSP            string

	RateLimitRPM   int // requests per minute per IP, 0 disables
	LoginRatePerIP float64
	LoginBurst     int

	Redis   RedisConfig
	Tracing TracingConfig
}

// RedisConfig holds the optional feed cache backend. An empty Addr disables
// caching entirely.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	FeedTTL  time.Duration
}

// TracingConfig holds OTLP tracing settings.
type TracingConfig struct {
	Enabled      bool
	ExporterType string // "http" or "grpc"
	Endpoint     string
	SamplingRate float64
}

// FileConfig is the YAML configuration file structure. All fields are
// optional; unset fields keep their current value.
type FileConfig struct {
	ListenAddr  string `yaml:"listenAddr,omitempty"`
	MetricsAddr string `yaml:"metricsAddr,omitempty"`
	DataDir     string `yaml:"dataDir,omitempty"`
	LogLevel    string `yaml:"logLevel,omitempty"`
	LogService  string `yaml:"logService,omitempty"`

	PageSize       int      `yaml:"pageSize,omitempty"`
	MaxImageMB     int      `yaml:"maxImageMB,omitempty"`
	SessionTTL     string   `yaml:"sessionTTL,omitempty"`
	TrustedProxies string   `yaml:"trustedProxies,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
	CSP            string   `yaml:"csp,omitempty"`
	RateLimitRPM   int      `yaml:"rateLimitRPM,omitempty"`
	LoginRatePerIP float64  `yaml:"loginRatePerIP,omitempty"`
	LoginBurst     int      `yaml:"loginBurst,omitempty"`

	Redis struct {
		Addr     string `yaml:"addr,omitempty"`
		Password string `yaml:"password,omitempty"`
		DB       int    `yaml:"db,omitempty"`
		FeedTTL  string `yaml:"feedTTL,omitempty"`
	} `yaml:"redis,omitempty"`

	Tracing struct {
		Enabled      *bool   `yaml:"enabled,omitempty"`
		ExporterType string  `yaml:"exporterType,omitempty"`
		Endpoint     string  `yaml:"endpoint,omitempty"`
		SamplingRate float64 `yaml:"samplingRate,omitempty"`
	} `yaml:"tracing,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		ListenAddr:     ":8000",
		MetricsAddr:    "",
		DataDir:        "./data",
		LogLevel:       "info",
		LogService:     "blogicum",
		PageSize:       10,
		MaxImageBytes:  10 << 20,
		SessionTTL:     24 * time.Hour,
		BcryptCost:     12,
		RateLimitRPM:   600,
		LoginRatePerIP: 0.5, // one attempt every 2s sustained
		LoginBurst:     5,
		Redis: RedisConfig{
			FeedTTL: 30 * time.Second,
		},
		Tracing: TracingConfig{
			ExporterType: "http",
			SamplingRate: 0.1,
		},
	}
}

// Load resolves the configuration from defaults, the optional YAML file at
// path (empty path skips the file layer) and environment variables.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()

	if path != "" {
		fc, err := readFile(path)
		if err != nil {
			return AppConfig{}, err
		}
		mergeFile(&cfg, fc)
	}

	mergeEnv(&cfg)
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func readFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc FileConfig
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &fc, nil
}

func mergeFile(cfg *AppConfig, fc *FileConfig) {
	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.MetricsAddr != "" {
		cfg.MetricsAddr = fc.MetricsAddr
	}
	if fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogService != "" {
		cfg.LogService = fc.LogService
	}
	if fc.PageSize > 0 {
		cfg.PageSize = fc.PageSize
	}
	if fc.MaxImageMB > 0 {
		cfg.MaxImageBytes = int64(fc.MaxImageMB) << 20
	}
	if fc.SessionTTL != "" {
		if d, err := time.ParseDuration(fc.SessionTTL); err == nil {
			cfg.SessionTTL = d
		}
	}
	if fc.TrustedProxies != "" {
		cfg.TrustedProxies = fc.TrustedProxies
	}
	if len(fc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.CSP != "" {
		cfg.CSP = fc.CSP
	}
	if fc.RateLimitRPM > 0 {
		cfg.RateLimitRPM = fc.RateLimitRPM
	}
	if fc.LoginRatePerIP > 0 {
		cfg.LoginRatePerIP = fc.LoginRatePerIP
	}
	if fc.LoginBurst > 0 {
		cfg.LoginBurst = fc.LoginBurst
	}
	if fc.Redis.Addr != "" {
		cfg.Redis.Addr = fc.Redis.Addr
		cfg.Redis.Password = fc.Redis.Password
		cfg.Redis.DB = fc.Redis.DB
	}
	if fc.Redis.FeedTTL != "" {
		if d, err := time.ParseDuration(fc.Redis.FeedTTL); err == nil {
			cfg.Redis.FeedTTL = d
		}
	}
	if fc.Tracing.Enabled != nil {
		cfg.Tracing.Enabled = *fc.Tracing.Enabled
	}
	if fc.Tracing.ExporterType != "" {
		cfg.Tracing.ExporterType = fc.Tracing.ExporterType
	}
	if fc.Tracing.Endpoint != "" {
		cfg.Tracing.Endpoint = fc.Tracing.Endpoint
	}
	if fc.Tracing.SamplingRate > 0 {
		cfg.Tracing.SamplingRate = fc.Tracing.SamplingRate
	}
}

func mergeEnv(cfg *AppConfig) {
	cfg.ListenAddr = ParseString("BLOGICUM_LISTEN", cfg.ListenAddr)
	cfg.MetricsAddr = ParseString("BLOGICUM_METRICS_LISTEN", cfg.MetricsAddr)
	cfg.DataDir = ParseString("BLOGICUM_DATA", cfg.DataDir)
	cfg.LogLevel = ParseString("BLOGICUM_LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = ParseString("BLOGICUM_LOG_SERVICE", cfg.LogService)
	cfg.PageSize = ParseInt("BLOGICUM_PAGE_SIZE", cfg.PageSize)
	cfg.SessionTTL = ParseDuration("BLOGICUM_SESSION_TTL", cfg.SessionTTL)
	cfg.BcryptCost = ParseInt("BLOGICUM_BCRYPT_COST", cfg.BcryptCost)
	cfg.TrustedProxies = ParseString("BLOGICUM_TRUSTED_PROXIES", cfg.TrustedProxies)
	cfg.CSP = ParseString("BLOGICUM_CSP", cfg.CSP)
	cfg.RateLimitRPM = ParseInt("BLOGICUM_RATE_LIMIT_RPM", cfg.RateLimitRPM)
	cfg.LoginRatePerIP = ParseFloat("BLOGICUM_LOGIN_RATE", cfg.LoginRatePerIP)
	cfg.LoginBurst = ParseInt("BLOGICUM_LOGIN_BURST", cfg.LoginBurst)

	if origins := ParseString("BLOGICUM_ALLOWED_ORIGINS", ""); origins != "" {
		parts := strings.Split(origins, ",")
		cfg.AllowedOrigins = cfg.AllowedOrigins[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, p)
			}
		}
	}

	cfg.Redis.Addr = ParseString("BLOGICUM_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = ParseString("BLOGICUM_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = ParseInt("BLOGICUM_REDIS_DB", cfg.Redis.DB)
	cfg.Redis.FeedTTL = ParseDuration("BLOGICUM_FEED_TTL", cfg.Redis.FeedTTL)

	cfg.Tracing.Enabled = ParseBool("BLOGICUM_TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.ExporterType = ParseString("BLOGICUM_TRACING_EXPORTER", cfg.Tracing.ExporterType)
	cfg.Tracing.Endpoint = ParseString("BLOGICUM_TRACING_ENDPOINT", cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = ParseFloat("BLOGICUM_TRACING_SAMPLING", cfg.Tracing.SamplingRate)
}

func (c *AppConfig) resolvePaths() {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "blogicum.sqlite")
	}
	if c.ImagesDir == "" {
		c.ImagesDir = filepath.Join(c.DataDir, "posts_images")
	}
	if c.PagesDir == "" {
		c.PagesDir = filepath.Join(c.DataDir, "pages")
	}
}

// Validate checks the configuration for invariant violations.
func (c *AppConfig) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("config: page size must be positive, got %d", c.PageSize)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: session TTL must be positive, got %s", c.SessionTTL)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("config: bcrypt cost %d out of range [4,31]", c.BcryptCost)
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("config: max image size must be positive")
	}
	if c.Tracing.Enabled {
		switch c.Tracing.ExporterType {
		case "http", "grpc":
		default:
			return fmt.Errorf("config: unsupported tracing exporter %q", c.Tracing.ExporterType)
		}
		if c.Tracing.Endpoint == "" {
			return fmt.Errorf("config: tracing enabled without endpoint")
		}
	}
	return nil
}
