package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHost           = "127.0.0.1"
	DefaultPort           = 8082
	DefaultScanServiceURL = "http://localhost:8000"
	DefaultScanTimeout    = 60 * time.Second
	DefaultIdleTTL        = 30 * time.Minute
	DefaultReapInterval   = time.Minute

	EnvPort           = "PORT"
	EnvHost           = "SCANVIEW_HOST"
	EnvScanServiceURL = "SCANVIEW_SCAN_SERVICE_URL"
)

// Config holds all settings of the front end.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	ScanService ScanServiceConfig `yaml:"scan_service"`
	Pages       PagesConfig       `yaml:"pages"`
	Debug       bool              `yaml:"debug"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// AllowedOrigins for CORS. Empty means the server's own localhost origins.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type ScanServiceConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// PagesConfig controls how long an untouched page is kept.
type PagesConfig struct {
	IdleTTL      time.Duration `yaml:"idle_ttl"`
	ReapInterval time.Duration `yaml:"reap_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		ScanService: ScanServiceConfig{
			URL:     DefaultScanServiceURL,
			Timeout: DefaultScanTimeout,
		},
		Pages: PagesConfig{
			IdleTTL:      DefaultIdleTTL,
			ReapInterval: DefaultReapInterval,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (optional when
// path is empty) and environment overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Server.Port = port
	}
	if v, ok := lookup(EnvHost); ok && v != "" {
		cfg.Server.Host = v
	}
	if v, ok := lookup(EnvScanServiceURL); ok && v != "" {
		cfg.ScanService.URL = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Host == "" {
		return errors.New("server.host is required")
	}

	u, err := url.Parse(c.ScanService.URL)
	if err != nil {
		return fmt.Errorf("scan_service.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scan_service.url must be http or https, got %q", c.ScanService.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("scan_service.url has no host: %q", c.ScanService.URL)
	}
	if c.ScanService.Timeout <= 0 {
		return fmt.Errorf("scan_service.timeout must be positive, got %s", c.ScanService.Timeout)
	}

	for _, origin := range c.Server.AllowedOrigins {
		if err := validateOrigin(origin); err != nil {
			return err
		}
	}

	if c.Pages.IdleTTL < 0 {
		return fmt.Errorf("pages.idle_ttl must not be negative, got %s", c.Pages.IdleTTL)
	}
	if c.Pages.IdleTTL > 0 && c.Pages.ReapInterval <= 0 {
		return fmt.Errorf("pages.reap_interval must be positive when idle_ttl is set, got %s", c.Pages.ReapInterval)
	}
	return nil
}

// validateOrigin accepts "*" or an http(s) origin with a host and no path.
func validateOrigin(origin string) error {
	if origin == "*" {
		return nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("server.allowed_origins: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server.allowed_origins entry must be \"*\" or an http(s) origin, got %q", origin)
	}
	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("server.allowed_origins entry must not have a path, got %q", origin)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Origins returns the CORS origins, defaulting to the server's localhost
// addresses.
func (c *Config) Origins() []string {
	if len(c.Server.AllowedOrigins) > 0 {
		return c.Server.AllowedOrigins
	}
	return []string{
		fmt.Sprintf("http://localhost:%d", c.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", c.Server.Port),
	}
}
