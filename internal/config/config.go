package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eniz1806/ecsizer/internal/sizing"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

type ServerConfig struct {
	Address             string          `yaml:"address"`
	Port                int             `yaml:"port"`
	ShutdownTimeoutSecs int             `yaml:"shutdown_timeout_secs"`
	TLS                 TLSConfig       `yaml:"tls"`
	AutoTLS             AutoTLSConfig   `yaml:"auto_tls"`
	RateLimit           RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled        bool    `yaml:"enabled"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	BurstSize      int     `yaml:"burst_size"`
}

type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// AutoTLSConfig holds auto-TLS settings.
type AutoTLSConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Domains    []string `yaml:"domains"`
	CacheDir   string   `yaml:"cache_dir"`
	SelfSigned bool     `yaml:"self_signed"`
}

type LoggingConfig struct {
	Level     string `yaml:"level"` // debug, info, warn, error
	AccessLog bool   `yaml:"access_log"`
}

// DefaultsConfig pre-fills the calculator form when a field is not supplied.
type DefaultsConfig struct {
	FileSizeMB        float64 `yaml:"file_size_mb"`
	Nodes             int     `yaml:"nodes"`
	DrivesPerNode     int     `yaml:"drives_per_node"`
	ReplicationFactor int     `yaml:"replication_factor"`
}

// Request returns the default form as a sizing request.
func (d DefaultsConfig) Request() sizing.Request {
	return sizing.Request{
		FileSizeMB: d.FileSizeMB,
		Cluster: sizing.ClusterConfig{
			NodeCount:     d.Nodes,
			DrivesPerNode: d.DrivesPerNode,
		},
		Replication: sizing.ReplicationConfig{Factor: d.ReplicationFactor},
	}
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:             "0.0.0.0",
			Port:                9090,
			ShutdownTimeoutSecs: 30,
			RateLimit: RateLimitConfig{
				RequestsPerSec: 50,
				BurstSize:      100,
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Defaults: DefaultsConfig{
			FileSizeMB:        sizing.DefaultFileSizeMB,
			Nodes:             sizing.DefaultNodes,
			DrivesPerNode:     sizing.DefaultDrivesPerNode,
			ReplicationFactor: sizing.DefaultReplicationFactor,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the form defaults against the calculator's input limits.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Server.TLS.Enabled && (c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "") {
		return fmt.Errorf("tls enabled but cert_file or key_file is empty")
	}
	if c.Server.TLS.Enabled && c.Server.AutoTLS.Enabled {
		return fmt.Errorf("tls and auto_tls are mutually exclusive")
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerSec <= 0 {
		return fmt.Errorf("rate_limit.requests_per_sec must be positive")
	}
	req := c.Defaults.Request()
	req.Replication.Enabled = true
	return req.Validate()
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
