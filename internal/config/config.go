package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultPoolSize matches the burst size the tool was first used with
	// against a load balancer: 1000 slots, 999 requests per wave.
	DefaultPoolSize = 1000

	// DefaultInterval is the pause between waves.
	DefaultInterval = 1 * time.Second

	// DefaultTimeout bounds a single request. Without it a hung target would
	// hold a wave open forever, because the driver waits for every request.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies waveload traffic in target access logs.
	DefaultUserAgent = "waveload/1.0 (+https://github.com/nao1215/waveload)"

	// AppName is the application name used for XDG directory paths.
	AppName = "waveload"
)

// Config holds all options for a load run.
// It is populated from CLI flags and the profile file, validated once,
// and then passed by value to the driver; nothing mutates it afterwards.
type Config struct {
	// Target is the URL every request is sent to.
	Target string

	// PoolSize is the worker pool size. Each wave sends PoolSize-1 requests
	// and never has more than PoolSize in flight.
	PoolSize int

	// Interval is the sleep between the end of one wave and the next.
	Interval time.Duration

	// Timeout is the per-request timeout applied by the HTTP client.
	Timeout time.Duration

	// MaxWaves stops the run after this many waves. Zero means no limit.
	MaxWaves int

	// Headers are added to every request.
	Headers map[string]string

	// UserAgent is sent with every request.
	UserAgent string

	// ProxyAddress routes requests through a SOCKS5 proxy ("host:port").
	// Empty means direct connections.
	ProxyAddress string

	// MetricsAddress serves Prometheus metrics when set (e.g. ":9090").
	MetricsAddress string

	// Profile is the name of the profile loaded from the config file.
	Profile string

	// ConfigFilePath is the path to the profile file. Empty means search
	// the current directory and then the home directory.
	ConfigFilePath string

	// SaveHistory records runs and waves in the SQLite history database.
	SaveHistory bool

	// DBDir is the directory of the history database.
	DBDir string

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		PoolSize:    DefaultPoolSize,
		Interval:    DefaultInterval,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		SaveHistory: true,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for waveload.
// On Linux: ~/.local/share/waveload
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for waveload.
// On Linux: ~/.config/waveload
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.Target == "" {
		return ErrNoTarget
	}
	if err := validateTarget(c.Target); err != nil {
		return err
	}
	if c.PoolSize <= 0 {
		return ErrInvalidPoolSize
	}
	if c.Interval < 0 {
		return ErrInvalidInterval
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxWaves < 0 {
		return ErrInvalidMaxWaves
	}
	if c.SaveHistory && c.DBDir == "" {
		return ErrNoDBDir
	}
	return nil
}

// ApplyProfile overlays the non-zero values of p onto c.
// Values already set explicitly on the command line should be applied
// after the profile, so the caller decides the precedence.
func (c *Config) ApplyProfile(p Profile) {
	if p.Target != "" {
		c.Target = p.Target
	}
	if p.Pool > 0 {
		c.PoolSize = p.Pool
	}
	if p.Interval > 0 {
		c.Interval = p.Interval
	}
	if p.Timeout > 0 {
		c.Timeout = p.Timeout
	}
	if p.MaxWaves > 0 {
		c.MaxWaves = p.MaxWaves
	}
	if p.UserAgent != "" {
		c.UserAgent = p.UserAgent
	}
	if p.Proxy != "" {
		c.ProxyAddress = p.Proxy
	}
	if len(p.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(p.Headers))
		}
		for k, v := range p.Headers {
			c.Headers[k] = v
		}
	}
}
