package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/five82/vws/vws"
)

// Keys is an access key / secret key pair plus the endpoint it is used with.
type Keys struct {
	AccessKey string
	SecretKey string
	BaseURL   string
}

// Config holds everything vwsctl needs to build clients.
type Config struct {
	Server Keys // management API
	Client Keys // query API

	Timeout        time.Duration
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	SkipVerify     bool
	RateLimit      float64
	RateBurst      int

	PollInterval time.Duration
	WaitTimeout  time.Duration
	MaxAttempts  int

	LogLevel string
	Theme    string
}

const (
	defaultConfigPath = "~/.config/vws/config.toml"
	defaultLogLevel   = "info"
	defaultTheme      = "Nightfox"
)

// Environment variables that override file values.
const (
	EnvServerAccessKey = "VWS_SERVER_ACCESS_KEY"
	EnvServerSecretKey = "VWS_SERVER_SECRET_KEY"
	EnvClientAccessKey = "VWS_CLIENT_ACCESS_KEY"
	EnvClientSecretKey = "VWS_CLIENT_SECRET_KEY"
	EnvBaseURL         = "VWS_BASE_URL"
	EnvCloudRecoURL    = "VWQ_BASE_URL"
)

type rawKeys struct {
	AccessKey string `toml:"access_key" yaml:"access_key"`
	SecretKey string `toml:"secret_key" yaml:"secret_key"`
	BaseURL   string `toml:"base_url" yaml:"base_url"`
}

type rawConfig struct {
	LogLevel string  `toml:"log_level" yaml:"log_level"`
	Theme    string  `toml:"theme" yaml:"theme"`
	Server   rawKeys `toml:"server" yaml:"server"`
	Client   rawKeys `toml:"client" yaml:"client"`
	HTTP     struct {
		Timeout        string  `toml:"timeout" yaml:"timeout"`
		ConnectTimeout string  `toml:"connect_timeout" yaml:"connect_timeout"`
		ReadTimeout    string  `toml:"read_timeout" yaml:"read_timeout"`
		SkipVerify     bool    `toml:"skip_verify" yaml:"skip_verify"`
		RateLimit      float64 `toml:"rate_limit" yaml:"rate_limit"`
		RateBurst      int     `toml:"rate_burst" yaml:"rate_burst"`
	} `toml:"http" yaml:"http"`
	Wait struct {
		PollInterval string `toml:"poll_interval" yaml:"poll_interval"`
		Timeout      string `toml:"timeout" yaml:"timeout"`
		MaxAttempts  int    `toml:"max_attempts" yaml:"max_attempts"`
	} `toml:"wait" yaml:"wait"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server:       Keys{BaseURL: vws.DefaultBaseURL},
		Client:       Keys{BaseURL: vws.DefaultCloudRecoURL},
		Timeout:      vws.DefaultTimeout,
		PollInterval: vws.DefaultPollInterval,
		WaitTimeout:  vws.DefaultWaitTimeout,
		LogLevel:     defaultLogLevel,
		Theme:        defaultTheme,
	}
}

// Load reads the config file at path (or the default location), falling back
// to defaults when it is missing, then applies environment overrides. Files
// ending in .yaml or .yml are parsed as YAML, anything else as TOML.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		applyEnv(&cfg)
		return cfg, nil
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &raw)
	default:
		err = toml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.merge(raw); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func (c *Config) merge(raw rawConfig) error {
	c.Server = mergeKeys(c.Server, raw.Server)
	c.Client = mergeKeys(c.Client, raw.Client)

	durations := []struct {
		field string
		value string
		dest  *time.Duration
	}{
		{"http.timeout", raw.HTTP.Timeout, &c.Timeout},
		{"http.connect_timeout", raw.HTTP.ConnectTimeout, &c.ConnectTimeout},
		{"http.read_timeout", raw.HTTP.ReadTimeout, &c.ReadTimeout},
		{"wait.poll_interval", raw.Wait.PollInterval, &c.PollInterval},
		{"wait.timeout", raw.Wait.Timeout, &c.WaitTimeout},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.value) == "" {
			continue
		}
		parsed, err := parseDuration(d.value)
		if err != nil {
			return fmt.Errorf("parse config: %s: %w", d.field, err)
		}
		*d.dest = parsed
	}
	if strings.TrimSpace(raw.HTTP.Timeout) == "" && (c.ConnectTimeout > 0 || c.ReadTimeout > 0) {
		c.Timeout = 0
	}

	c.SkipVerify = raw.HTTP.SkipVerify
	if raw.HTTP.RateLimit < 0 {
		return fmt.Errorf("parse config: http.rate_limit must not be negative")
	}
	c.RateLimit = raw.HTTP.RateLimit
	c.RateBurst = raw.HTTP.RateBurst

	if raw.Wait.MaxAttempts < 0 {
		return fmt.Errorf("parse config: wait.max_attempts must not be negative")
	}
	c.MaxAttempts = raw.Wait.MaxAttempts

	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		c.LogLevel = strings.ToLower(level)
	}
	if theme := strings.TrimSpace(raw.Theme); theme != "" {
		c.Theme = theme
	}
	return nil
}

func mergeKeys(dst Keys, raw rawKeys) Keys {
	dst.AccessKey = strings.TrimSpace(raw.AccessKey)
	dst.SecretKey = strings.TrimSpace(raw.SecretKey)
	if base := strings.TrimSpace(raw.BaseURL); base != "" {
		dst.BaseURL = base
	}
	return dst
}

// parseDuration accepts Go duration strings and plain numbers of seconds.
func parseDuration(value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if secs, err := strconv.ParseFloat(trimmed, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative duration %q", value)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", value)
	}
	return d, nil
}

func applyEnv(c *Config) {
	overrides := []struct {
		name string
		dest *string
	}{
		{EnvServerAccessKey, &c.Server.AccessKey},
		{EnvServerSecretKey, &c.Server.SecretKey},
		{EnvClientAccessKey, &c.Client.AccessKey},
		{EnvClientSecretKey, &c.Client.SecretKey},
		{EnvBaseURL, &c.Server.BaseURL},
		{EnvCloudRecoURL, &c.Client.BaseURL},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.name); ok && strings.TrimSpace(v) != "" {
			*o.dest = strings.TrimSpace(v)
		}
	}
}

// RequireServerKeys reports a missing management key pair.
func (c Config) RequireServerKeys() error {
	if c.Server.AccessKey == "" || c.Server.SecretKey == "" {
		return fmt.Errorf("server keys missing: set %s and %s or [server] in the config file", EnvServerAccessKey, EnvServerSecretKey)
	}
	return nil
}

// RequireClientKeys reports a missing query key pair.
func (c Config) RequireClientKeys() error {
	if c.Client.AccessKey == "" || c.Client.SecretKey == "" {
		return fmt.Errorf("client keys missing: set %s and %s or [client] in the config file", EnvClientAccessKey, EnvClientSecretKey)
	}
	return nil
}

func (c Config) clientConfig(keys Keys) vws.Config {
	return vws.Config{
		AccessKey: keys.AccessKey,
		SecretKey: keys.SecretKey,
		BaseURL:   keys.BaseURL,
		Timeouts: vws.Timeouts{
			Total:   c.Timeout,
			Connect: c.ConnectTimeout,
			Read:    c.ReadTimeout,
		},
		SkipVerify: c.SkipVerify,
		RateLimit:  vws.RateLimit{Limit: c.RateLimit, Burst: c.RateBurst},
	}
}

// ManagementConfig returns the client config for the management API.
func (c Config) ManagementConfig() vws.Config { return c.clientConfig(c.Server) }

// CloudRecoConfig returns the client config for the query API.
func (c Config) CloudRecoConfig() vws.Config { return c.clientConfig(c.Client) }

// WaitOptions returns the processing-wait bounds.
func (c Config) WaitOptions() vws.WaitOptions {
	return vws.WaitOptions{
		PollInterval: c.PollInterval,
		Timeout:      c.WaitTimeout,
		MaxAttempts:  c.MaxAttempts,
	}
}

// DefaultPath returns the default config file location, unexpanded.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
