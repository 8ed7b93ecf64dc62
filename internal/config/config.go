// Package config handles loading and validating Herald configuration.
package config

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} placeholders in config values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ErrConfigFileNotFound is returned by Load when the specified config file does not exist.
var ErrConfigFileNotFound = errors.New("config file not found")

// Config is the top-level Herald configuration.
type Config struct {
	LogLevel    string       `yaml:"log_level"`
	LogFormat   string       `yaml:"log_format"`
	LogFile     string       `yaml:"log_file"`
	LogRotation LogRotation  `yaml:"log_rotation"`
	Timeout     Duration     `yaml:"timeout"`
	Concurrency int          `yaml:"concurrency"`
	Email       *EmailConfig `yaml:"email,omitempty"`
	SMS         *SMSConfig   `yaml:"sms,omitempty"`
	Push        *PushConfig  `yaml:"push,omitempty"`
}

// LogRotation controls rotation of LogFile.
type LogRotation struct {
	MaxSizeMB  int `yaml:"max_size_mb"`
	MaxBackups int `yaml:"max_backups"`
	MaxAgeDays int `yaml:"max_age_days"`
}

// EmailConfig binds the email provider to one recipient.
type EmailConfig struct {
	Address string     `yaml:"address"`
	Subject string     `yaml:"subject"`
	SMTP    SMTPConfig `yaml:"smtp"`
}

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	From       string `yaml:"from"`
	Encryption string `yaml:"encryption"` // "none", "starttls", "ssl_tls"
}

// SMSConfig binds the sms provider to one phone number.
type SMSConfig struct {
	PhoneNumber string        `yaml:"phone_number"`
	Gateway     GatewayConfig `yaml:"gateway"`
}

// GatewayConfig describes an HTTP SMS gateway.
type GatewayConfig struct {
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// PushConfig binds the push_notification provider to one user.
type PushConfig struct {
	UserID string     `yaml:"user_id"`
	Ntfy   NtfyConfig `yaml:"ntfy"`
}

// NtfyConfig describes the ntfy server used for push delivery.
type NtfyConfig struct {
	URL         string `yaml:"url"`
	TopicPrefix string `yaml:"topic_prefix"`
	Token       string `yaml:"token"`
}

// Duration wraps time.Duration with YAML string parsing support.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// envOverrides lists the settings that may be set through HERALD_* variables.
type envOverrides struct {
	LogLevel     string        `envconfig:"LOG_LEVEL"`
	LogFormat    string        `envconfig:"LOG_FORMAT"`
	LogFile      string        `envconfig:"LOG_FILE"`
	Timeout      time.Duration `envconfig:"TIMEOUT"`
	Concurrency  int           `envconfig:"CONCURRENCY"`
	SMTPPassword string        `envconfig:"SMTP_PASSWORD"`
	NtfyToken    string        `envconfig:"NTFY_TOKEN"`
}

// Load reads configuration from a YAML file and applies HERALD_*
// environment overrides. An empty path means no file: only defaults and
// the environment are used, which leaves every provider unconfigured.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(expandEnvVars(data), cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.LogFormat] {
		return fmt.Errorf("log_format must be one of: text, json")
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1")
	}
	if r := c.LogRotation; r.MaxSizeMB < 0 || r.MaxBackups < 0 || r.MaxAgeDays < 0 {
		return fmt.Errorf("log_rotation values must be >= 0")
	}

	if e := c.Email; e != nil {
		if e.Address == "" {
			return fmt.Errorf("email: address is required")
		}
		if e.SMTP.Host == "" {
			return fmt.Errorf("email.smtp: host is required")
		}
		if e.SMTP.Port < 1 || e.SMTP.Port > 65535 {
			return fmt.Errorf("email.smtp: port must be between 1 and 65535")
		}
		if _, err := mail.ParseAddress(e.SMTP.From); err != nil {
			return fmt.Errorf("email.smtp: invalid from address %q: %w", e.SMTP.From, err)
		}
		switch e.SMTP.Encryption {
		case "", "none", "starttls", "ssl_tls":
		default:
			return fmt.Errorf("email.smtp: unknown encryption %q (expected none, starttls or ssl_tls)", e.SMTP.Encryption)
		}
	}
	if s := c.SMS; s != nil {
		if s.PhoneNumber == "" {
			return fmt.Errorf("sms: phone_number is required")
		}
		if err := validateURL(s.Gateway.URL); err != nil {
			return fmt.Errorf("sms.gateway: %w", err)
		}
	}
	if p := c.Push; p != nil {
		if p.UserID == "" {
			return fmt.Errorf("push: user_id is required")
		}
		if err := validateURL(p.Ntfy.URL); err != nil {
			return fmt.Errorf("push.ntfy: %w", err)
		}
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must be http or https, got %q", raw)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		Timeout:     Duration{30 * time.Second},
		Concurrency: 3,
		LogRotation: LogRotation{MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28},
	}
}

// expandEnvVars replaces ${VAR_NAME} placeholders in raw YAML with the
// corresponding environment variable values. Unset variables are replaced
// with an empty string, which will then fail validation with a clear error.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		key := string(match[2 : len(match)-1]) // strip ${ and }
		return []byte(os.Getenv(key))
	})
}

func applyEnvOverrides(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("herald", &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.LogFormat = env.LogFormat
	}
	if env.LogFile != "" {
		cfg.LogFile = env.LogFile
	}
	if env.Timeout > 0 {
		cfg.Timeout = Duration{env.Timeout}
	}
	if env.Concurrency > 0 {
		cfg.Concurrency = env.Concurrency
	}
	// Secrets only apply to sections the file already declares.
	if env.SMTPPassword != "" && cfg.Email != nil {
		cfg.Email.SMTP.Password = env.SMTPPassword
	}
	if env.NtfyToken != "" && cfg.Push != nil {
		cfg.Push.Ntfy.Token = env.NtfyToken
	}
	return nil
}
