// Package config loads gateway configuration from the environment, with an
// optional YAML override file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config holds all gateway settings.
type Config struct {
	Port     int    `env:"PORT,default=3000" yaml:"port"`
	LogLevel string `env:"LOG_LEVEL,default=info" yaml:"log_level"`
	LogJSON  bool   `env:"LOG_JSON,default=false" yaml:"log_json"`

	// OdooHostPattern produces the tenant base URL from the tenant database
	// name, e.g. https://acme.odoo.com for tenant "acme".
	OdooHostPattern string        `env:"ODOO_HOST_PATTERN,default=https://%s.odoo.com" yaml:"odoo_host_pattern"`
	OdooTimeout     time.Duration `env:"ODOO_TIMEOUT,default=30s" yaml:"odoo_timeout"`

	OTPServiceURL string        `env:"OTP_SERVICE_URL,default=http://localhost:9090" yaml:"otp_service_url"`
	OTPTimeout    time.Duration `env:"OTP_TIMEOUT,default=10s" yaml:"otp_timeout"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=*" yaml:"allowed_origins"`

	// Sustained requests per second and burst allowed per client key
	// (tenant database, falling back to remote address).
	RateLimitRPS   int `env:"RATE_LIMIT_RPS,default=20" yaml:"rate_limit_rps"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST,default=40" yaml:"rate_limit_burst"`

	// Signup record defaults applied when the request leaves them unset.
	SignupStateID   int64 `env:"SIGNUP_STATE_ID,default=1" yaml:"signup_state_id"`
	SignupCountryID int64 `env:"SIGNUP_COUNTRY_ID,default=586" yaml:"signup_country_id"`
}

// Load decodes configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return &cfg, nil
}

// ApplyFile overlays settings from a YAML file onto the config. Fields absent
// from the file keep their environment-derived values.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
