package config

import (
	"fmt"
	"strings"
	"time"

	goconf "github.com/kayac/go-config"
	"github.com/pkg/errors"
)

// Limit values
const (
	MinTimeout       = 1    // Minimum of request timeout (sec).
	MaxTimeout       = 300  // Maximum of request timeout (sec).
	MinTokenLifetime = 1200 // APNs refuses provider token updates more often than every 20 minutes.
	MaxTokenLifetime = 3600 // APNs refuses provider tokens older than one hour.
	KeyIDLength      = 10   // Length of a key id issued by the developer account.
	TeamIDLength     = 10   // Length of a team id.
)

const (
	// Default request timeout (sec). If not configures at file, this value is set.
	DefaultTimeout = 10
	// Default provider token lifetime (sec). If not configures at file, this value is set.
	DefaultTokenLifetime = 3000
	// Default APNs environment.
	DefaultEnvironment = "production"
	// Default config file path.
	DefaultConfigPath = "/etc/pushflow/pushflow.toml"
)

// Config is the configure of a pushflow client
type Config struct {
	Apns SectionApns `toml:"apns"`
	Hook SectionHook `toml:"hook"`
	Log  SectionLog  `toml:"log"`
}

// SectionApns is the configure which is loaded from pushflow.toml
type SectionApns struct {
	TeamID        string `toml:"team_id"`
	BundleID      string `toml:"bundle_id"`
	KeyFile       string `toml:"key_file"`
	Kid           string `toml:"kid"`
	TrustRoot     string `toml:"trust_root"`
	Environment   string `toml:"environment"`
	Timeout       int    `toml:"timeout"`
	TokenLifetime int    `toml:"token_lifetime"`
}

// SectionHook holds commands invoked with a result JSON on stdin.
type SectionHook struct {
	ErrorHook string `toml:"error_hook"`
}

// SectionLog is the logging configuration
type SectionLog struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// RequestTimeout returns the overall deadline of one exchange.
func (s SectionApns) RequestTimeout() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// TokenTTL returns how long a signed provider token is reused.
func (s SectionApns) TokenTTL() time.Duration {
	return time.Duration(s.TokenLifetime) * time.Second
}

// DefaultLoadConfig loads default /etc/pushflow/pushflow.toml
func DefaultLoadConfig() (Config, error) {
	return LoadConfig(DefaultConfigPath)
}

// LoadConfig reads pushflow.toml and loads on Config struct
func LoadConfig(fn string) (Config, error) {
	var config Config

	if err := goconf.LoadWithEnvTOML(&config, fn); err != nil {
		return config, errors.Wrapf(err, "load %s failed", fn)
	}

	config.SetDefaults()

	// validates config parameters
	if err := config.Validate(); err != nil {
		return config, errors.Wrap(err, "validate config failed")
	}

	return config, nil
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.Apns.Timeout == 0 {
		c.Apns.Timeout = DefaultTimeout
	}
	if c.Apns.TokenLifetime == 0 {
		c.Apns.TokenLifetime = DefaultTokenLifetime
	}
	if c.Apns.Environment == "" {
		c.Apns.Environment = DefaultEnvironment
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.validateConfigAPNs(); err != nil {
		return errors.Wrap(err, "[apns]")
	}
	if err := c.validateConfigLog(); err != nil {
		return errors.Wrap(err, "[log]")
	}
	return nil
}

func (c *Config) validateConfigAPNs() error {
	var missing []string
	if c.Apns.TeamID == "" {
		missing = append(missing, "team_id")
	}
	if c.Apns.BundleID == "" {
		missing = append(missing, "bundle_id")
	}
	if c.Apns.KeyFile == "" {
		missing = append(missing, "key_file")
	}
	if c.Apns.Kid == "" {
		missing = append(missing, "kid")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required keys: %s", strings.Join(missing, ", "))
	}

	if len(c.Apns.Kid) != KeyIDLength {
		return fmt.Errorf("kid must be %d characters: %q", KeyIDLength, c.Apns.Kid)
	}
	if len(c.Apns.TeamID) != TeamIDLength {
		return fmt.Errorf("team_id must be %d characters: %q", TeamIDLength, c.Apns.TeamID)
	}

	switch c.Apns.Environment {
	case "production", "development", "sandbox":
	default:
		return fmt.Errorf("unknown environment: %s. (production, development)", c.Apns.Environment)
	}

	if c.Apns.Timeout < MinTimeout || c.Apns.Timeout > MaxTimeout {
		return fmt.Errorf("timeout was out of available range: %d. (%d-%d)", c.Apns.Timeout,
			MinTimeout, MaxTimeout)
	}

	if c.Apns.TokenLifetime < MinTokenLifetime || c.Apns.TokenLifetime > MaxTokenLifetime {
		return fmt.Errorf("token_lifetime was out of available range: %d. (%d-%d)", c.Apns.TokenLifetime,
			MinTokenLifetime, MaxTokenLifetime)
	}

	return nil
}

func (c *Config) validateConfigLog() error {
	switch c.Log.Format {
	case "", "text", "ltsv", "json":
	default:
		return fmt.Errorf("unknown log format: %s. (text, ltsv, json)", c.Log.Format)
	}
	return nil
}
