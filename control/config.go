// control/config.go
// Author: momentics <momentics@gmail.com>
//
// TOML configuration for channels and the ambient stack.

package control

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/momentics/hioload-chan/pool"
)

const (
	EnvLogLevel    = "HIOLOAD_LOG_LEVEL"
	EnvLogEncoding = "HIOLOAD_LOG_ENCODING"
	EnvSendTimeout = "HIOLOAD_SEND_TIMEOUT"
	EnvRecvTimeout = "HIOLOAD_RECV_TIMEOUT"
)

// Duration is a time.Duration read from TOML strings such as "250ms".
// "none", "" and any negative value mean no timeout.
type Duration struct {
	time.Duration
}

// NoTimeout is the Duration that disables a deadline.
var NoTimeout = Duration{Duration: -1}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	switch strings.ToLower(s) {
	case "", "none", "off", "infinite":
		*d = NoTimeout
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if v < 0 {
		v = -1
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	if d.Duration < 0 {
		return []byte("none"), nil
	}
	return []byte(d.Duration.String()), nil
}

// LogConfig selects the zap logger built by NewLogger.
type LogConfig struct {
	Level       string `toml:"level"`
	Encoding    string `toml:"encoding"`
	Development bool   `toml:"development"`
}

// MetricsConfig controls Prometheus export.
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Namespace string `toml:"namespace"`
	Addr      string `toml:"addr"`
}

// Config is the top-level configuration file.
type Config struct {
	SendTimeout Duration      `toml:"send_timeout"`
	RecvTimeout Duration      `toml:"recv_timeout"`
	ReadChunk   int           `toml:"read_chunk"`
	Log         LogConfig     `toml:"log"`
	Metrics     MetricsConfig `toml:"metrics"`
}

// DefaultConfig returns blocking channels, info-level JSON logs and
// metrics disabled.
func DefaultConfig() Config {
	return Config{
		SendTimeout: NoTimeout,
		RecvTimeout: NoTimeout,
		ReadChunk:   pool.DefaultChunkSize,
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
		Metrics: MetricsConfig{
			Namespace: "hioload",
			Addr:      ":9102",
		},
	}
}

// LoadConfig reads path over DefaultConfig, applies environment overrides
// and validates the result.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg, err := ParseConfig(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a TOML document over DefaultConfig. Unknown keys are
// rejected.
func ParseConfig(doc string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(doc, &cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config keys: %v", undecoded)
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.ReadChunk <= 0 {
		return fmt.Errorf("read_chunk must be positive, got %d", c.ReadChunk)
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("log.encoding must be json or console, got %q", c.Log.Encoding)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("metrics.namespace is required when metrics are enabled")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogEncoding)); v != "" {
		cfg.Log.Encoding = v
	}
	for env, dst := range map[string]*Duration{EnvSendTimeout: &cfg.SendTimeout, EnvRecvTimeout: &cfg.RecvTimeout} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		if ms, err := strconv.Atoi(v); err == nil {
			v = strconv.Itoa(ms) + "ms"
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}
	return nil
}
