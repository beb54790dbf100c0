package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/lift-progression/internal/config"
	"github.com/iwvelando/lift-progression/pkg/constants"
	"gopkg.in/yaml.v3"
)

// DefaultShutdownTimeout bounds how long in-flight requests may run after a
// shutdown signal.
const DefaultShutdownTimeout = 10 * time.Second

// ProgressionDefaults are the server-wide progression settings. A submitted
// lift configuration only has to carry the settings it wants to change.
type ProgressionDefaults config.ProgressionConfig

// Apply fills every unset setting of requested from the defaults. Settings
// the server leaves unset fall through to the engine defaults.
func (d ProgressionDefaults) Apply(requested config.ProgressionConfig) config.ProgressionConfig {
	if requested.DefaultIncrement == 0 {
		requested.DefaultIncrement = d.DefaultIncrement
	}
	if requested.WaveLength == 0 {
		requested.WaveLength = d.WaveLength
	}
	if requested.WaveDeloadPercentage == 0 {
		requested.WaveDeloadPercentage = d.WaveDeloadPercentage
	}
	if requested.LinearFailureDeloadPercentage == 0 {
		requested.LinearFailureDeloadPercentage = d.LinearFailureDeloadPercentage
	}
	return requested
}

func (d ProgressionDefaults) validate() error {
	switch {
	case d.DefaultIncrement < 0:
		return fmt.Errorf("progression.defaultIncrement must not be negative, got %v", d.DefaultIncrement)
	case d.WaveLength < 0:
		return fmt.Errorf("progression.waveLength must not be negative, got %d", d.WaveLength)
	case d.WaveDeloadPercentage < 0 || d.WaveDeloadPercentage >= 1:
		return fmt.Errorf("progression.waveDeloadPercentage must be in [0, 1), got %v", d.WaveDeloadPercentage)
	case d.LinearFailureDeloadPercentage < 0 || d.LinearFailureDeloadPercentage >= 1:
		return fmt.Errorf("progression.linearFailureDeloadPercentage must be in [0, 1), got %v", d.LinearFailureDeloadPercentage)
	}
	return nil
}

// Config defines runtime parameters for the recommendation server.
type Config struct {
	Address         string               `yaml:"address"`
	MaxUploadSize   string               `yaml:"maxUploadSize"`
	ShutdownTimeout string               `yaml:"shutdownTimeout"`
	Logging         config.LoggingConfig `yaml:"logging"`
	Progression     ProgressionDefaults  `yaml:"progression"`
	uploadSizeBytes int64
	shutdownTimeout time.Duration
}

func defaultConfig() *Config {
	return &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   strconv.FormatInt(constants.DefaultMaxUploadSizeBytes, 10),
		ShutdownTimeout: DefaultShutdownTimeout.String(),
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
		shutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadConfig loads the server configuration from YAML. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadSizeBytes returns the configured upload size in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// ShutdownTimeoutDuration returns the graceful shutdown timeout.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return c.shutdownTimeout
}

// SetUploadSizeBytes overrides the configured upload size.
func (c *Config) SetUploadSizeBytes(size int64) {
	if size > 0 {
		c.uploadSizeBytes = size
		c.MaxUploadSize = strconv.FormatInt(size, 10)
	}
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if err := c.Progression.validate(); err != nil {
		return err
	}

	c.shutdownTimeout = DefaultShutdownTimeout
	if timeout := strings.TrimSpace(c.ShutdownTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown timeout %q: %w", c.ShutdownTimeout, err)
		}
		if d > 0 {
			c.shutdownTimeout = d
		}
	}

	size, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxUploadSizeBytes
	}
	c.SetUploadSizeBytes(size)
	return nil
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// ParseSize converts a byte string such as "256K" or "10M" into bytes. An
// empty string is the default upload size.
func ParseSize(value string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	unit := strings.TrimLeftFunc(trimmed, unicode.IsDigit)
	digits := strings.TrimSpace(trimmed[:len(trimmed)-len(unit)])
	if digits == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	multiplier, ok := sizeUnits[strings.TrimSpace(unit)]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", strings.TrimSpace(unit))
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}
	if n > 0 && n*multiplier/multiplier != n {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
