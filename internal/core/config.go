package core

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coregx/entmap/internal/dialects"
	"github.com/coregx/entmap/internal/logger"
	"github.com/coregx/entmap/internal/naming"
)

// Config is the file form of the engine options.
//
//	naming_convention: snake_case
//	strict_mapping: true
//	auto_map: false
//	dialect: postgres
//	plural_tables: false
//	log_level: debug
type Config struct {
	NamingConvention string `yaml:"naming_convention,omitempty"`
	StrictMapping    bool   `yaml:"strict_mapping,omitempty"`
	AutoMap          bool   `yaml:"auto_map,omitempty"`
	Dialect          string `yaml:"dialect,omitempty"`
	PluralTables     bool   `yaml:"plural_tables,omitempty"`
	// LogLevel enables text logging to LogOutput (stderr by default).
	// Empty disables logging.
	LogLevel string `yaml:"log_level,omitempty"`

	LogOutput io.Writer `yaml:"-"`
}

// ParseConfig decodes a YAML document. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, WrapError(ErrInvalidConfig, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads and decodes the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(err, "read config")
	}
	return ParseConfig(data)
}

// Validate checks every named value.
func (c *Config) Validate() error {
	_, err := c.Options()
	return err
}

// Options converts the configuration to engine options.
func (c *Config) Options() ([]Option, error) {
	opts := []Option{
		WithStrictMapping(c.StrictMapping),
		WithAutoMap(c.AutoMap),
		WithPluralTables(c.PluralTables),
	}

	if c.NamingConvention != "" {
		conv, err := naming.ParseConvention(c.NamingConvention)
		if err != nil {
			return nil, WrapError(ErrInvalidConfig, err.Error())
		}
		opts = append(opts, WithNamingConvention(conv))
	}

	if c.Dialect != "" {
		if _, err := dialects.Get(c.Dialect); err != nil {
			return nil, WrapError(ErrInvalidConfig, err.Error())
		}
		opts = append(opts, WithDialect(c.Dialect))
	}

	if c.LogLevel != "" {
		level, err := logger.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, WrapError(ErrInvalidConfig, err.Error())
		}
		out := c.LogOutput
		if out == nil {
			out = os.Stderr
		}
		opts = append(opts, WithLogger(logger.NewText(out, level)))
	}

	return opts, nil
}

// NewFromConfig creates an Engine from cfg. opts are applied after the
// configured options and take precedence.
func NewFromConfig(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return New(opts...)
	}
	base, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(append(base, opts...)...)
}
