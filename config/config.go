package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/zwebsuite/zcss"
)

// Config is the top-level configuration struct for zcss.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Parser  ParserConfig  `mapstructure:"parser"`
	Printer PrinterConfig `mapstructure:"printer"`
	Dump    DumpConfig    `mapstructure:"dump"`
}

// ParserConfig holds parser limits.
type ParserConfig struct {
	MaxDepth int `mapstructure:"max_depth"`
	// MaxInputSize uses humanize format (e.g. "4MiB"). "0" means no limit.
	MaxInputSize string `mapstructure:"max_input_size"`
	Positions    bool   `mapstructure:"positions"`
}

// PrinterConfig holds CSS printer settings.
type PrinterConfig struct {
	Indent  string `mapstructure:"indent"`
	Compact bool   `mapstructure:"compact"`
}

// DumpConfig holds tree dump settings.
type DumpConfig struct {
	Format string `mapstructure:"format"`
	Indent int    `mapstructure:"indent"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidMaxDepth indicates the depth limit is negative.
	ErrInvalidMaxDepth = errors.New("parser.max_depth must be non-negative")
	// ErrInvalidMaxInputSize indicates the size limit is not a byte size.
	ErrInvalidMaxInputSize = errors.New("parser.max_input_size must be a byte size")
	// ErrInvalidIndent indicates the printer indent contains non-whitespace.
	ErrInvalidIndent = errors.New("printer.indent must contain only spaces and tabs")
	// ErrInvalidDumpFormat indicates an unknown dump format.
	ErrInvalidDumpFormat = errors.New("dump.format must be json or yaml")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Parser.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if _, err := c.Parser.MaxInputBytes(); err != nil {
		return err
	}

	if strings.Trim(c.Printer.Indent, " \t") != "" {
		return ErrInvalidIndent
	}

	if _, err := zcss.ParseDumpFormat(c.Dump.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDumpFormat, err)
	}

	return nil
}

// MaxInputBytes returns the parsed input size limit. Zero means no limit.
func (c *ParserConfig) MaxInputBytes() (int64, error) {
	if c.MaxInputSize == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(c.MaxInputSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidMaxInputSize, err)
	}

	return int64(n), nil
}
