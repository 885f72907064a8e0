package config

import (
	"github.com/zwebsuite/zcss"
	"github.com/zwebsuite/zcss/parser"
)

// ParserOptions returns parse options for the named source. Logger, Tracer
// and Metrics are left for the caller to set.
func (c *Config) ParserOptions(source string) (parser.Options, error) {
	size, err := c.Parser.MaxInputBytes()
	if err != nil {
		return parser.Options{}, err
	}

	return parser.Options{
		Source:        source,
		MaxDepth:      c.Parser.MaxDepth,
		MaxInputSize:  size,
		OmitPositions: !c.Parser.Positions,
	}, nil
}

// NewPrinter returns a CSS printer with the configured layout.
func (c *Config) NewPrinter() *zcss.Printer {
	return &zcss.Printer{
		Indent:  c.Printer.Indent,
		Compact: c.Printer.Compact,
	}
}

// DumpOptions returns the configured dump options. The format is assumed
// to have been checked by Validate; an unknown format falls back to JSON.
func (c *Config) DumpOptions() zcss.DumpOptions {
	format, err := zcss.ParseDumpFormat(c.Dump.Format)
	if err != nil {
		format = zcss.FormatJSON
	}

	return zcss.DumpOptions{
		Format: format,
		Indent: c.Dump.Indent,
	}
}
