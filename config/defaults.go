package config

import (
	"github.com/zwebsuite/zcss"
	"github.com/zwebsuite/zcss/parser"
)

// Default values applied before the config file and environment are read.
const (
	DefaultParserMaxDepth     = parser.DefaultMaxDepth
	DefaultParserMaxInputSize = "0"
	DefaultParserPositions    = true

	DefaultPrinterIndent  = zcss.DefaultIndent
	DefaultPrinterCompact = false

	DefaultDumpFormat = string(zcss.FormatJSON)
	DefaultDumpIndent = zcss.DefaultDumpIndent
)
