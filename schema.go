package zcss

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DumpSchema is the JSON Schema describing a JSON dump of a stylesheet.
//
//go:embed dump.schema.json
var DumpSchema []byte

// ValidateDump checks a JSON stylesheet dump against DumpSchema. Schema
// violations are reported as a single error wrapping ErrInvalidDump.
func ValidateDump(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(DumpSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDump, err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidDump, strings.Join(msgs, "; "))
}
