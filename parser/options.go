package parser

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxDepth is the block nesting limit used when Options.MaxDepth
// is zero.
const DefaultMaxDepth = 128

// Options configures a single parse. The zero value is ready to use.
type Options struct {
	// Source names the input in locations and error messages.
	Source string

	// MaxDepth limits how deeply blocks may nest.
	MaxDepth int

	// MaxInputSize rejects inputs larger than this many bytes.
	// Zero means no limit.
	MaxInputSize int64

	// OmitPositions leaves every node's Loc nil.
	OmitPositions bool

	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *Metrics
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}
