package parser

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zwebsuite/zcss/ast"
)

const (
	spanParse = "zcss.parse"

	attrSource     = "zcss.source"
	attrParseCtx   = "zcss.context"
	attrInputBytes = "zcss.input.bytes"
	attrNodes      = "zcss.nodes"
)

// observe runs a parse under the span, log records and metrics configured
// in opts. Size is the input length in bytes, or -1 when unknown.
func observe(ctx context.Context, opts Options, kind string, size int, parse func() (ast.Node, error)) error {
	logger := opts.logger()
	start := time.Now()

	var span trace.Span
	if opts.Tracer != nil {
		attrs := []attribute.KeyValue{
			attribute.String(attrSource, opts.Source),
			attribute.String(attrParseCtx, kind),
		}
		if size >= 0 {
			attrs = append(attrs, attribute.Int(attrInputBytes, size))
		}
		ctx, span = opts.Tracer.Start(ctx, spanParse, trace.WithAttributes(attrs...))
		defer span.End()
	}

	if size >= 0 {
		logger.DebugContext(ctx, "parse started", "source", opts.Source, "context", kind, "size", humanize.Bytes(uint64(size)))
	} else {
		logger.DebugContext(ctx, "parse started", "source", opts.Source, "context", kind)
	}

	node, err := parse()
	elapsed := time.Since(start)
	opts.Metrics.record(ctx, kind, size, elapsed, err)

	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		logger.WarnContext(ctx, "parse failed", "source", opts.Source, "context", kind, "error", err)
		return err
	}

	nodes := ast.Count(node)
	if span != nil {
		span.SetAttributes(attribute.Int(attrNodes, nodes))
	}
	logger.DebugContext(ctx, "parse finished", "source", opts.Source, "context", kind, "nodes", nodes, "duration", elapsed)
	return nil
}
