package flight

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey int

const (
	metaKey contextKey = iota
)

// Metadata header keys for observability.
const (
	// HeaderTraceID is the gRPC metadata header for distributed trace identifier.
	HeaderTraceID = "arrowmask-trace-id"
	// HeaderSessionID is the gRPC metadata header for client session identifier.
	HeaderSessionID = "arrowmask-client-session-id"
)

// ContextMeta holds the request metadata extracted from gRPC headers.
type ContextMeta struct {
	TraceID   string
	SessionID string
}

func WithContextMeta(ctx context.Context, meta ContextMeta) context.Context {
	return context.WithValue(ctx, metaKey, &meta)
}

func MetaFromContext(ctx context.Context) *ContextMeta {
	meta, _ := ctx.Value(metaKey).(*ContextMeta)
	return meta
}

// TraceIDFromContext returns the trace ID from context, or empty string if not set.
func TraceIDFromContext(ctx context.Context) string {
	meta := MetaFromContext(ctx)
	if meta == nil {
		return ""
	}
	return meta.TraceID
}

// SessionIDFromContext returns the session ID from context, or empty string if not set.
func SessionIDFromContext(ctx context.Context) string {
	meta := MetaFromContext(ctx)
	if meta == nil {
		return ""
	}
	return meta.SessionID
}

// EnrichContextMetadata extracts metadata from gRPC context and
// returns a new context with the metadata stored.
// If the context is already enriched, it is returned unchanged.
func EnrichContextMetadata(ctx context.Context) context.Context {
	if MetaFromContext(ctx) != nil {
		return ctx
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}

	var meta ContextMeta
	if values := md.Get(HeaderTraceID); len(values) > 0 {
		meta.TraceID = values[0]
	}
	if values := md.Get(HeaderSessionID); len(values) > 0 {
		meta.SessionID = values[0]
	}
	return WithContextMeta(ctx, meta)
}
