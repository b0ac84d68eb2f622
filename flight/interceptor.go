package flight

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor creates a gRPC unary interceptor that stores request
// metadata in the context and logs each call at debug level.
// A nil logger disables logging.
func UnaryServerInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx = EnrichContextMetadata(ctx)
		start := time.Now()

		resp, err := handler(ctx, req)
		logCall(ctx, logger, info.FullMethod, start, err)
		return resp, err
	}
}

// StreamServerInterceptor creates a gRPC stream interceptor that stores request
// metadata in the stream context and logs each call at debug level.
// A nil logger disables logging.
func StreamServerInterceptor(logger *slog.Logger) grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		ctx := EnrichContextMetadata(ss.Context())
		wrappedStream := &wrappedServerStream{
			ServerStream: ss,
			ctx:          ctx,
		}
		start := time.Now()

		err := handler(srv, wrappedStream)
		logCall(ctx, logger, info.FullMethod, start, err)
		return err
	}
}

func logCall(ctx context.Context, logger *slog.Logger, method string, start time.Time, err error) {
	if logger == nil {
		return
	}
	logger.LogAttrs(ctx, slog.LevelDebug, "Flight call finished",
		slog.String("method", method),
		slog.String("trace_id", TraceIDFromContext(ctx)),
		slog.String("session_id", SessionIDFromContext(ctx)),
		slog.Duration("duration", time.Since(start)),
		slog.String("code", status.Code(err).String()),
	)
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapper's custom context.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
