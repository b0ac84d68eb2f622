// Package recovery converts panics in user-provided code into errors.
// Ensures catalog and scan implementations don't crash the server.
package recovery

import (
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RecoverToError wraps a function call with panic recovery.
// If the function panics, the panic is logged with its stack trace and
// returned as a codes.Internal gRPC error.
//
// Example:
//
//	err := recovery.RecoverToError(logger, "Write", func() error {
//	    return writer.Write(rec)
//	})
func RecoverToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicked(logger, operation, r)
		}
	}()

	return fn()
}

// RecoverToValue wraps a function that returns a value and error.
// If the function panics, returns zero value and a codes.Internal gRPC error.
//
// Example:
//
//	reader, err := recovery.RecoverToValue(logger, "Scan", func() (array.RecordReader, error) {
//	    return table.Scan(ctx, opts)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = panicked(logger, operation, r)
		}
	}()

	return fn()
}

// Recover wraps a void function with panic recovery.
// Logs the panic but doesn't return an error.
// Use for cleanup operations where errors can't be returned.
func Recover(logger *slog.Logger, operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered in cleanup",
				"operation", operation,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()

	fn()
}

func panicked(logger *slog.Logger, operation string, r any) error {
	logger.Error("Panic recovered",
		"operation", operation,
		"panic", r,
		"stack", string(debug.Stack()),
	)
	return status.Errorf(codes.Internal, "%s panicked: %v", operation, r)
}
