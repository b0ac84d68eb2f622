package arrowmask

import (
	"errors"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/arrowmask/catalog"
)

// ServerConfig contains configuration for the masked Flight server.
type ServerConfig struct {
	// Catalog provides the served tables.
	// REQUIRED: MUST NOT be nil.
	Catalog catalog.Catalog

	// Allocator for Arrow memory management.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If LogLevel is specified, a new logger will be created with that level.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses Info level.
	// Valid values: slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError
	// If Logger is also provided, LogLevel is ignored (use pre-configured logger).
	LogLevel *slog.Level

	// MaxMessageSize sets maximum gRPC message size in bytes.
	// OPTIONAL: If 0, uses gRPC default (4MB).
	// Recommended: 16MB for large Arrow batches.
	MaxMessageSize int

	// StrictLabels requires every filter group label to be & or |,
	// including labels of single-condition groups.
	// OPTIONAL: Clients may still ask for strict checking per request.
	StrictLabels bool
}

// Standard errors returned by arrowmask package.
var (
	// ErrInvalidConfig indicates ServerConfig validation failed.
	ErrInvalidConfig = errors.New("invalid server config")
)

// logger returns the configured logger, or a text logger at LogLevel on
// stderr, or slog.Default().
func (c ServerConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	if c.LogLevel != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *c.LogLevel}))
	}
	return slog.Default()
}

func (c ServerConfig) allocator() memory.Allocator {
	if c.Allocator != nil {
		return c.Allocator
	}
	return memory.DefaultAllocator
}
