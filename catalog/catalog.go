// Package catalog provides interfaces for defining the tables served by a
// masked Flight server.
//
// The catalog package follows an interface-based design to support both static and dynamic implementations:
//   - Static catalogs: Built using NewCatalogBuilder() fluent API (immutable, fast lookup)
//   - Dynamic catalogs: Custom implementations that can reflect live data sources
//
// All interfaces are goroutine-safe and support context-based cancellation.
package catalog

import (
	"context"
)

// Catalog represents the set of tables a server exposes.
// Implementations can be static (from builder) or dynamic (user-provided).
// All methods MUST be goroutine-safe.
type Catalog interface {
	// Tables returns all tables visible in this catalog.
	// Returns empty slice (not nil) if no tables available.
	// MUST respect context cancellation and deadlines.
	Tables(ctx context.Context) ([]Table, error)

	// Table returns a specific table by name.
	// Returns (nil, nil) if table doesn't exist (not an error).
	// Returns (nil, err) if lookup fails for other reasons.
	Table(ctx context.Context, name string) (Table, error)
}
