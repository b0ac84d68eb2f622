// Package arrowmask provides a high-level API for serving Apache Arrow tables
// over Flight with declarative row filters.
//
// A filter is a nested mapping whose keys are boolean combinators and whose
// values are lists of conditions or further mappings:
//
//	{"|": {"&": [["x", "<", 18], ["y", ">=", 40]], "None": [["x", ">", 25]]}}
//
// The filter package builds such a specification into an expression tree,
// evaluates it against an Arrow record as a boolean mask and renders it
// canonically as "((x < 18) & (y >= 40)) | (x > 25)". The arrowmask package
// wires that engine into a Flight server:
//   - Registering Flight service handlers on an existing grpc.Server
//   - Providing a fluent catalog builder API for defining tables
//   - Supporting dynamic catalog implementations via interfaces
//   - Masking every scanned batch before it is streamed to the client
//
// # Quick Start
//
//	package main
//
//	import (
//	    "log"
//	    "net"
//
//	    "github.com/apache/arrow-go/v18/arrow"
//	    "github.com/apache/arrow-go/v18/arrow/array"
//	    "github.com/apache/arrow-go/v18/arrow/memory"
//	    "google.golang.org/grpc"
//
//	    "github.com/hugr-lab/arrowmask"
//	)
//
//	func main() {
//	    schema := arrow.NewSchema([]arrow.Field{
//	        {Name: "x", Type: arrow.PrimitiveTypes.Int64},
//	    }, nil)
//
//	    builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
//	    builder.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
//	    record := builder.NewRecordBatch()
//	    builder.Release()
//
//	    cb := arrowmask.NewCatalogBuilder().RecordsTable("numbers", "", schema, record)
//	    defer cb.Release()
//	    record.Release()
//
//	    cat, err := cb.Build()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    config := arrowmask.ServerConfig{Catalog: cat}
//	    grpcServer := grpc.NewServer(arrowmask.ServerOptions(config)...)
//	    if err := arrowmask.NewServer(grpcServer, config); err != nil {
//	        log.Fatal(err)
//	    }
//	    lis, _ := net.Listen("tcp", ":50051")
//	    grpcServer.Serve(lis)
//	}
//
// # Requests
//
// GetFlightInfo accepts a PATH descriptor [table_name] selecting every row,
// or a CMD descriptor holding a JSON request:
//
//	{"table": "numbers", "filter": {"&": [["x", ">", 1]]}, "columns": ["x"]}
//
// Malformed filters are rejected with codes.InvalidArgument before any data is
// scanned. The returned ticket replays the validated request in DoGet.
//
// # Server Lifecycle
//
// The package registers Flight service handlers on a user-provided grpc.Server
// but does NOT manage server lifecycle (start/stop/listen). This gives users
// full control over:
//   - TLS configuration via grpc.Creds()
//   - Server options and interceptors
//   - Graceful shutdown via grpcServer.GracefulStop()
//
// # Logging
//
// The package logs through log/slog. ServerConfig.Logger takes precedence;
// otherwise ServerConfig.LogLevel creates a text logger on stderr, and
// slog.Default() is used when neither is set.
//
// # Memory Management
//
// Arrow uses manual reference counting. Callers MUST call Release() on:
//   - RecordReaders returned by scan functions
//   - Rules and records returned by the filter package
//   - CatalogBuilders holding in-memory tables, once serving stops
package arrowmask
