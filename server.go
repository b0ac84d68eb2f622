package arrowmask

import (
	"fmt"

	"google.golang.org/grpc"

	"github.com/hugr-lab/arrowmask/flight"
)

// NewServer registers the masked Flight service handlers on the provided gRPC server.
// This is the main entry point for the arrowmask package.
//
// The function:
//  1. Validates the ServerConfig
//  2. Creates Flight service implementation
//  3. Registers it on grpcServer
//
// Returns error if config is invalid (e.g., nil Catalog).
// Does NOT start the gRPC server - user controls lifecycle via grpcServer.Serve().
//
// Use ServerOptions() to create the gRPC server with request logging and
// trace metadata propagation:
//
//	opts := arrowmask.ServerOptions(config)
//	grpcServer := grpc.NewServer(opts...)
//	err := arrowmask.NewServer(grpcServer, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
func NewServer(grpcServer *grpc.Server, config ServerConfig) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if grpcServer == nil {
		return fmt.Errorf("%w: grpc server is required", ErrInvalidConfig)
	}

	logger := config.logger()

	flightServer := flight.NewServer(config.Catalog, config.allocator(), logger, config.StrictLabels)
	flight.RegisterFlightServer(grpcServer, flightServer)

	logger.Info("Masked Flight server registered",
		"strict_labels", config.StrictLabels,
		"max_message_size", config.MaxMessageSize,
	)

	return nil
}

// validateConfig checks that required ServerConfig fields are valid.
func validateConfig(config ServerConfig) error {
	if config.Catalog == nil {
		return fmt.Errorf("catalog is required")
	}
	if config.MaxMessageSize < 0 {
		return fmt.Errorf("max message size cannot be negative: %d", config.MaxMessageSize)
	}
	return nil
}

// ServerOptions returns gRPC server options with the logging interceptors.
// The interceptors store the arrowmask-trace-id and arrowmask-client-session-id
// headers in the request context and log every call at debug level.
//
// Example:
//
//	config := arrowmask.ServerConfig{Catalog: cat}
//	grpcServer := grpc.NewServer(arrowmask.ServerOptions(config)...)
func ServerOptions(config ServerConfig) []grpc.ServerOption {
	logger := config.logger()
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(flight.UnaryServerInterceptor(logger)),
		grpc.ChainStreamInterceptor(flight.StreamServerInterceptor(logger)),
	}

	// Add max message size if specified
	if config.MaxMessageSize > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(config.MaxMessageSize),
			grpc.MaxSendMsgSize(config.MaxMessageSize),
		)
	}

	return opts
}

