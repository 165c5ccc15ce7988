package grpc

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/optic/loan-origination/internal/domain/valueobject"
	"github.com/optic/loan-origination/pkg/auth"
	"github.com/optic/loan-origination/pkg/tlsutil"
)

// ServerConfig holds optional transport settings.
type ServerConfig struct {
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

// methodPermissions maps each RPC to the permission it requires.
var methodPermissions = map[string]string{
	MethodSimulate:             string(valueobject.PermSimulateLoans),
	MethodCreateApplication:    string(valueobject.PermCreateLoans),
	MethodGetApplication:       string(valueobject.PermReadLoans),
	MethodSearchApplications:   string(valueobject.PermReadLoans),
	MethodRecomputeApplication: string(valueobject.PermUpdateLoans),
	MethodDeleteApplication:    string(valueobject.PermDeleteLoans),
}

// Server wraps a gRPC server with the origination handler registered.
type Server struct {
	gs     *grpc.Server
	logger *slog.Logger
}

// NewServer creates and configures the gRPC server.
func NewServer(handler OriginationServiceServer, logger *slog.Logger, jwtService *auth.JWTService, cfg ServerConfig) *Server {
	// Add auth interceptor, skipping health check methods.
	authInterceptor := auth.UnaryAuthInterceptor(jwtService, []string{
		"/grpc.health.v1.Health/Check",
		"/grpc.health.v1.Health/Watch",
	})

	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(authInterceptor, auth.UnaryPermissionInterceptor(methodPermissions)),
	}

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		creds, err := tlsutil.ServerTLSConfig(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			logger.Error("failed to load TLS credentials, starting without TLS", "error", err)
		} else {
			serverOpts = append(serverOpts, grpc.Creds(creds))
			logger.Info("gRPC TLS enabled", "cert", cfg.TLSCertFile)
		}
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	gs := grpc.NewServer(serverOpts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	if cfg.Reflection {
		reflection.Register(gs)
	}

	RegisterOriginationServiceServer(gs, handler)

	return &Server{gs: gs, logger: logger}
}

// Serve starts the gRPC server on the specified address.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// GracefulStop stops the server gracefully.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.gs.GracefulStop()
}
