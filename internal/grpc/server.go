package grpcserver

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	qdv1 "quickDeliver/api/quickdeliver/v1"
	"quickDeliver/internal/auth"
	"quickDeliver/internal/backend"
	"quickDeliver/internal/config"
)

// Methods callable without a bearer token.
var publicMethods = []string{
	healthpb.Health_Check_FullMethodName,
	healthpb.Health_Watch_FullMethodName,
	qdv1.AuthService_SignUp_FullMethodName,
	qdv1.AuthService_SignIn_FullMethodName,
	qdv1.CatalogService_ListRestaurants_FullMethodName,
}

// NewServer builds a gRPC server exposing the quickdeliver.v1 services and the
// standard health service, with logging and auth interceptors installed.
func NewServer(svc *backend.Service, jwtSecret string, l *slog.Logger) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unaryLogging(l), auth.NewUnaryAuthInterceptor(jwtSecret, publicMethods...)),
		grpc.ChainStreamInterceptor(streamLogging(l), auth.NewStreamAuthInterceptor(jwtSecret, publicMethods...)),
	)
	qdv1.RegisterAuthServiceServer(srv, &AuthServer{Svc: svc})
	qdv1.RegisterCatalogServiceServer(srv, &CatalogServer{Svc: svc})
	qdv1.RegisterOrderServiceServer(srv, &OrderServer{Svc: svc})
	qdv1.RegisterAdminServiceServer(srv, &AdminServer{Svc: svc})

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// StartGRPC starts the gRPC server on the configured address and returns a shutdown function.
func StartGRPC(cfg *config.Config, svc *backend.Service, l *slog.Logger) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}

	addr := cfg.GRPC.Address
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	// Plaintext; terminate TLS in front of the service.
	srv := NewServer(svc, cfg.Auth.JWTSecret, l)
	go func() {
		if err := srv.Serve(lis); err != nil {
			l.Error("grpc serve", "err", err)
		}
	}()

	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}
