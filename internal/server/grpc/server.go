// Package grpc runs the gRPC side of the accounts server. It serves the
// standard health protocol so orchestrators can probe readiness, with the
// serving status driven by periodic dependency checks.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/mnln/accounts/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported for the accounts API.
const ServiceName = "mnln.accounts"

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

type GRPCServer struct {
	address  string
	logger   logging.Logger
	health   *health.Server
	checks   map[string]CheckFunc
	interval time.Duration
}

func NewGRPCServer(a string, l logging.Logger, interval time.Duration) *GRPCServer {
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		health:   hs,
		checks:   make(map[string]CheckFunc),
		interval: interval,
	}
}

// AddCheck registers a dependency probe. Must be called before Run.
func (s *GRPCServer) AddCheck(name string, check CheckFunc) {
	s.checks[name] = check
}

// Health exposes the underlying health server.
func (s *GRPCServer) Health() *health.Server {
	return s.health
}

// probe runs every check once and updates the serving status.
func (s *GRPCServer) probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for name, check := range s.checks {
		cctx, cancel := context.WithTimeout(ctx, s.interval)
		err := check(cctx)
		cancel()
		if err != nil {
			s.logger.Warn(ctx, "dependency check failed", "dependency", name, "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
	return status
}

func (s *GRPCServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.recoveryInterceptor,
		s.loggingInterceptor,
	))
	healthpb.RegisterHealthServer(srv, s.health)

	s.probe(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
