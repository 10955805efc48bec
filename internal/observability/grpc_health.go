package observability

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealthServer exposes the standard grpc.health.v1 service, driven by the
// same dependency checks as /ready.
type GRPCHealthServer struct {
	server   *grpc.Server
	health   *health.Server
	checks   map[string]HealthCheckFunc
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewGRPCHealthServer creates a health server that re-evaluates checks every
// interval.
func NewGRPCHealthServer(checks map[string]HealthCheckFunc, interval time.Duration) *GRPCHealthServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	h := health.NewServer()
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, h)

	return &GRPCHealthServer{
		server:   s,
		health:   h,
		checks:   checks,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start listens on addr and serves until Stop.
func (g *GRPCHealthServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.refresh(ctx)
	go g.watch(ctx)

	logger := Component("grpc-health")
	go func() {
		logger.Info().Str("addr", addr).Msg("gRPC health server listening")
		if err := g.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
			logger.Error().Err(err).Msg("gRPC health server stopped")
		}
	}()
	return nil
}

func (g *GRPCHealthServer) watch(ctx context.Context) {
	defer close(g.done)
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.refresh(ctx)
		}
	}
}

func (g *GRPCHealthServer) refresh(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, healthy := CheckDependencies(checkCtx, g.checks)
	status := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(serviceName, status)
}

// Stop marks the service not serving and stops the server.
func (g *GRPCHealthServer) Stop() {
	if g.cancel != nil {
		g.cancel()
		<-g.done
	}
	g.health.Shutdown()
	g.server.GracefulStop()
}
