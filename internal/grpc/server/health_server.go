// Package server реализует gRPC-сервер со стандартным сервисом grpc.health.v1.
//
// Статус обновляется по результатам проверок зависимостей (PostgreSQL, Redis),
// чтобы оркестратор мог выводить экземпляр из балансировки.
package server

import (
	"context"
	"log/slog"
	"net"
	"sort"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/offer-service/internal/lib/sl"
)

// ServiceName: имя сервиса в grpc.health.v1.
const ServiceName = "offer-service"

// Check проверяет одну зависимость.
type Check func(ctx context.Context) error

// HealthServer обслуживает gRPC health checks.
type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
	checks map[string]Check
	log    *slog.Logger
}

// NewHealthServer создаёт сервер. До первого Refresh сервис считается работающим.
func NewHealthServer(log *slog.Logger, checks map[string]Check) *HealthServer {
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	s := &HealthServer{
		grpc:   gs,
		health: hs,
		checks: checks,
		log:    log,
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
	return s
}

// Serve принимает соединения на lis до вызова Stop.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.log.Info("gRPC health server starting", slog.String("address", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Refresh выполняет все проверки и выставляет итоговый статус.
func (s *HealthServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := healthpb.HealthCheckResponse_SERVING
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			s.log.Warn("health check failed", slog.String("dependency", name), sl.Err(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.setStatus(status)
	return status
}

// Watch вызывает Refresh каждые interval до отмены ctx.
func (s *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			s.Refresh(checkCtx)
			cancel()
		}
	}
}

// Stop переводит сервис в NOT_SERVING и дожидается завершения активных вызовов.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *HealthServer) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
