package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/airtech/api"
	"github.com/Domenick1991/airtech/config"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const healthCheckInterval = 10 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
	conn       *grpc.ClientConn
}

// Run starts the gRPC health server and the HTTP server (JSON API, metrics,
// docs and /healthz) and blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, db Pinger, log logrus.FieldLogger) error {
	s, err := newServers(cfg, handler)
	if err != nil {
		return err
	}
	defer s.conn.Close()

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()
	go func() { errCh <- s.httpServer.ListenAndServe() }()
	go s.watchHealth(ctx, db, healthCheckInterval, log)

	log.WithFields(logrus.Fields{"http": cfg.HTTP.Address, "grpc": cfg.GRPC.Address}).Info("servers started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		log.Info("servers stopped")
		return nil
	}
}

func newServers(cfg *config.Config, handler http.Handler) (*Servers, error) {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcSrv, healthSrv)

	conn, err := grpc.NewClient(cfg.GRPC.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC %s: %w", cfg.GRPC.Address, err)
	}
	gateway := runtime.NewServeMux(runtime.WithHealthzEndpoint(grpc_health_v1.NewHealthClient(conn)))

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("/healthz", gateway)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/docs/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(api.OpenAPI)
	})
	mux.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/docs/openapi.json")))

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{Addr: cfg.HTTP.Address, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		health:     healthSrv,
		conn:       conn,
	}, nil
}

// watchHealth flips the overall serving status with the database.
func (s *Servers) watchHealth(ctx context.Context, db Pinger, every time.Duration, log logrus.FieldLogger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		s.checkHealth(ctx, db, log)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Servers) checkHealth(ctx context.Context, db Pinger, log logrus.FieldLogger) {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := db.Ping(pingCtx); err != nil {
		log.WithError(err).Warn("database ping failed")
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
}
