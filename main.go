package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/config"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/health"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/matcher"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/network"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/orderer"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/peer"
	"github.com/atomyze-foundation/hlf-lifecycle/service/orchestrator"
	"github.com/atomyze-foundation/hlf-lifecycle/service/plane"
	srvMw "github.com/atomyze-foundation/hlf-lifecycle/service/plane/middleware"
	"github.com/felixge/httpsnoop"
	"github.com/flowchartsman/swaggerui"
	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_zap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

var AppInfoVer string

const healthInterval = 30 * time.Second

func main() {
	var confPath string
	cmd := &cobra.Command{
		Use:   "hlf-lifecycle",
		Short: "Chaincode lifecycle orchestration for Hyperledger Fabric networks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("trailing args detected")
			}
			cmd.SilenceUsage = true
			return run(confPath)
		},
	}
	cmd.Flags().StringVar(&confPath, "config", "config.yaml", "path to configuration file")
	cmd.Version = AppInfoVer

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(confPath string) error {
	ctx := context.Background()

	conf, err := config.Load(confPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err = conf.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	// initialize logger
	lc := zap.NewProductionConfig()
	if err = lc.Level.UnmarshalText([]byte(conf.LogLevel)); err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	logger, err := lc.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("app version", zap.String("version", AppInfoVer))
	// read credentials for mutual tls
	tlsCreds, err := conf.TLS.TLSConfig()
	if err != nil {
		return fmt.Errorf("tls creds load failed: %w", err)
	}
	// load signing identity
	id, err := conf.Identity.Load(logger, conf.MspID)
	if err != nil {
		return fmt.Errorf("identity load failed: %w", err)
	}
	// create host matcher for local development
	match := matcher.NewMatcher(conf.HostMatcher)
	// connections are dialed lazily on first use
	peerPool, err := peer.NewGrpcPool(ctx, logger, tlsCreds, nil, match)
	if err != nil {
		return fmt.Errorf("failed to init peer pool: %w", err)
	}
	ordPool := orderer.NewGrpcPool(ctx, logger, tlsCreds, match)

	registry, err := network.FromConfig(logger, conf, id, tlsCreds.Certificates[0], peerPool, ordPool)
	if err != nil {
		return fmt.Errorf("init networks: %w", err)
	}
	logger.Info("networks configured", zap.Strings("networks", registry.Names()))

	orch := orchestrator.New(logger, registry)
	healthSrv := health.NewSrv(logger, registry, healthInterval, conf.Defaults.PeerTimeout)

	// listen and serve http and grpc servers
	if err = listen(ctx, logger, conf, orch, healthSrv); err != nil {
		logger.Error("server returned error", zap.Error(err))
	}

	logger.Info("waiting for network connections close")
	if closeErr := registry.Close(); closeErr != nil {
		logger.Error("close networks", zap.Error(closeErr))
	}
	return err
}

func listen(ctx context.Context, logger *zap.Logger, conf *config.Config, orch plane.Operator, healthSrv *health.Srv) error { //nolint:funlen
	lis, err := net.Listen("tcp", conf.Listen.GRPC)
	if err != nil {
		return fmt.Errorf("bind grpc port %s: %w", conf.Listen.GRPC, err)
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
		grpc_recovery.UnaryServerInterceptor(),
		grpc_zap.UnaryServerInterceptor(logger.Named("grpc")),
		srvMw.AuthenticationInterceptor(conf.AccessToken),
	)))
	grpc_health_v1.RegisterHealthServer(grpcServer, healthSrv)
	httpServer := &http.Server{
		ReadHeaderTimeout: time.Second,
		Addr:              conf.Listen.HTTP,
	}

	// create new context with cancellation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// listen system interrupt signals
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	// start err group with servers
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return healthSrv.Run(ctx)
	})

	// start grpc server
	g.Go(func() error {
		logger.Info("grpc listen", zap.String("port", conf.Listen.GRPC))
		return grpcServer.Serve(lis)
	})

	// start http server
	g.Go(func() error {
		conn, err := grpc.DialContext(ctx, conf.Listen.GRPC, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithBlock())
		if err != nil {
			return fmt.Errorf("grpc dial: %w", err)
		}
		defer conn.Close()

		mux := runtime.NewServeMux(
			srvMw.ErrorHandler(logger),
			srvMw.RoutingErrorHandler(),
			runtime.WithHealthEndpointAt(grpc_health_v1.NewHealthClient(conn), "/v1/healthz"),
		)
		if err = plane.Register(mux, logger, orch, 0); err != nil {
			return fmt.Errorf("register routes: %w", err)
		}

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/v1") || strings.HasPrefix(r.URL.Path, "/chaincode") {
				mux.ServeHTTP(w, r)
				return
			}
			swaggerui.Handler(plane.SwaggerJSON).ServeHTTP(w, r)
		})
		authenticated := srvMw.Authentication(conf.AccessToken, h, "/chaincode")

		httpServer.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(authenticated, w, r)
			logger.Named("http").Info("request",
				zap.String("ip", r.RemoteAddr),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", m.Duration),
				zap.Int("code", m.Code),
				zap.Int64("bytes", m.Written),
			)
		})
		logger.Info("http listen", zap.String("port", conf.Listen.HTTP))
		if err = httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// block until context cancellation or interrupt signal
	select {
	case <-interrupt:
	case <-ctx.Done():
	}

	logger.Info("received shutdown signal")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	if err = g.Wait(); err != nil {
		return fmt.Errorf("wait error: %w", err)
	}
	return nil
}
