package health

import (
	"context"
	"time"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/network"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/util"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const (
	defaultInterval = 30 * time.Second
	probeLimit      = 4
)

// Networks lists networks to probe.
type Networks interface {
	Names() []string
	Get(name string) (*network.Network, bool)
}

// Srv is a gRPC health service reporting overall status under empty service name
// and reachability of every network under its name.
type Srv struct {
	*health.Server

	logger   *zap.Logger
	networks Networks
	interval time.Duration
	timeout  time.Duration
}

// NewSrv creates health service, networks are reported unknown until first probe.
func NewSrv(logger *zap.Logger, networks Networks, interval, timeout time.Duration) *Srv {
	if interval <= 0 {
		interval = defaultInterval
	}
	s := &Srv{
		Server:   health.NewServer(),
		logger:   logger.Named("health"),
		networks: networks,
		interval: interval,
		timeout:  timeout,
	}
	for _, name := range networks.Names() {
		s.SetServingStatus(name, grpc_health_v1.HealthCheckResponse_SERVICE_UNKNOWN)
	}
	return s
}

// Run probes networks periodically until context is done, then marks every service not serving.
func (s *Srv) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.Probe(ctx)
		select {
		case <-ctx.Done():
			s.Shutdown()
			return nil
		case <-ticker.C:
		}
	}
}

// Probe checks every network once and updates serving status.
func (s *Srv) Probe(ctx context.Context) {
	names := s.networks.Names()
	_, errs := util.FanOut(ctx, probeLimit, s.timeout, len(names), func(ctx context.Context, i int) (struct{}, error) {
		n, ok := s.networks.Get(names[i])
		if !ok {
			return struct{}{}, nil
		}
		return struct{}{}, n.Check(ctx)
	})

	for i, name := range names {
		st := grpc_health_v1.HealthCheckResponse_SERVING
		if errs[i] != nil {
			st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			s.logger.Warn("network is not reachable", zap.String("network", name), zap.Error(errs[i]))
		}
		s.SetServingStatus(name, st)
	}
}
