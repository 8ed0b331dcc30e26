package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/network"
	"github.com/atomyze-foundation/hlf-lifecycle/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type probedLedger struct {
	*mocks.Ledger
	err error
}

func (l probedLedger) Height(context.Context, string) (uint64, error) {
	return 10, l.err
}

func status(t *testing.T, s *Srv, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestProbe(t *testing.T) {
	reg, err := network.NewRegistry([]*network.Network{
		{Name: "up", Channel: "ch1", Ledger: probedLedger{Ledger: mocks.NewLedger(t)}},
		{Name: "down", Channel: "ch2", Ledger: probedLedger{Ledger: mocks.NewLedger(t), err: errors.New("connection refused")}},
	})
	require.NoError(t, err)

	s := NewSrv(zap.NewNop(), reg, time.Minute, time.Second)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVICE_UNKNOWN, status(t, s, "up"))

	s.Probe(context.Background())
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(t, s, "up"))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(t, s, "down"))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(t, s, ""))
}

func TestRunStopsOnCancel(t *testing.T) {
	reg, err := network.NewRegistry([]*network.Network{
		{Name: "up", Channel: "ch1", Ledger: probedLedger{Ledger: mocks.NewLedger(t)}},
	})
	require.NoError(t, err)

	s := NewSrv(zap.NewNop(), reg, 10*time.Millisecond, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := s.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: "up"})
		return err == nil && resp.Status == grpc_health_v1.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(t, s, ""))
}
