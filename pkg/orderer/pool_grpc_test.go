package orderer

import (
	"context"
	"crypto/tls"
	"testing"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGrpcPoolReusesConnections(t *testing.T) {
	m := matcher.NewMatcher(map[string]string{"orderer0.example.com:7050": "localhost:7050"})
	pool := NewGrpcPool(context.Background(), zap.NewNop(), &tls.Config{}, m).(*grpcPool) //nolint:gosec

	ord := &Orderer{Host: "orderer0.example.com", Port: 7050}
	_, err := pool.Get(ord)
	require.NoError(t, err)
	_, err = pool.Get(&Orderer{Host: "orderer0.example.com", Port: 7050})
	require.NoError(t, err)

	require.Len(t, pool.conns, 1)
	_, ok := pool.conns["localhost:7050"]
	assert.True(t, ok, "matched host must be used as dial target")

	_, err = pool.Get(&Orderer{Host: "orderer1.example.com", Port: 7050})
	require.NoError(t, err)
	assert.Len(t, pool.conns, 2)

	require.NoError(t, pool.Close())
	assert.Empty(t, pool.conns)
}

func TestGrpcPoolBadCertificate(t *testing.T) {
	pool := NewGrpcPool(context.Background(), zap.NewNop(), &tls.Config{}, matcher.NewMatcher(nil)) //nolint:gosec
	_, err := pool.Get(&Orderer{Host: "orderer0", Port: 7050, Certificates: [][]byte{[]byte("not a pem")}})
	assert.Error(t, err)
}

func TestConsensusTypeString(t *testing.T) {
	assert.Equal(t, "etcdraft", ConsensusRaft.String())
	assert.Equal(t, "smartbft", ConsensusBFT.String())
	assert.Equal(t, "unspecified", ConsensusUnspecified.String())
}

func TestFromTarget(t *testing.T) {
	o := FromTarget(chaincode.OrdererTarget{Name: "orderer0", Host: "orderer0.example.com", Port: 7050, TLSCACerts: [][]byte{[]byte("ca")}})
	assert.Equal(t, "orderer0.example.com:7050", o.String())
	assert.Equal(t, [][]byte{[]byte("ca")}, o.Certificates)
}
