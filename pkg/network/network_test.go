package network

import (
	"context"
	"errors"
	"testing"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closer struct {
	closed int
	err    error
}

func (c *closer) Close() error {
	c.closed++
	return c.err
}

func TestRegistry(t *testing.T) {
	a := &Network{Name: "a", Ledger: mocks.NewLedger(t)}
	b := &Network{Name: "b", Ledger: mocks.NewLedger(t)}
	c1, c2 := &closer{}, &closer{err: errors.New("close failed")}

	r, err := NewRegistry([]*Network{b, a}, c1, c2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, r.Names())

	n, ok := r.Get("a")
	require.True(t, ok)
	assert.Same(t, a, n)

	_, ok = r.Get("c")
	assert.False(t, ok)

	assert.EqualError(t, r.Close(), "close failed")
	assert.Equal(t, 1, c1.closed)
	assert.Equal(t, 1, c2.closed)
}

func TestRegistryInvalid(t *testing.T) {
	l := mocks.NewLedger(t)
	_, err := NewRegistry([]*Network{{Name: "a", Ledger: l}, {Name: "a", Ledger: l}})
	assert.ErrorContains(t, err, "duplicated")

	_, err = NewRegistry([]*Network{{Name: "a"}})
	assert.ErrorContains(t, err, "no ledger")

	_, err = NewRegistry([]*Network{{Ledger: l}})
	assert.Error(t, err)
}

func TestPeersOf(t *testing.T) {
	n := &Network{
		MspID: "Org1MSP",
		Peers: []chaincode.PeerTarget{
			{Name: "p0", MspID: "Org1MSP"},
			{Name: "p1", MspID: "Org2MSP"},
			{Name: "p2", MspID: "Org1MSP"},
			{Name: "p3", MspID: "Org3MSP"},
		},
	}
	assert.Equal(t, []chaincode.PeerTarget{{Name: "p0", MspID: "Org1MSP"}, {Name: "p2", MspID: "Org1MSP"}}, n.LocalPeers())
	assert.Equal(t, []string{"p1", "p3"}, names(n.PeersOf("Org3MSP", "Org2MSP")))
	assert.Empty(t, n.PeersOf())
}

func names(peers []chaincode.PeerTarget) []string {
	res := make([]string, 0, len(peers))
	for _, p := range peers {
		res = append(res, p.Name)
	}
	return res
}

type heightLedger struct {
	*mocks.Ledger
	err error
}

func (h heightLedger) Height(context.Context, string) (uint64, error) {
	return 1, h.err
}

func TestCheck(t *testing.T) {
	assert.NoError(t, (&Network{Ledger: mocks.NewLedger(t)}).Check(context.Background()))
	assert.NoError(t, (&Network{Ledger: heightLedger{Ledger: mocks.NewLedger(t)}}).Check(context.Background()))
	assert.Error(t, (&Network{Ledger: heightLedger{Ledger: mocks.NewLedger(t), err: errors.New("down")}}).Check(context.Background()))
}
