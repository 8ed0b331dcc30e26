package network

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"go.uber.org/multierr"
)

// Network is a read-only handle of one configured Fabric network.
type Network struct {
	Name     string
	Channel  string
	MspID    string
	Peers    []chaincode.PeerTarget
	Orderers []chaincode.OrdererTarget
	Ledger   chaincode.Ledger
}

// LocalPeers returns peers of the organization running the process.
func (n *Network) LocalPeers() []chaincode.PeerTarget {
	return n.PeersOf(n.MspID)
}

// PeersOf returns peers of organizations in configuration order.
func (n *Network) PeersOf(mspIDs ...string) []chaincode.PeerTarget {
	res := make([]chaincode.PeerTarget, 0, len(n.Peers))
	for _, p := range n.Peers {
		for _, id := range mspIDs {
			if p.MspID == id {
				res = append(res, p)
				break
			}
		}
	}
	return res
}

type heightReader interface {
	Height(ctx context.Context, channel string) (uint64, error)
}

// Check probes ledger of the network channel when ledger supports it.
func (n *Network) Check(ctx context.Context) error {
	hr, ok := n.Ledger.(heightReader)
	if !ok {
		return nil
	}
	_, err := hr.Height(ctx, n.Channel)
	return err
}

// Registry resolves networks by name. It is built once at startup and never mutated.
type Registry struct {
	networks map[string]*Network
	closers  []io.Closer
}

// NewRegistry creates registry of networks, closers are released by Close.
func NewRegistry(networks []*Network, closers ...io.Closer) (*Registry, error) {
	r := &Registry{networks: make(map[string]*Network, len(networks)), closers: closers}
	for _, n := range networks {
		if n.Name == "" {
			return nil, fmt.Errorf("network name is empty")
		}
		if _, ok := r.networks[n.Name]; ok {
			return nil, fmt.Errorf("network %s is duplicated", n.Name)
		}
		if n.Ledger == nil {
			return nil, fmt.Errorf("network %s has no ledger client", n.Name)
		}
		r.networks[n.Name] = n
	}
	return r, nil
}

// Get returns network by name.
func (r *Registry) Get(name string) (*Network, bool) {
	n, ok := r.networks[name]
	return n, ok
}

// Names returns sorted network names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.networks))
	for name := range r.networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases network connections.
func (r *Registry) Close() error {
	var err error
	for _, c := range r.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}
