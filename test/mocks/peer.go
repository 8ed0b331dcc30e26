package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/peer"
	"github.com/hyperledger/fabric-protos-go/discovery"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/grpc"
)

// PeerPool is a peer pool double serving registered clients by peer endpoint.
// Peers without registered endorser are treated as unreachable.
type PeerPool struct {
	mx        sync.RWMutex
	order     []*peer.Peer
	endorsers map[string]pb.EndorserClient
	delivers  map[string]pb.DeliverClient
}

func NewPeerPool() *PeerPool {
	return &PeerPool{endorsers: make(map[string]pb.EndorserClient), delivers: make(map[string]pb.DeliverClient)}
}

// AddEndorser registers endorser client of peer.
func (p *PeerPool) AddEndorser(pr *peer.Peer, cli pb.EndorserClient) *PeerPool {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.order = append(p.order, pr)
	p.endorsers[pr.String()] = cli
	return p
}

// AddDeliver registers deliver client of peer.
func (p *PeerPool) AddDeliver(pr *peer.Peer, cli pb.DeliverClient) *PeerPool {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.delivers[pr.String()] = cli
	return p
}

func (p *PeerPool) GetEndorser(_ context.Context, pr *peer.Peer) (pb.EndorserClient, error) {
	p.mx.RLock()
	defer p.mx.RUnlock()
	if cli, ok := p.endorsers[pr.String()]; ok {
		return cli, nil
	}
	return nil, fmt.Errorf("dial %s: connection refused", pr)
}

func (p *PeerPool) GetRandomEndorser(_ context.Context, mspID string) (pb.EndorserClient, error) {
	p.mx.RLock()
	defer p.mx.RUnlock()
	for _, pr := range p.order {
		if pr.MspID == mspID {
			return p.endorsers[pr.String()], nil
		}
	}
	return nil, fmt.Errorf("no peers of %s found", mspID)
}

func (p *PeerPool) GetDeliver(_ context.Context, pr *peer.Peer) (pb.DeliverClient, error) {
	p.mx.RLock()
	defer p.mx.RUnlock()
	if cli, ok := p.delivers[pr.String()]; ok {
		return cli, nil
	}
	return nil, fmt.Errorf("dial %s: connection refused", pr)
}

func (p *PeerPool) GetConnection(mspID string) (*grpc.ClientConn, []byte, error) {
	return nil, nil, fmt.Errorf("no connection of %s", mspID)
}

func (p *PeerPool) GetDiscoveryClient(mspID string) (discovery.DiscoveryClient, error) {
	return nil, fmt.Errorf("no discovery of %s", mspID)
}

func (p *PeerPool) Close() error {
	return nil
}
