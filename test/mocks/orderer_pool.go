package mocks

import (
	"fmt"
	"sync"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/orderer"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
)

// OrdererPool is an orderer pool double serving registered clients by orderer endpoint.
type OrdererPool struct {
	mx      sync.RWMutex
	clients map[string]*OrdererClient
}

func NewOrdererPool() *OrdererPool {
	return &OrdererPool{clients: make(map[string]*OrdererClient)}
}

// Add registers broadcast client of orderer endpoint.
func (p *OrdererPool) Add(endpoint string, cli *OrdererClient) *OrdererPool {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.clients[endpoint] = cli
	return p
}

// Sent returns number of envelopes submitted to all orderers.
func (p *OrdererPool) Sent() int {
	p.mx.RLock()
	defer p.mx.RUnlock()
	var n int
	for _, c := range p.clients {
		n += int(c.Sent.Load())
	}
	return n
}

func (p *OrdererPool) Get(o *orderer.Orderer) (ab.AtomicBroadcastClient, error) {
	p.mx.RLock()
	defer p.mx.RUnlock()
	if cli, ok := p.clients[o.String()]; ok {
		return cli, nil
	}
	return nil, fmt.Errorf("orderer %s is not known", o)
}

func (p *OrdererPool) Close() error {
	return nil
}
