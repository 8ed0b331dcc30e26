package network

import (
	"crypto/tls"
	"fmt"
	"io"
	"os"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/config"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/ledger"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/orderer"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/peer"
	"github.com/hyperledger/fabric/protoutil"
	"go.uber.org/zap"
)

// FromConfig builds registry of configured networks backed by Fabric ledger clients.
// Registry takes ownership of pools.
func FromConfig(
	l *zap.Logger,
	conf *config.Config,
	id protoutil.Signer,
	clientCert tls.Certificate,
	peerPool peer.Pool,
	ordPool orderer.Pool,
) (*Registry, error) {
	networks := make([]*Network, 0, len(conf.Networks))
	for _, name := range conf.NetworkNames() {
		nc := conf.Networks[name]
		n, err := build(l.With(zap.String("network", name)), name, conf.MspID, nc, id, clientCert, peerPool, ordPool)
		if err != nil {
			return nil, fmt.Errorf("network %s: %w", name, err)
		}
		networks = append(networks, n)
	}
	return NewRegistry(networks, []io.Closer{peerPool, ordPool}...)
}

func build(
	l *zap.Logger,
	name, mspID string,
	nc *config.Network,
	id protoutil.Signer,
	clientCert tls.Certificate,
	peerPool peer.Pool,
	ordPool orderer.Pool,
) (*Network, error) {
	n := &Network{Name: name, Channel: nc.Channel, MspID: mspID}
	for _, p := range nc.Peers {
		certs, err := readCerts(p.TLSCACerts)
		if err != nil {
			return nil, fmt.Errorf("peer %s: %w", p.Host, err)
		}
		n.Peers = append(n.Peers, chaincode.PeerTarget{
			Name:       p.Name,
			MspID:      p.MspID,
			Host:       p.Host,
			Port:       p.Port,
			TLSCACerts: certs,
		})
	}
	for _, o := range nc.Orderers {
		certs, err := readCerts(o.TLSCACerts)
		if err != nil {
			return nil, fmt.Errorf("orderer %s: %w", o.Host, err)
		}
		n.Orderers = append(n.Orderers, chaincode.OrdererTarget{
			Name:       o.Name,
			Host:       o.Host,
			Port:       uint32(o.Port),
			TLSCACerts: certs,
		})
	}

	local := make([]*peer.Peer, 0)
	for _, p := range n.LocalPeers() {
		local = append(local, peer.FromTarget(p, clientCert))
	}

	n.Ledger = ledger.New(l, id, peerPool, ordPool, ledger.Options{
		MspID:             mspID,
		Concurrency:       nc.Concurrency,
		PeerTimeout:       nc.PeerTimeout,
		ClientCertificate: clientCert,
		WaitForCommit:     nc.WaitForCommit != nil && *nc.WaitForCommit,
		CommitTimeout:     nc.CommitTimeout,
		LocalPeers:        local,
		Orderers:          n.Orderers,
		Discovery:         nc.Discovery != nil && *nc.Discovery,
	})
	return n, nil
}

func readCerts(paths []string) ([][]byte, error) {
	certs := make([][]byte, 0, len(paths))
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read tls ca cert: %w", err)
		}
		certs = append(certs, b)
	}
	return certs, nil
}
