package peer

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/matcher"
	"github.com/hyperledger/fabric-protos-go/discovery"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	cutil "github.com/hyperledger/fabric/common/util"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

type grpcPool struct {
	mx sync.RWMutex
	// connections by msp id, then by peer address
	conns map[string]map[string]*grpc.ClientConn

	tlsConf *tls.Config
	matcher *matcher.Matcher
	l       *zap.Logger
}

// NewGrpcPool creates pool and dials local peers eagerly, any other peer is dialed on first use.
func NewGrpcPool(ctx context.Context, logger *zap.Logger, tlsConf *tls.Config, localPeers []*Peer, m *matcher.Matcher) (Pool, error) {
	pool := &grpcPool{
		conns:   make(map[string]map[string]*grpc.ClientConn),
		tlsConf: tlsConf,
		matcher: m,
		l:       logger.Named("peer_pool"),
	}
	for _, p := range localPeers {
		if _, err := pool.conn(ctx, p); err != nil {
			return nil, fmt.Errorf("peer %s: %w", p, err)
		}
	}
	return pool, nil
}

func (p *grpcPool) GetEndorser(ctx context.Context, peer *Peer) (pb.EndorserClient, error) {
	conn, err := p.conn(ctx, peer)
	if err != nil {
		return nil, err
	}
	return pb.NewEndorserClient(conn), nil
}

func (p *grpcPool) GetRandomEndorser(_ context.Context, mspID string) (pb.EndorserClient, error) {
	conn, err := p.anyConn(mspID)
	if err != nil {
		return nil, err
	}
	return pb.NewEndorserClient(conn), nil
}

func (p *grpcPool) GetDeliver(ctx context.Context, peer *Peer) (pb.DeliverClient, error) {
	conn, err := p.conn(ctx, peer)
	if err != nil {
		return nil, err
	}
	return pb.NewDeliverClient(conn), nil
}

func (p *grpcPool) GetConnection(mspID string) (*grpc.ClientConn, []byte, error) {
	conn, err := p.anyConn(mspID)
	if err != nil {
		return nil, nil, err
	}
	var tlsCertHash []byte
	if len(p.tlsConf.Certificates) > 0 && len(p.tlsConf.Certificates[0].Certificate) > 0 {
		tlsCertHash = cutil.ComputeSHA256(p.tlsConf.Certificates[0].Certificate[0])
	}
	return conn, tlsCertHash, nil
}

func (p *grpcPool) GetDiscoveryClient(mspID string) (discovery.DiscoveryClient, error) {
	conn, err := p.anyConn(mspID)
	if err != nil {
		return nil, err
	}
	return discovery.NewDiscoveryClient(conn), nil
}

func (p *grpcPool) Close() error {
	p.mx.Lock()
	defer p.mx.Unlock()
	var result error
	for mspID, byAddr := range p.conns {
		for addr, conn := range byAddr {
			p.l.Debug("close peer connection", zap.String("mspId", mspID), zap.String("address", addr))
			result = multierr.Append(result, conn.Close())
		}
		delete(p.conns, mspID)
	}
	return result
}

// anyConn returns an established connection to a peer of the msp, map order decides which one.
func (p *grpcPool) anyConn(mspID string) (*grpc.ClientConn, error) {
	p.mx.RLock()
	defer p.mx.RUnlock()
	for _, conn := range p.conns[mspID] {
		return conn, nil
	}
	return nil, fmt.Errorf("no connected peers of %s", mspID)
}

func (p *grpcPool) conn(ctx context.Context, peer *Peer) (*grpc.ClientConn, error) {
	addr := p.address(peer)

	p.mx.RLock()
	conn, ok := p.conns[peer.MspID][addr]
	p.mx.RUnlock()
	if ok {
		return conn, nil
	}

	p.mx.Lock()
	defer p.mx.Unlock()
	if conn, ok = p.conns[peer.MspID][addr]; ok {
		return conn, nil
	}
	conn, err := p.dial(ctx, peer, addr)
	if err != nil {
		return nil, err
	}
	if p.conns[peer.MspID] == nil {
		p.conns[peer.MspID] = make(map[string]*grpc.ClientConn)
	}
	p.conns[peer.MspID][addr] = conn
	return conn, nil
}

func (p *grpcPool) dial(ctx context.Context, peer *Peer, addr string) (*grpc.ClientConn, error) {
	tlsConf := p.tlsConf.Clone()
	if len(peer.CACertificates) > 0 {
		if tlsConf.RootCAs == nil {
			tlsConf.RootCAs = x509.NewCertPool()
		}
		for _, cert := range peer.CACertificates {
			if !tlsConf.RootCAs.AppendCertsFromPEM(cert) {
				return nil, fmt.Errorf("invalid tls ca certificate of peer %s", peer)
			}
		}
	}
	p.l.Debug("dial peer", zap.Stringer("peer", peer), zap.String("address", addr))
	conn, err := grpc.DialContext(ctx, addr, grpc.WithTransportCredentials(credentials.NewTLS(tlsConf)))
	if err != nil {
		return nil, fmt.Errorf("dial peer %s: %w", peer, err)
	}
	return conn, nil
}

// address applies host matcher rewrites used in local environments.
func (p *grpcPool) address(peer *Peer) string {
	v := peer.String()
	if m, err := p.matcher.Match(v); err == nil {
		return m
	}
	return v
}
