package orderer

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/matcher"
	ordPb "github.com/hyperledger/fabric-protos-go/orderer"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

type grpcPool struct {
	ctx context.Context
	l   *zap.Logger

	mx    sync.Mutex
	conns map[string]*grpc.ClientConn

	tlsConf *tls.Config
	matcher *matcher.Matcher
}

// NewGrpcPool creates orderer pool, connections are dialed on first Get and shared afterwards.
func NewGrpcPool(ctx context.Context, logger *zap.Logger, tlsConf *tls.Config, m *matcher.Matcher) Pool {
	return &grpcPool{
		ctx:     ctx,
		l:       logger.Named("orderer_pool"),
		conns:   make(map[string]*grpc.ClientConn),
		tlsConf: tlsConf,
		matcher: m,
	}
}

func (p *grpcPool) Get(o *Orderer) (ordPb.AtomicBroadcastClient, error) {
	addr := p.address(o)

	p.mx.Lock()
	defer p.mx.Unlock()
	if conn, ok := p.conns[addr]; ok {
		return ordPb.NewAtomicBroadcastClient(conn), nil
	}
	conn, err := p.dial(o, addr)
	if err != nil {
		return nil, err
	}
	p.conns[addr] = conn
	return ordPb.NewAtomicBroadcastClient(conn), nil
}

func (p *grpcPool) dial(o *Orderer, addr string) (*grpc.ClientConn, error) {
	tlsConf := p.tlsConf.Clone()
	if len(o.Certificates) > 0 {
		if tlsConf.RootCAs == nil {
			tlsConf.RootCAs = x509.NewCertPool()
		}
		for _, cert := range o.Certificates {
			if !tlsConf.RootCAs.AppendCertsFromPEM(cert) {
				return nil, fmt.Errorf("invalid tls ca certificate of orderer %s", o)
			}
		}
	}
	p.l.Debug("dial orderer", zap.Stringer("orderer", o), zap.String("address", addr))
	conn, err := grpc.DialContext(p.ctx, addr, grpc.WithTransportCredentials(credentials.NewTLS(tlsConf)))
	if err != nil {
		return nil, fmt.Errorf("dial orderer %s: %w", o, err)
	}
	return conn, nil
}

// address applies host matcher rewrites used in local environments.
func (p *grpcPool) address(o *Orderer) string {
	v := o.String()
	if m, err := p.matcher.Match(v); err == nil {
		return m
	}
	return v
}

func (p *grpcPool) Close() error {
	p.mx.Lock()
	defer p.mx.Unlock()
	var result error
	for addr, conn := range p.conns {
		p.l.Debug("close orderer connection", zap.String("address", addr))
		result = multierr.Append(result, conn.Close())
		delete(p.conns, addr)
	}
	return result
}
