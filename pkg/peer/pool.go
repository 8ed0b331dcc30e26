package peer

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/hyperledger/fabric-protos-go/discovery"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/grpc"
)

// Peer is a dialable peer endpoint together with the client certificate used for mutual TLS.
type Peer struct {
	Name              string
	Host              string
	Port              int32
	MspID             string
	CACertificates    [][]byte
	ClientCertificate tls.Certificate
}

// FromTarget binds a network peer target to the client certificate of the process.
func FromTarget(t chaincode.PeerTarget, cert tls.Certificate) *Peer {
	return &Peer{
		Name:              t.Name,
		Host:              t.Host,
		Port:              t.Port,
		MspID:             t.MspID,
		CACertificates:    t.TLSCACerts,
		ClientCertificate: cert,
	}
}

// Target returns peer as lifecycle target, dropping the client certificate.
func (p *Peer) Target() chaincode.PeerTarget {
	return chaincode.PeerTarget{
		Name:       p.Name,
		MspID:      p.MspID,
		Host:       p.Host,
		Port:       p.Port,
		TLSCACerts: p.CACertificates,
	}
}

func (p *Peer) String() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(int(p.Port)))
}

// Pool keeps gRPC connections to peers, keyed by address.
type Pool interface {
	GetEndorser(ctx context.Context, p *Peer) (pb.EndorserClient, error)
	// GetRandomEndorser returns endorser of any already connected peer of the MSP.
	GetRandomEndorser(ctx context.Context, mspID string) (pb.EndorserClient, error)
	GetDeliver(ctx context.Context, p *Peer) (pb.DeliverClient, error)
	// GetConnection returns a connection of the MSP along with the TLS client certificate hash.
	GetConnection(mspID string) (*grpc.ClientConn, []byte, error)
	GetDiscoveryClient(mspID string) (discovery.DiscoveryClient, error)
	Close() error
}
