package orderer

import (
	"net"
	"strconv"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	ordPb "github.com/hyperledger/fabric-protos-go/orderer"
)

// ConsensusType of the ordering service, decides how transactions are broadcast.
type ConsensusType int

const (
	ConsensusUnspecified ConsensusType = iota
	ConsensusRaft
	ConsensusBFT
)

func (c ConsensusType) String() string {
	switch c {
	case ConsensusRaft:
		return "etcdraft"
	case ConsensusBFT:
		return "smartbft"
	}
	return "unspecified"
}

// Orderer is a dialable ordering service node.
type Orderer struct {
	Host         string
	Port         uint32
	MspID        string
	Certificates [][]byte
}

// FromTarget converts configured orderer target of a network.
func FromTarget(t chaincode.OrdererTarget) *Orderer {
	return &Orderer{Host: t.Host, Port: t.Port, Certificates: t.TLSCACerts}
}

func (o *Orderer) String() string {
	return net.JoinHostPort(o.Host, strconv.FormatUint(uint64(o.Port), 10))
}

// Pool shares broadcast connections to orderers.
type Pool interface {
	Get(orderer *Orderer) (ordPb.AtomicBroadcastClient, error)
	Close() error
}
