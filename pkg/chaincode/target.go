package chaincode

import "fmt"

// PeerTarget identifies one peer of a network.
type PeerTarget struct {
	Name       string
	MspID      string
	Host       string
	Port       int32
	TLSCACerts [][]byte
}

// Endpoint returns peer network address.
func (p PeerTarget) Endpoint() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

func (p PeerTarget) String() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Endpoint()
}

// OrdererTarget identifies one ordering node of a network.
type OrdererTarget struct {
	Name       string
	Host       string
	Port       uint32
	TLSCACerts [][]byte
}

// Endpoint returns orderer network address.
func (o OrdererTarget) Endpoint() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

func (o OrdererTarget) String() string {
	if o.Name != "" {
		return o.Name
	}
	return o.Endpoint()
}

// EndorsementStatus is the terminal state of one proposal sent to one peer.
type EndorsementStatus int

const (
	StatusSuccess EndorsementStatus = iota
	StatusEndorsementFailure
	StatusConnectionFailure
)

func (s EndorsementStatus) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusEndorsementFailure:
		return "ENDORSEMENT_FAILURE"
	case StatusConnectionFailure:
		return "CONNECTION_FAILURE"
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s EndorsementStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PeerEndorsement is a result of sending one proposal to one peer.
type PeerEndorsement struct {
	Peer        PeerTarget
	Status      EndorsementStatus
	PackageID   string
	Message     string
	Endorsement []byte
}

// Decision of an aggregated operation.
type Decision int

const (
	DecisionRejected Decision = iota
	DecisionAccepted
)

func (d Decision) String() string {
	if d == DecisionAccepted {
		return "ACCEPTED"
	}
	return "REJECTED"
}

// MarshalText implements encoding.TextMarshaler.
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// AggregatedResult is a single decision reduced from per-peer endorsements.
type AggregatedResult struct {
	Decision       Decision
	SucceededOrgs  []string
	FailedOrgs     []string
	SucceededPeers []string
	FailedPeers    []string
	ReferencePeer  string // first successful peer in target order
	PackageID      string
}

// CommitReadiness is per organization approval state with ledger computed readiness.
type CommitReadiness struct {
	Approvals map[string]bool
	Ready     bool
}
