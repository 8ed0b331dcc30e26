package ledger

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/delivery"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/discovery"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/orderer"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/peer"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/util"
	"github.com/atomyze-foundation/hlf-lifecycle/system/cscc"
	"github.com/atomyze-foundation/hlf-lifecycle/system/lifecycle"
	"github.com/atomyze-foundation/hlf-lifecycle/system/qscc"
	"github.com/golang/protobuf/proto" //nolint:staticcheck
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/hyperledger/fabric/protoutil"
	"go.uber.org/zap"
)

// Options of a Fabric ledger client.
type Options struct {
	// MspID of the process identity, local peers of it serve queries.
	MspID string
	// Concurrency limits proposals in flight, zero means no limit.
	Concurrency int
	// PeerTimeout limits every single proposal, zero means no limit.
	PeerTimeout time.Duration
	// ClientCertificate is the TLS client certificate bound to deliver requests.
	ClientCertificate tls.Certificate
	// WaitForCommit enables waiting for validation code of submitted transactions on LocalPeers.
	WaitForCommit bool
	// CommitTimeout limits waiting for validation code.
	CommitTimeout time.Duration
	// LocalPeers of MspID serve queries and deliver events.
	LocalPeers []*peer.Peer
	// Orderers receive approvals, channel config orderers are used when empty.
	Orderers []chaincode.OrdererTarget
	// Discovery widens commit endorsers with peers discovered for _lifecycle.
	Discovery bool
}

// Fabric is a chaincode.Ledger implemented on top of Fabric peers and ordering service.
type Fabric struct {
	l     *zap.Logger
	id    protoutil.Signer
	opts  Options
	peers peer.Pool
	ords  orderer.Pool
	prop  *lifecycle.Proposer

	dlv  delivery.Client
	disc discovery.Client

	// package identity last installed through this client, by package label
	installsMx sync.RWMutex
	installs   map[string]string
}

var _ chaincode.Ledger = (*Fabric)(nil)

// New creates ledger client of one network.
func New(l *zap.Logger, id protoutil.Signer, peers peer.Pool, ords orderer.Pool, opts Options) *Fabric {
	f := &Fabric{
		l:     l.Named("ledger"),
		id:    id,
		opts:  opts,
		peers: peers,
		ords:  ords,
		prop:  lifecycle.NewProposer(id),

		installs: make(map[string]string),
	}
	if opts.WaitForCommit && len(opts.LocalPeers) > 0 {
		f.dlv = delivery.NewPeer(l, peers, opts.LocalPeers, id)
	}
	if opts.Discovery {
		f.disc = discovery.NewClient(l, opts.MspID, peers, id)
	}
	return f
}

// Height returns ledger height of channel reported by a local peer.
func (f *Fabric) Height(ctx context.Context, channel string) (uint64, error) {
	endCli, err := f.localEndorser(ctx)
	if err != nil {
		return 0, err
	}
	info, err := qscc.NewClient(endCli, f.id).GetChainInfo(ctx, channel)
	if err != nil {
		return 0, classify(err)
	}
	return info.Height, nil
}

// localEndorser returns endorser of a random local peer of the network,
// any connected peer of the msp is used when network has no local peers configured.
func (f *Fabric) localEndorser(ctx context.Context) (pb.EndorserClient, error) {
	var (
		endCli pb.EndorserClient
		err    error
	)
	if n := len(f.opts.LocalPeers); n > 0 {
		endCli, err = f.peers.GetEndorser(ctx, f.opts.LocalPeers[rand.Intn(n)]) //nolint:gosec
	} else {
		endCli, err = f.peers.GetRandomEndorser(ctx, f.opts.MspID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chaincode.ErrUnavailable, err)
	}
	return endCli, nil
}

func (f *Fabric) lifecycleClient(ctx context.Context) (lifecycle.Client, error) {
	endCli, err := f.localEndorser(ctx)
	if err != nil {
		return nil, err
	}
	return lifecycle.NewClient(endCli, f.id), nil
}

func (f *Fabric) channelConfig(ctx context.Context, channel string) (*common.Config, error) {
	endCli, err := f.localEndorser(ctx)
	if err != nil {
		return nil, err
	}
	conf, err := cscc.NewClient(endCli, f.id).GetChannelConfig(ctx, channel)
	if err != nil {
		return nil, classify(err)
	}
	return conf, nil
}

// endorse sends signed proposal to every target and returns per target endorsements
// along with successful responses in target order.
func (f *Fabric) endorse(ctx context.Context, targets []chaincode.PeerTarget, sp *pb.SignedProposal) ([]chaincode.PeerEndorsement, []*pb.ProposalResponse) {
	responses, errs := util.FanOut(ctx, f.opts.Concurrency, f.opts.PeerTimeout, len(targets), func(ctx context.Context, i int) (*pb.ProposalResponse, error) {
		endCli, err := f.peers.GetEndorser(ctx, peer.FromTarget(targets[i], f.opts.ClientCertificate))
		if err != nil {
			return nil, fmt.Errorf("get endorser: %w", err)
		}
		return util.ProcessProposal(ctx, endCli, sp)
	})

	endorsements := make([]chaincode.PeerEndorsement, len(targets))
	succeeded := make([]*pb.ProposalResponse, 0, len(targets))
	for i, t := range targets {
		endorsements[i] = endorsement(t, responses[i], errs[i])
		if endorsements[i].Status == chaincode.StatusSuccess {
			succeeded = append(succeeded, responses[i])
		}
		f.l.Debug("endorsement",
			zap.String("peer", t.String()),
			zap.Stringer("status", endorsements[i].Status),
			zap.String("message", endorsements[i].Message))
	}
	return endorsements, succeeded
}

func endorsement(t chaincode.PeerTarget, resp *pb.ProposalResponse, err error) chaincode.PeerEndorsement {
	e := chaincode.PeerEndorsement{Peer: t}
	var respErr *util.ResponseError
	switch {
	case err == nil:
		raw, mErr := proto.Marshal(resp)
		if mErr != nil {
			e.Status = chaincode.StatusEndorsementFailure
			e.Message = fmt.Sprintf("marshal proposal response: %v", mErr)
			return e
		}
		e.Status = chaincode.StatusSuccess
		e.Message = resp.GetResponse().GetMessage()
		e.Endorsement = raw
	case errors.As(err, &respErr):
		e.Status = chaincode.StatusEndorsementFailure
		e.Message = respErr.Message
	default:
		e.Status = chaincode.StatusConnectionFailure
		e.Message = err.Error()
	}
	return e
}

// classify marks transport failures as unavailability, peer answers are returned as is.
func classify(err error) error {
	var respErr *util.ResponseError
	if errors.As(err, &respErr) {
		return err
	}
	return fmt.Errorf("%w: %v", chaincode.ErrUnavailable, err)
}

