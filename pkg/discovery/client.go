package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/peer"
	fd "github.com/hyperledger/fabric-protos-go/discovery"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	discovery "github.com/hyperledger/fabric/discovery/client"
	"github.com/hyperledger/fabric/protoutil"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Client finds endorsers of a chaincode through Fabric service discovery.
type Client interface {
	// GetEndorsers returns peers able to endorse chaincode on channel,
	// prioritized by ledger height.
	GetEndorsers(ctx context.Context, channelName, ccName string) ([]*peer.Peer, error)
}

type cli struct {
	log   *zap.Logger
	mspID string
	pool  peer.Pool
	id    protoutil.Signer
	dCli  *discovery.Client
}

func (c *cli) GetEndorsers(ctx context.Context, channelName, ccName string) ([]*peer.Peer, error) {
	ccCall := &pb.ChaincodeCall{Name: ccName}
	req, err := discovery.NewRequest().OfChannel(channelName).AddEndorsersQuery(&pb.ChaincodeInterest{Chaincodes: []*pb.ChaincodeCall{ccCall}})
	if err != nil {
		return nil, fmt.Errorf("create discovery query: %w", err)
	}

	resp, err := c.processResponse(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("process response: %w", err)
	}

	endorsers, err := resp.ForChannel(channelName).Endorsers([]*pb.ChaincodeCall{ccCall}, discovery.NewFilter(discovery.PrioritiesByHeight, discovery.NoExclusion))
	if err != nil {
		return nil, fmt.Errorf("get endorsers from response: %w", err)
	}

	c.log.Debug("endorsers discovered", zap.String("channel", channelName), zap.String("chaincode", ccName), zap.Int("count", len(endorsers)))
	return toPeers(endorsers)
}

func (c *cli) processResponse(ctx context.Context, req *discovery.Request) (discovery.Response, error) {
	sID, err := c.id.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize identity: %w", err)
	}

	_, tlsCertHash, err := c.pool.GetConnection(c.mspID)
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}

	resp, err := c.dCli.Send(ctx, req, &fd.AuthInfo{
		ClientIdentity:    sID,
		ClientTlsCertHash: tlsCertHash,
	})
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

func toPeers(peers []*discovery.Peer) ([]*peer.Peer, error) {
	res := make([]*peer.Peer, 0, len(peers))
	for _, p := range peers {
		alive := p.AliveMessage.GetAliveMsg()
		if alive == nil || alive.Membership == nil {
			return nil, fmt.Errorf("peer of %s has no membership info", p.MSPID)
		}
		host, port, err := splitEndpoint(alive.Membership.Endpoint)
		if err != nil {
			return nil, err
		}
		res = append(res, &peer.Peer{Host: host, Port: port, MspID: p.MSPID})
	}
	return res, nil
}

func splitEndpoint(endpoint string) (string, int32, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return "", 0, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	port, err := strconv.ParseInt(portStr, 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("invalid parse port: %w", err)
	}
	return host, int32(port), nil
}

// NewClient creates discovery client sending requests through peers of msp.
func NewClient(log *zap.Logger, mspID string, pool peer.Pool, id protoutil.Signer) Client {
	c := &cli{
		log:   log.Named("discovery"),
		mspID: mspID,
		pool:  pool,
		id:    id,
	}
	c.dCli = discovery.NewClient(func() (*grpc.ClientConn, error) {
		conn, _, err := pool.GetConnection(mspID)
		return conn, err
	}, func(msg []byte) ([]byte, error) {
		return id.Sign(msg)
	}, 0)
	return c
}
