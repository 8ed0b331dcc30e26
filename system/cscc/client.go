package cscc

import (
	"context"
	"fmt"
	"sort"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/util"
	"github.com/golang/protobuf/proto" //nolint:staticcheck
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/hyperledger/fabric/core/scc/cscc"
	"github.com/hyperledger/fabric/protoutil"
)

const chaincodeName = "cscc"

// Client reads channel membership and channel configuration from a peer.
//
//go:generate mockery --name Client --structname CsccClient --filename client.go
type Client interface {
	// GetChannels returns sorted list of channels peer has joined.
	GetChannels(ctx context.Context) ([]string, error)
	GetChannelConfig(ctx context.Context, channelName string) (*common.Config, error)
}

type cli struct {
	cli pb.EndorserClient
	id  protoutil.Signer
}

// NewClient creates configuration system chaincode client on top of peer endorser.
func NewClient(enCli pb.EndorserClient, id protoutil.Signer) Client {
	return &cli{cli: enCli, id: id}
}

func (c *cli) GetChannels(ctx context.Context) ([]string, error) {
	var res pb.ChannelQueryResponse
	if err := c.invoke(ctx, common.HeaderType_ENDORSER_TRANSACTION, &res, cscc.GetChannels); err != nil {
		return nil, fmt.Errorf("get channels: %w", err)
	}
	channels := make([]string, 0, len(res.Channels))
	for _, ch := range res.Channels {
		channels = append(channels, ch.ChannelId)
	}
	sort.Strings(channels)
	return channels, nil
}

func (c *cli) GetChannelConfig(ctx context.Context, channelName string) (*common.Config, error) {
	conf := &common.Config{}
	if err := c.invoke(ctx, common.HeaderType_CONFIG, conf, cscc.GetChannelConfig, channelName); err != nil {
		return nil, fmt.Errorf("get channel config of %s: %w", channelName, err)
	}
	return conf, nil
}

func (c *cli) invoke(ctx context.Context, hdrType common.HeaderType, result proto.Message, args ...string) error {
	input := &pb.ChaincodeInput{}
	for _, a := range args {
		input.Args = append(input.Args, []byte(a))
	}
	creator, err := c.id.Serialize()
	if err != nil {
		return fmt.Errorf("signer serialize: %w", err)
	}
	prop, _, err := protoutil.CreateProposalFromCIS(hdrType, "", &pb.ChaincodeInvocationSpec{
		ChaincodeSpec: &pb.ChaincodeSpec{
			Type:        pb.ChaincodeSpec_GOLANG,
			ChaincodeId: &pb.ChaincodeID{Name: chaincodeName},
			Input:       input,
		},
	}, creator)
	if err != nil {
		return fmt.Errorf("create proposal: %w", err)
	}
	signedProp, err := util.SignProposal(prop, c.id)
	if err != nil {
		return fmt.Errorf("sign proposal: %w", err)
	}
	resp, err := util.ProcessProposal(ctx, c.cli, signedProp)
	if err != nil {
		return err
	}
	if err = proto.Unmarshal(resp.GetResponse().GetPayload(), result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
