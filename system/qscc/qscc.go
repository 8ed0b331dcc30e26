package qscc

import (
	"context"
	"fmt"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/util"
	"github.com/golang/protobuf/proto" //nolint:staticcheck
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/hyperledger/fabric/core/scc/qscc"
	"github.com/hyperledger/fabric/protoutil"
)

//go:generate mockery --name Client --structname QsccClient --filename qscc.go
type Client interface {
	// GetChainInfo returns height and current block hash of channel ledger.
	GetChainInfo(ctx context.Context, channelName string) (*common.BlockchainInfo, error)
}

type cli struct {
	cli pb.EndorserClient
	id  protoutil.Signer
}

// NewClient creates ledger query client on top of peer endorser.
func NewClient(enCli pb.EndorserClient, id protoutil.Signer) Client {
	return &cli{cli: enCli, id: id}
}

func (c *cli) GetChainInfo(ctx context.Context, channelName string) (*common.BlockchainInfo, error) {
	payload, err := c.query(ctx, qscc.GetChainInfo, channelName)
	if err != nil {
		return nil, fmt.Errorf("get chain info of %s: %w", channelName, err)
	}
	info := &common.BlockchainInfo{}
	if err = proto.Unmarshal(payload, info); err != nil {
		return nil, fmt.Errorf("unmarshal chain info: %w", err)
	}
	return info, nil
}

func (c *cli) query(ctx context.Context, fn string, args ...string) ([]byte, error) {
	input := &pb.ChaincodeInput{Args: [][]byte{[]byte(fn)}}
	for _, a := range args {
		input.Args = append(input.Args, []byte(a))
	}
	creator, err := c.id.Serialize()
	if err != nil {
		return nil, fmt.Errorf("signer serialize: %w", err)
	}
	prop, _, err := protoutil.CreateProposalFromCIS(common.HeaderType_ENDORSER_TRANSACTION, "", &pb.ChaincodeInvocationSpec{
		ChaincodeSpec: &pb.ChaincodeSpec{
			Type:        pb.ChaincodeSpec_GOLANG,
			ChaincodeId: &pb.ChaincodeID{Name: "qscc"},
			Input:       input,
		},
	}, creator)
	if err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}
	signedProp, err := util.SignProposal(prop, c.id)
	if err != nil {
		return nil, fmt.Errorf("sign proposal: %w", err)
	}
	resp, err := util.ProcessProposal(ctx, c.cli, signedProp)
	if err != nil {
		return nil, err
	}
	return resp.GetResponse().GetPayload(), nil
}
