package lifecycle

import (
	"context"
	"fmt"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/util"
	"github.com/golang/protobuf/proto" //nolint:staticcheck
	pb "github.com/hyperledger/fabric-protos-go/peer"
	lb "github.com/hyperledger/fabric-protos-go/peer/lifecycle"
	"github.com/hyperledger/fabric/protoutil"
)

type cli struct {
	prop *Proposer
	cli  pb.EndorserClient
}

var _ Client = &cli{}

func NewClient(enCli pb.EndorserClient, id protoutil.Signer) Client {
	return &cli{cli: enCli, prop: NewProposer(id)}
}

func (c *cli) Install(ctx context.Context, pkgBytes []byte) (*lb.InstallChaincodeResult, error) {
	var res lb.InstallChaincodeResult
	if err := c.query(ctx, "", installFunc, &lb.InstallChaincodeArgs{ChaincodeInstallPackage: pkgBytes}, &res); err != nil {
		return nil, fmt.Errorf("chaincode install: %w", err)
	}
	return &res, nil
}

func (c *cli) QueryInstalled(ctx context.Context) ([]InstalledChaincode, error) {
	var res lb.QueryInstalledChaincodesResult
	if err := c.query(ctx, "", queryInstalledFunc, &lb.QueryInstalledChaincodesArgs{}, &res); err != nil {
		return nil, fmt.Errorf("query installed: %w", err)
	}
	result := make([]InstalledChaincode, 0, len(res.InstalledChaincodes))
	for _, cc := range res.InstalledChaincodes {
		result = append(result, InstalledChaincode{PackageID: cc.PackageId, Label: cc.Label})
	}
	return result, nil
}

func (c *cli) QueryApproved(ctx context.Context, channelName, chaincodeName string, sequence int64) (*lb.QueryApprovedChaincodeDefinitionResult, error) {
	var res lb.QueryApprovedChaincodeDefinitionResult
	err := c.query(ctx, channelName, queryApprovedFunc, &lb.QueryApprovedChaincodeDefinitionArgs{
		Name:     chaincodeName,
		Sequence: sequence,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *cli) CheckCommitReadiness(ctx context.Context, channelName string, args *lb.CheckCommitReadinessArgs) (*lb.CheckCommitReadinessResult, error) {
	var res lb.CheckCommitReadinessResult
	if err := c.query(ctx, channelName, checkCommitReadinessFunc, args, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *cli) QueryCommitted(ctx context.Context, channelName string) ([]*lb.QueryChaincodeDefinitionsResult_ChaincodeDefinition, error) {
	var res lb.QueryChaincodeDefinitionsResult
	if err := c.query(ctx, channelName, queryCommittedFunc, &lb.QueryChaincodeDefinitionsArgs{}, &res); err != nil {
		return nil, err
	}
	return res.ChaincodeDefinitions, nil
}

func (c *cli) QueryCommittedWithName(ctx context.Context, channelName, chaincodeName string) (*lb.QueryChaincodeDefinitionResult, error) {
	var res lb.QueryChaincodeDefinitionResult
	if err := c.query(ctx, channelName, queryCommittedWithNameFunc, &lb.QueryChaincodeDefinitionArgs{Name: chaincodeName}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// query sends a signed proposal to the peer and decodes the response payload into result.
func (c *cli) query(ctx context.Context, channelName, fn string, args proto.Message, result proto.Message) error {
	prop, err := c.prop.create(channelName, fn, args)
	if err != nil {
		return fmt.Errorf("create proposal: %w", err)
	}
	resp, err := util.ProcessProposal(ctx, c.cli, prop.Signed)
	if err != nil {
		return err
	}
	if err = proto.Unmarshal(resp.GetResponse().GetPayload(), result); err != nil {
		return fmt.Errorf("unmarshal %s result: %w", fn, err)
	}
	return nil
}
