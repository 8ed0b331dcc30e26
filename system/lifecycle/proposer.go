package lifecycle

import (
	"fmt"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/util"
	"github.com/golang/protobuf/proto" //nolint:staticcheck
	cb "github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	lb "github.com/hyperledger/fabric-protos-go/peer/lifecycle"
	"github.com/hyperledger/fabric/protoutil"
	"github.com/pkg/errors"
)

// Proposal is a signed lifecycle proposal ready to be sent to endorsers.
type Proposal struct {
	TxID     string
	Proposal *pb.Proposal
	Signed   *pb.SignedProposal
}

// Proposer creates lifecycle proposals signed by identity.
type Proposer struct {
	id protoutil.Signer
}

func NewProposer(id protoutil.Signer) *Proposer {
	return &Proposer{id: id}
}

// Install creates install proposal, install is not bound to any channel.
func (p *Proposer) Install(pkgBytes []byte) (*Proposal, error) {
	return p.create("", installFunc, &lb.InstallChaincodeArgs{ChaincodeInstallPackage: pkgBytes})
}

// ApproveForMyOrg creates approval proposal of chaincode definition for the organization of identity.
func (p *Proposer) ApproveForMyOrg(channelName string, req *ApproveRequest) (*Proposal, error) {
	return p.create(channelName, approveForMyOrgFunc, &lb.ApproveChaincodeDefinitionForMyOrgArgs{
		Name:                req.Name,
		Version:             req.Version,
		Sequence:            req.Sequence,
		EndorsementPlugin:   req.EndorsementPlugin,
		ValidationPlugin:    req.ValidationPlugin,
		ValidationParameter: req.SignaturePolicy,
		InitRequired:        req.InitRequired,
		Collections:         req.Collections,
		Source: &lb.ChaincodeSource{
			Type: &lb.ChaincodeSource_LocalPackage{
				LocalPackage: &lb.ChaincodeSource_Local{PackageId: req.PackageID},
			},
		},
	})
}

func (p *Proposer) Commit(channelName string, args *lb.CommitChaincodeDefinitionArgs) (*Proposal, error) {
	return p.create(channelName, commitFunc, args)
}

// SignedTx assembles transaction envelope from proposal and successful responses.
func (p *Proposer) SignedTx(prop *Proposal, responses ...*pb.ProposalResponse) (*cb.Envelope, error) {
	env, err := protoutil.CreateSignedTx(prop.Proposal, p.id, responses...)
	if err != nil {
		return nil, fmt.Errorf("create signed tx: %w", err)
	}
	return env, nil
}

func (p *Proposer) create(channelName, fn string, args proto.Message) (*Proposal, error) {
	argsBytes, err := proto.Marshal(args)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s args", fn)
	}

	cis := &pb.ChaincodeInvocationSpec{
		ChaincodeSpec: &pb.ChaincodeSpec{
			ChaincodeId: &pb.ChaincodeID{Name: CcName},
			Input:       &pb.ChaincodeInput{Args: [][]byte{[]byte(fn), argsBytes}},
		},
	}

	creator, err := p.id.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize creator: %w", err)
	}
	nonce, err := util.NewNonce()
	if err != nil {
		return nil, err
	}

	txID := protoutil.ComputeTxID(nonce, creator)
	prop, _, err := protoutil.CreateChaincodeProposalWithTxIDNonceAndTransient(txID, cb.HeaderType_ENDORSER_TRANSACTION, channelName, cis, nonce, creator, nil)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create %s proposal", fn)
	}

	signed, err := util.SignProposal(prop, p.id)
	if err != nil {
		return nil, fmt.Errorf("sign proposal: %w", err)
	}
	return &Proposal{TxID: txID, Proposal: prop, Signed: signed}, nil
}
