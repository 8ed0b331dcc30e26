package util

import (
	"context"
	"fmt"

	"github.com/golang/protobuf/proto" //nolint:staticcheck
	cb "github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/hyperledger/fabric/protoutil"
	"github.com/pkg/errors"
)

// ResponseError is returned when a peer answered the proposal with non-success status.
type ResponseError struct {
	Status  int32
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("proposal failed with status: %d - %s", e.Status, e.Message)
}

func SignProposal(proposal *pb.Proposal, signer protoutil.Signer) (*pb.SignedProposal, error) {
	// check for nil argument
	if proposal == nil {
		return nil, errors.New("proposal cannot be nil")
	}

	proposalBytes, err := proto.Marshal(proposal)
	if err != nil {
		return nil, errors.Wrap(err, "error marshaling proposal")
	}

	signature, err := signer.Sign(proposalBytes)
	if err != nil {
		return nil, err
	}

	return &pb.SignedProposal{
		ProposalBytes: proposalBytes,
		Signature:     signature,
	}, nil
}

// ProcessProposal sends signed proposal to endorser. Transport failures are returned wrapped,
// a response with non-success status is returned along with *ResponseError.
func ProcessProposal(ctx context.Context, endCli pb.EndorserClient, signedProp *pb.SignedProposal) (*pb.ProposalResponse, error) {
	resp, err := endCli.ProcessProposal(ctx, signedProp)
	if err != nil {
		return nil, fmt.Errorf("process proposal: %w", err)
	}

	if resp == nil {
		return nil, errors.New("received nil proposal response")
	}

	if resp.Response == nil {
		return nil, errors.New("received proposal response with nil response")
	}

	if resp.Response.Status < int32(cb.Status_SUCCESS) || resp.Response.Status >= int32(cb.Status_BAD_REQUEST) {
		return resp, &ResponseError{Status: resp.Response.Status, Message: resp.Response.Message}
	}

	return resp, nil
}
