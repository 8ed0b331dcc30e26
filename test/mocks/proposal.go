package mocks

import (
	"fmt"

	"github.com/golang/protobuf/proto" //nolint:staticcheck
	cb "github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/hyperledger/fabric/protoutil"
)

// ProposalArgs extracts function name and raw arguments of a signed chaincode proposal.
func ProposalArgs(sp *pb.SignedProposal) (string, []byte, error) {
	prop, err := protoutil.UnmarshalProposal(sp.ProposalBytes)
	if err != nil {
		return "", nil, fmt.Errorf("unmarshal proposal: %w", err)
	}
	cpp, err := protoutil.UnmarshalChaincodeProposalPayload(prop.Payload)
	if err != nil {
		return "", nil, fmt.Errorf("unmarshal proposal payload: %w", err)
	}
	cis, err := protoutil.UnmarshalChaincodeInvocationSpec(cpp.Input)
	if err != nil {
		return "", nil, fmt.Errorf("unmarshal invocation spec: %w", err)
	}
	args := cis.GetChaincodeSpec().GetInput().GetArgs()
	if len(args) == 0 {
		return "", nil, fmt.Errorf("no args")
	}
	var raw []byte
	if len(args) > 1 {
		raw = args[1]
	}
	return string(args[0]), raw, nil
}

// SuccessResponse returns endorsed response carrying marshaled payload.
func SuccessResponse(payload proto.Message) *pb.ProposalResponse {
	var b []byte
	if payload != nil {
		b = protoutil.MarshalOrPanic(payload)
	}
	return &pb.ProposalResponse{
		Version:     1,
		Response:    &pb.Response{Status: int32(cb.Status_SUCCESS), Payload: b},
		Payload:     []byte("proposal-response-payload"),
		Endorsement: &pb.Endorsement{Endorser: []byte("endorser"), Signature: []byte("signature")},
	}
}

// ErrorResponse returns response with failure status and message.
func ErrorResponse(status cb.Status, msg string) *pb.ProposalResponse {
	return &pb.ProposalResponse{
		Version:  1,
		Response: &pb.Response{Status: int32(status), Message: msg},
	}
}
