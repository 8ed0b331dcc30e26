package mocks

import (
	"context"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/mock"
	"google.golang.org/grpc"
)

// EndorserClient is a mock type for the EndorserClient type
type EndorserClient struct {
	mock.Mock
}

// ProcessProposal provides a mock function with given fields: ctx, in, opts
func (_m *EndorserClient) ProcessProposal(ctx context.Context, in *pb.SignedProposal, opts ...grpc.CallOption) (*pb.ProposalResponse, error) {
	ret := _m.Called(ctx, in)

	var r0 *pb.ProposalResponse
	if rf, ok := ret.Get(0).(func(context.Context, *pb.SignedProposal) *pb.ProposalResponse); ok {
		r0 = rf(ctx, in)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*pb.ProposalResponse)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, *pb.SignedProposal) error); ok {
		r1 = rf(ctx, in)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewEndorserClient creates a new instance of EndorserClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewEndorserClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *EndorserClient {
	m := &EndorserClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
