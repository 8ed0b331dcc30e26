package mocks

import (
	"context"
	"sync"

	cb "github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/grpc"
)

// Handler answers proposal by raw first argument of the invoked function.
type Handler func(raw []byte) (*pb.ProposalResponse, error)

// RoutingEndorser is an endorser double dispatching proposals by invoked function name.
type RoutingEndorser struct {
	mx       sync.Mutex
	handlers map[string]Handler
	calls    map[string]int
}

func NewRoutingEndorser() *RoutingEndorser {
	return &RoutingEndorser{handlers: make(map[string]Handler), calls: make(map[string]int)}
}

// Handle registers handler of function.
func (e *RoutingEndorser) Handle(fn string, h Handler) *RoutingEndorser {
	e.mx.Lock()
	defer e.mx.Unlock()
	e.handlers[fn] = h
	return e
}

// Calls returns number of proposals invoking function.
func (e *RoutingEndorser) Calls(fn string) int {
	e.mx.Lock()
	defer e.mx.Unlock()
	return e.calls[fn]
}

func (e *RoutingEndorser) ProcessProposal(_ context.Context, sp *pb.SignedProposal, _ ...grpc.CallOption) (*pb.ProposalResponse, error) {
	fn, raw, err := ProposalArgs(sp)
	if err != nil {
		return ErrorResponse(cb.Status_BAD_REQUEST, err.Error()), nil
	}
	e.mx.Lock()
	e.calls[fn]++
	h, ok := e.handlers[fn]
	e.mx.Unlock()
	if !ok {
		return ErrorResponse(cb.Status_INTERNAL_SERVER_ERROR, "unknown function "+fn), nil
	}
	return h(raw)
}
