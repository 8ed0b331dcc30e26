package mocks

import (
	"context"
	"errors"

	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/hyperledger/fabric-protos-go/orderer"
	"go.uber.org/atomic"
	"google.golang.org/grpc"
)

// OrdererClient is an orderer broadcast client double counting submitted envelopes.
type OrdererClient struct {
	broadCast bool
	status    common.Status

	Sent atomic.Int32
}

// Broadcast opens broadcast stream or fails when the orderer is configured unreachable.
func (o *OrdererClient) Broadcast(_ context.Context, _ ...grpc.CallOption) (orderer.AtomicBroadcast_BroadcastClient, error) {
	if o.broadCast {
		return &ordererBroadCastClient{o: o}, nil
	}
	return nil, errors.New("broadcast err")
}

// Deliver is not supported by the double.
func (o *OrdererClient) Deliver(_ context.Context, _ ...grpc.CallOption) (orderer.AtomicBroadcast_DeliverClient, error) {
	return nil, errors.New("deliver err")
}

// NewOrdererClient creates orderer double accepting every envelope or unreachable one.
func NewOrdererClient(broadCast bool) *OrdererClient {
	return &OrdererClient{broadCast: broadCast, status: common.Status_SUCCESS}
}

// NewRejectingOrdererClient creates orderer double answering with status.
func NewRejectingOrdererClient(status common.Status) *OrdererClient {
	return &OrdererClient{broadCast: true, status: status}
}

type ordererBroadCastClient struct {
	grpc.ClientStream
	o *OrdererClient
}

func (c *ordererBroadCastClient) Send(_ *common.Envelope) error {
	c.o.Sent.Inc()
	return nil
}

func (c *ordererBroadCastClient) Recv() (*orderer.BroadcastResponse, error) {
	return &orderer.BroadcastResponse{
		Status: c.o.status,
		Info:   c.o.status.String(),
	}, nil
}
