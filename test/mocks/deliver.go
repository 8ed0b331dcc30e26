package mocks

import (
	"context"
	"errors"
	"io"

	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/grpc"
)

// DeliverClient is a deliver service double streaming prepared filtered blocks.
type DeliverClient struct {
	Blocks []*pb.FilteredBlock
	// Hold keeps stream open after blocks are sent until context is done.
	Hold bool
}

func (d *DeliverClient) Deliver(context.Context, ...grpc.CallOption) (pb.Deliver_DeliverClient, error) {
	return nil, errors.New("deliver is not supported")
}

func (d *DeliverClient) DeliverFiltered(ctx context.Context, _ ...grpc.CallOption) (pb.Deliver_DeliverFilteredClient, error) {
	return &filteredStream{ctx: ctx, d: d}, nil
}

func (d *DeliverClient) DeliverWithPrivateData(context.Context, ...grpc.CallOption) (pb.Deliver_DeliverWithPrivateDataClient, error) {
	return nil, errors.New("deliver with private data is not supported")
}

type filteredStream struct {
	grpc.ClientStream
	ctx  context.Context
	d    *DeliverClient
	sent bool
	next int
}

func (s *filteredStream) Send(*common.Envelope) error {
	s.sent = true
	return nil
}

func (s *filteredStream) CloseSend() error {
	return nil
}

func (s *filteredStream) Recv() (*pb.DeliverResponse, error) {
	if !s.sent {
		return nil, errors.New("seek envelope was not sent")
	}
	if s.next < len(s.d.Blocks) {
		b := s.d.Blocks[s.next]
		s.next++
		return &pb.DeliverResponse{Type: &pb.DeliverResponse_FilteredBlock{FilteredBlock: b}}, nil
	}
	if s.d.Hold {
		<-s.ctx.Done()
		return nil, s.ctx.Err()
	}
	return nil, io.EOF
}

// FilteredBlock creates filtered block of transactions with validation codes.
func FilteredBlock(number uint64, txs map[string]pb.TxValidationCode) *pb.FilteredBlock {
	b := &pb.FilteredBlock{Number: number}
	for id, code := range txs {
		b.FilteredTransactions = append(b.FilteredTransactions, &pb.FilteredTransaction{Txid: id, TxValidationCode: code})
	}
	return b
}
