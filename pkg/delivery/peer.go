package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/peer"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/util"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	cutil "github.com/hyperledger/fabric/common/util"
	"github.com/hyperledger/fabric/protoutil"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotDelivered is returned when no peer reported the transaction.
var ErrNotDelivered = errors.New("transaction was not delivered by any peer")

// Client waits for transaction validation results.
type Client interface {
	// SubscribeTx watches filtered block streams of peers and returns the
	// validation code reported by the first of them.
	SubscribeTx(ctx context.Context, channelName string, txID string) (pb.TxValidationCode, error)
}

type peerCli struct {
	id    protoutil.Signer
	l     *zap.Logger
	peers []*peer.Peer
	pool  peer.Pool
}

// NewPeer creates delivery client listening filtered blocks of peers.
func NewPeer(logger *zap.Logger, pool peer.Pool, peers []*peer.Peer, id protoutil.Signer) Client {
	return &peerCli{l: logger.Named("delivery"), pool: pool, peers: peers, id: id}
}

func (c *peerCli) SubscribeTx(ctx context.Context, channelName string, txID string) (pb.TxValidationCode, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan pb.TxValidationCode, len(c.peers))
	var wg sync.WaitGroup
	for _, p := range c.peers {
		dCli, err := c.pool.GetDeliver(ctx, p)
		if err != nil {
			c.l.Error("peer deliver unavailable", zap.Stringer("peer", p), zap.Error(err))
			continue
		}
		wg.Add(1)
		go func(p *peer.Peer, dCli pb.DeliverClient) {
			defer wg.Done()
			code, err := c.watch(ctx, p, dCli, channelName, txID)
			if err != nil {
				if !canceled(err) {
					c.l.Error("watch transaction", zap.Stringer("peer", p), zap.String("txId", txID), zap.Error(err))
				}
				return
			}
			results <- code
		}(p, dCli)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	select {
	case code, ok := <-results:
		if ok {
			return code, nil
		}
		if ctx.Err() != nil {
			return -1, fmt.Errorf("wait tx %s: %w", txID, ctx.Err())
		}
		return -1, fmt.Errorf("tx %s: %w", txID, ErrNotDelivered)
	case <-ctx.Done():
		return -1, fmt.Errorf("wait tx %s: %w", txID, ctx.Err())
	}
}

// watch reads filtered blocks of peer starting from the newest one until txID shows up.
func (c *peerCli) watch(ctx context.Context, p *peer.Peer, cli pb.DeliverClient, channelName, txID string) (pb.TxValidationCode, error) {
	stream, err := cli.DeliverFiltered(ctx)
	if err != nil {
		return -1, fmt.Errorf("open deliver filtered: %w", err)
	}
	defer func() {
		if err := stream.CloseSend(); err != nil {
			c.l.Debug("close deliver stream", zap.Stringer("peer", p), zap.Error(err))
		}
	}()

	var tlsCertHash []byte
	if len(p.ClientCertificate.Certificate) > 0 {
		tlsCertHash = cutil.ComputeSHA256(p.ClientCertificate.Certificate[0])
	}
	env, err := util.GetSeekNewestEnvelope(channelName, c.id, tlsCertHash)
	if err != nil {
		return -1, err
	}
	if err = stream.Send(env); err != nil {
		return -1, fmt.Errorf("send seek envelope: %w", err)
	}
	if ready := util.FromContext(ctx); ready != nil {
		ready.Signal()
	}

	for {
		resp, err := stream.Recv()
		if err != nil {
			return -1, fmt.Errorf("receive: %w", err)
		}
		switch r := resp.Type.(type) {
		case *pb.DeliverResponse_FilteredBlock:
			for _, tx := range r.FilteredBlock.GetFilteredTransactions() {
				if tx.GetTxid() == txID {
					c.l.Debug("transaction delivered", zap.String("txId", txID), zap.Stringer("code", tx.GetTxValidationCode()))
					return tx.GetTxValidationCode(), nil
				}
			}
		case *pb.DeliverResponse_Status:
			return -1, fmt.Errorf("deliver stopped with status %s", r.Status)
		}
	}
}

func canceled(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	s, ok := status.FromError(errors.Unwrap(err))
	return ok && s.Code() == codes.Canceled
}
