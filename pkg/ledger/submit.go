package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/orderer"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/util"
	"github.com/hyperledger/fabric-protos-go/common"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"go.uber.org/zap"
)

// submit sends transaction to the ordering service once and, when enabled,
// waits for its validation code on local peers.
func (f *Fabric) submit(ctx context.Context, channel string, targets []chaincode.OrdererTarget, env *common.Envelope) error {
	txID, err := util.GetTxIDFromEnvelope(env)
	if err != nil {
		return fmt.Errorf("get tx id: %w", err)
	}
	conf, err := f.channelConfig(ctx, channel)
	if err != nil {
		return fmt.Errorf("get channel config: %w", err)
	}
	orderers, consType, err := util.GetOrdererConfig(conf)
	if err != nil {
		return fmt.Errorf("get orderer config: %w", err)
	}
	if len(targets) > 0 {
		orderers = toOrderers(targets)
	}

	if f.dlv == nil {
		return f.broadcast(ctx, env, consType, orderers)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if f.opts.CommitTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, f.opts.CommitTimeout)
		defer cancel()
	}

	type result struct {
		code pb.TxValidationCode
		err  error
	}
	ready := util.NewReady()
	resCh := make(chan result, 1)
	go func() {
		code, err := f.dlv.SubscribeTx(util.NewContext(ctx, ready), channel, txID)
		resCh <- result{code: code, err: err}
	}()

	// block stream must be open before broadcast, otherwise the block can be missed
	select {
	case <-ready.Done():
	case res := <-resCh:
		return fmt.Errorf("%w: subscribe tx %s: %v", chaincode.ErrUnavailable, txID, res.err)
	case <-ctx.Done():
		return fmt.Errorf("%w: subscribe tx %s: %v", chaincode.ErrUnavailable, txID, ctx.Err())
	}

	if err = f.broadcast(ctx, env, consType, orderers); err != nil {
		return err
	}

	res := <-resCh
	if res.err != nil {
		return fmt.Errorf("%w: wait tx %s: %v", chaincode.ErrUnavailable, txID, res.err)
	}
	if res.code != pb.TxValidationCode_VALID {
		return fmt.Errorf("%w: tx %s invalidated with code %s", chaincode.ErrOrdererRejected, txID, res.code)
	}
	f.l.Debug("transaction committed", zap.String("txId", txID))
	return nil
}

// broadcast sends envelope to one random orderer on Raft, to all of them with BFT quorum otherwise.
func (f *Fabric) broadcast(ctx context.Context, env *common.Envelope, consType orderer.ConsensusType, orderers []*orderer.Orderer) error {
	if len(orderers) == 0 {
		return fmt.Errorf("%w: no orderers", chaincode.ErrUnavailable)
	}

	var (
		selected []*orderer.Orderer
		quorum   int
	)
	switch consType {
	case orderer.ConsensusRaft:
		selected = []*orderer.Orderer{orderers[rand.Intn(len(orderers))]} //nolint:gosec
		quorum = 1
	case orderer.ConsensusBFT:
		selected = orderers
		quorum = quorumBft(len(orderers))
	default:
		return fmt.Errorf("unknown consensus type: %s", consType)
	}

	clients := make([]ab.AtomicBroadcastClient, 0, len(selected))
	for _, o := range selected {
		cli, err := f.ords.Get(o)
		if err != nil {
			return fmt.Errorf("%w: get orderer %s from pool: %v", chaincode.ErrUnavailable, o, err)
		}
		clients = append(clients, cli)
	}

	f.l.Debug("broadcast envelope", zap.Stringer("consensus", consType), zap.Int("orderers", len(clients)), zap.Int("quorum", quorum))
	if err := util.OrdererBroadcast(ctx, f.l, env, quorum, clients...); err != nil {
		if errors.Is(err, util.ErrBroadcastRejected) {
			return fmt.Errorf("%w: %v", chaincode.ErrOrdererRejected, err)
		}
		return fmt.Errorf("%w: broadcast: %v", chaincode.ErrUnavailable, err)
	}
	return nil
}

func quorumBft(n int) int {
	f := (n - 1) / 3                                         //nolint:gomnd
	return int(math.Ceil((float64(n) + float64(f) + 1) / 2.0)) //nolint:gomnd
}

func toOrderers(targets []chaincode.OrdererTarget) []*orderer.Orderer {
	res := make([]*orderer.Orderer, 0, len(targets))
	for _, t := range targets {
		res = append(res, orderer.FromTarget(t))
	}
	return res
}
