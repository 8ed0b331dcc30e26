package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/peer"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/util"
	"github.com/atomyze-foundation/hlf-lifecycle/test/mocks"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubscribeTx(t *testing.T) {
	p0 := &peer.Peer{Host: "peer0", Port: 7051, MspID: "Org1MSP"}
	p1 := &peer.Peer{Host: "peer1", Port: 7051, MspID: "Org1MSP"}

	pool := mocks.NewPeerPool().
		AddDeliver(p0, &mocks.DeliverClient{Hold: true}).
		AddDeliver(p1, &mocks.DeliverClient{Blocks: []*pb.FilteredBlock{
			mocks.FilteredBlock(10, map[string]pb.TxValidationCode{"other": pb.TxValidationCode_VALID}),
			mocks.FilteredBlock(11, map[string]pb.TxValidationCode{"tx1": pb.TxValidationCode_MVCC_READ_CONFLICT}),
		}})

	ready := util.NewReady()
	ctx, cancel := context.WithTimeout(util.NewContext(context.Background(), ready), time.Second)
	defer cancel()

	code, err := NewPeer(zap.NewNop(), pool, []*peer.Peer{p0, p1}, &mocks.Signer{MspID: "Org1MSP"}).SubscribeTx(ctx, "ch1", "tx1")
	require.NoError(t, err)
	assert.Equal(t, pb.TxValidationCode_MVCC_READ_CONFLICT, code)

	select {
	case <-ready.Done():
	default:
		t.Fatal("ready must be signalled after stream opened")
	}
}

func TestSubscribeTxNotDelivered(t *testing.T) {
	p0 := &peer.Peer{Host: "peer0", Port: 7051, MspID: "Org1MSP"}
	p1 := &peer.Peer{Host: "peer1", Port: 7051, MspID: "Org1MSP"}
	pool := mocks.NewPeerPool().AddDeliver(p0, &mocks.DeliverClient{})

	_, err := NewPeer(zap.NewNop(), pool, []*peer.Peer{p0, p1}, &mocks.Signer{MspID: "Org1MSP"}).
		SubscribeTx(context.Background(), "ch1", "tx1")
	assert.ErrorIs(t, err, ErrNotDelivered)
}

func TestSubscribeTxCanceled(t *testing.T) {
	p0 := &peer.Peer{Host: "peer0", Port: 7051, MspID: "Org1MSP"}
	pool := mocks.NewPeerPool().AddDeliver(p0, &mocks.DeliverClient{Hold: true})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewPeer(zap.NewNop(), pool, []*peer.Peer{p0}, &mocks.Signer{MspID: "Org1MSP"}).SubscribeTx(ctx, "ch1", "tx1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
