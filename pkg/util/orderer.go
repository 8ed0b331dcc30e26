package util

import (
	"context"
	"fmt"
	"math"

	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/hyperledger/fabric-protos-go/orderer"
	"github.com/hyperledger/fabric/protoutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrBroadcastRejected is returned when orderer answered with non-success status.
var ErrBroadcastRejected = errors.New("broadcast rejected")

// GetSeekNewestEnvelope creates a signed seek request from the newest block onwards, bound to the TLS client certificate.
func GetSeekNewestEnvelope(channelName string, id protoutil.Signer, tlsCertHash []byte) (*common.Envelope, error) {
	seekInfo := &orderer.SeekInfo{
		Start: &orderer.SeekPosition{Type: &orderer.SeekPosition_Newest{Newest: &orderer.SeekNewest{}}},
		Stop: &orderer.SeekPosition{Type: &orderer.SeekPosition_Specified{
			Specified: &orderer.SeekSpecified{Number: math.MaxUint64},
		}},
		Behavior: orderer.SeekInfo_BLOCK_UNTIL_READY,
	}
	env, err := protoutil.CreateSignedEnvelopeWithTLSBinding(common.HeaderType_DELIVER_SEEK_INFO, channelName, id, seekInfo, 0, 0, tlsCertHash)
	if err != nil {
		return nil, fmt.Errorf("create seek envelope: %w", err)
	}
	return env, nil
}

// OrdererBroadcast sends env to every orderer and returns once quorum of them accepted it.
// A single acceptance is still reported as success when quorum cannot be reached,
// an explicit refusal is preferred over transport errors otherwise.
func OrdererBroadcast(ctx context.Context, l *zap.Logger, env *common.Envelope, quorum int, ordererClients ...orderer.AtomicBroadcastClient) error {
	if len(ordererClients) == 0 {
		return errors.New("no orderers to broadcast")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan error, len(ordererClients))
	for _, ord := range ordererClients {
		go func(ord orderer.AtomicBroadcastClient) {
			results <- broadcast(ctx, ord, env)
		}(ord)
	}

	var lastErr, rejected error
	accepted := 0
	for range ordererClients {
		err := <-results
		if err == nil {
			if accepted++; accepted >= quorum {
				l.Debug("broadcast quorum reached", zap.Int("accepted", accepted), zap.Int("quorum", quorum))
				return nil
			}
			continue
		}
		l.Debug("orderer broadcast failed", zap.Error(err))
		lastErr = err
		if errors.Is(err, ErrBroadcastRejected) {
			rejected = err
		}
	}

	if accepted > 0 {
		l.Warn("broadcast accepted below quorum", zap.Int("accepted", accepted), zap.Int("quorum", quorum))
		return nil
	}
	l.Error("broadcast not accepted by any orderer", zap.Int("orderers", len(ordererClients)))
	if rejected != nil {
		return rejected
	}
	return lastErr
}

func broadcast(ctx context.Context, ord orderer.AtomicBroadcastClient, env *common.Envelope) error {
	stream, err := ord.Broadcast(ctx)
	if err != nil {
		return fmt.Errorf("open broadcast stream: %w", err)
	}
	if err = stream.Send(env); err != nil {
		return fmt.Errorf("send envelope: %w", err)
	}
	resp, err := stream.Recv()
	if err != nil {
		return fmt.Errorf("receive broadcast response: %w", err)
	}
	if resp.GetStatus() != common.Status_SUCCESS {
		return fmt.Errorf("%w: status %s: %s", ErrBroadcastRejected, resp.GetStatus(), resp.GetInfo())
	}
	return nil
}
