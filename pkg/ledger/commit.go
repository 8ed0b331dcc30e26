package ledger

import (
	"context"
	"fmt"
	"regexp"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/util"
	"github.com/atomyze-foundation/hlf-lifecycle/system/lifecycle"
	"go.uber.org/zap"
)

// SubmitCommit endorses commit on peers and orders commit transaction exactly once.
func (f *Fabric) SubmitCommit(
	ctx context.Context,
	channel string,
	orderers []chaincode.OrdererTarget,
	endorsingPeers []chaincode.PeerTarget,
	def chaincode.Definition,
	collections chaincode.CollectionConfig,
) (string, error) {
	p, err := definitionParams(def, collections)
	if err != nil {
		return "", err
	}

	prop, err := f.prop.Commit(channel, commitArgs(def, p))
	if err != nil {
		return "", fmt.Errorf("create commit proposal: %w", err)
	}

	peers := f.withDiscovered(ctx, channel, endorsingPeers)
	endorsements, responses := f.endorse(ctx, peers, prop.Signed)
	if len(responses) == 0 {
		return "", endorsementFailure(endorsements)
	}

	env, err := f.prop.SignedTx(prop, responses...)
	if err != nil {
		return "", fmt.Errorf("assemble commit tx: %w", err)
	}

	logger := f.l.With(zap.String("channel", channel), zap.Stringer("definition", def), zap.String("txId", prop.TxID))
	logger.Debug("submit commit", zap.Int("endorsements", len(responses)))
	if err = f.submit(ctx, channel, orderers, env); err != nil {
		return "", fmt.Errorf("submit commit: %w", err)
	}
	logger.Info("chaincode committed")
	return prop.TxID, nil
}

// withDiscovered appends discovered _lifecycle endorsers missing among peers.
func (f *Fabric) withDiscovered(ctx context.Context, channel string, peers []chaincode.PeerTarget) []chaincode.PeerTarget {
	if f.disc == nil {
		return peers
	}
	discovered, err := f.disc.GetEndorsers(ctx, channel, lifecycle.CcName)
	if err != nil {
		f.l.Warn("discover endorsers", zap.String("channel", channel), zap.Error(err))
		return peers
	}

	var caCerts map[string][][]byte
	if conf, err := f.channelConfig(ctx, channel); err == nil {
		caCerts, _ = util.GetOrgCACerts(conf)
	}

	known := make(map[string]struct{}, len(peers))
	for _, p := range peers {
		known[p.Endpoint()] = struct{}{}
	}
	res := append(make([]chaincode.PeerTarget, 0, len(peers)+len(discovered)), peers...)
	for _, d := range discovered {
		t := d.Target()
		if _, ok := known[t.Endpoint()]; ok {
			continue
		}
		known[t.Endpoint()] = struct{}{}
		t.TLSCACerts = caCerts[t.MspID]
		res = append(res, t)
	}
	return res
}

// sequenceMismatchRe matches _lifecycle refusal of a definition with unexpected sequence.
var sequenceMismatchRe = regexp.MustCompile(`requested sequence is \d+, but new definition must be sequence \d+`)

func sequenceMismatch(endorsements []chaincode.PeerEndorsement) error {
	for _, e := range endorsements {
		if e.Status == chaincode.StatusEndorsementFailure && sequenceMismatchRe.MatchString(e.Message) {
			return fmt.Errorf("%w: peer %s: %s", chaincode.ErrSequenceMismatch, e.Peer, e.Message)
		}
	}
	return nil
}

func endorsementFailure(endorsements []chaincode.PeerEndorsement) error {
	if err := sequenceMismatch(endorsements); err != nil {
		return err
	}
	if len(endorsements) == 0 {
		return fmt.Errorf("%w: no endorsing peers", chaincode.ErrEndorsementFailed)
	}
	for _, e := range endorsements {
		if e.Status != chaincode.StatusConnectionFailure {
			return fmt.Errorf("%w: peer %s: %s", chaincode.ErrEndorsementFailed, e.Peer, e.Message)
		}
	}
	return fmt.Errorf("%w: peer %s: %s", chaincode.ErrUnavailable, endorsements[0].Peer, endorsements[0].Message)
}
