package ledger

import (
	"context"
	"fmt"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"go.uber.org/zap"
)

// SendApprovalProposal endorses approval on peers of the organization and, when any of them
// endorsed, orders the approval transaction assembled from successful responses.
func (f *Fabric) SendApprovalProposal(
	ctx context.Context,
	channel string,
	peers []chaincode.PeerTarget,
	def chaincode.Definition,
	collections chaincode.CollectionConfig,
) ([]chaincode.PeerEndorsement, error) {
	p, err := definitionParams(def, collections)
	if err != nil {
		return nil, err
	}

	prop, err := f.prop.ApproveForMyOrg(channel, approveRequest(def, p))
	if err != nil {
		return nil, fmt.Errorf("create approve proposal: %w", err)
	}

	endorsements, responses := f.endorse(ctx, peers, prop.Signed)
	if len(responses) == 0 {
		return endorsements, sequenceMismatch(endorsements)
	}

	env, err := f.prop.SignedTx(prop, responses...)
	if err != nil {
		return endorsements, fmt.Errorf("assemble approval tx: %w", err)
	}

	logger := f.l.With(zap.String("channel", channel), zap.Stringer("definition", def), zap.String("txId", prop.TxID))
	logger.Debug("submit approval")
	if err = f.submit(ctx, channel, f.opts.Orderers, env); err != nil {
		return endorsements, fmt.Errorf("submit approval: %w", err)
	}
	logger.Info("chaincode approved")
	return endorsements, nil
}
