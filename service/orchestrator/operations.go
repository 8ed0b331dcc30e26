package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

func (o *Orchestrator) install(ctx context.Context, op *operation) (*Result, error) {
	endorsements, err := op.net.Ledger.SendInstallProposal(ctx, op.net.Peers, op.Package)
	if err != nil {
		return nil, ledgerError(op.scope, err)
	}

	agg, err := Aggregate(op.scope, endorsements)
	if err != nil {
		return nil, err
	}
	if agg.PackageID != op.Definition.PackageID {
		return nil, &chaincode.PackageIdentityMismatchError{
			Scope:           op.scope,
			FirstPeer:       "package",
			FirstPackageID:  op.Definition.PackageID,
			SecondPeer:      agg.ReferencePeer,
			SecondPackageID: agg.PackageID,
		}
	}

	return fromAggregated(agg, fmt.Sprintf("installed on %d of %d peers", len(agg.SucceededPeers), len(endorsements))), nil
}

func (o *Orchestrator) approve(ctx context.Context, op *operation) (*Result, error) {
	current, err := o.nextSequence(ctx, op)
	if err != nil {
		return nil, err
	}

	peers := op.net.LocalPeers()
	if len(peers) == 0 {
		return nil, &chaincode.InsufficientEndorsementError{Scope: op.scope, Message: "no peers of organization " + op.net.MspID}
	}

	endorsements, err := op.net.Ledger.SendApprovalProposal(ctx, op.net.Channel, peers, op.Definition, op.Collections)
	if err != nil {
		return nil, sequenceAware(op, current, err)
	}

	agg, err := Aggregate(op.scope, endorsements)
	if err != nil {
		return nil, err
	}
	res := fromAggregated(agg, fmt.Sprintf("approved by %s", strings.Join(agg.SucceededOrgs, ", ")))
	res.Sequence, res.PackageID = op.Definition.Sequence, op.Definition.PackageID
	return res, nil
}

func (o *Orchestrator) commit(ctx context.Context, op *operation) (*Result, error) {
	current, err := o.nextSequence(ctx, op)
	if err != nil {
		return nil, err
	}

	readiness, err := op.net.Ledger.CheckCommitReadiness(ctx, op.net.Channel, op.Definition, op.Collections)
	if err != nil {
		return nil, ledgerError(op.scope, err)
	}
	approved := approvedOrganizations(readiness)
	if !readiness.Ready {
		return nil, &chaincode.InsufficientEndorsementError{
			Scope:   op.scope,
			Message: fmt.Sprintf("commit readiness not reached, approved by %d of %d organizations", len(approved), len(readiness.Approvals)),
		}
	}

	endorsers := op.net.PeersOf(approved...)
	if len(endorsers) == 0 {
		return nil, &chaincode.InsufficientEndorsementError{Scope: op.scope, Message: "no peers of approving organizations"}
	}

	txID, err := op.net.Ledger.SubmitCommit(ctx, op.net.Channel, op.net.Orderers, endorsers, op.Definition, op.Collections)
	if err != nil {
		return nil, sequenceAware(op, current, err)
	}

	return &Result{
		Decision:      chaincode.DecisionAccepted,
		Message:       "committed",
		TxID:          txID,
		Sequence:      op.Definition.Sequence,
		PackageID:     op.Definition.PackageID,
		Organizations: approved,
	}, nil
}

func (o *Orchestrator) checkCommitReadiness(ctx context.Context, op *operation) (*Result, error) {
	current := o.tracker.CurrentSequence(ctx, op.net, op.Definition.Name, op.Definition.Version)
	if seq := op.Definition.Sequence; seq != current && seq != current+1 {
		return nil, &chaincode.SequenceConflictError{Scope: op.scope, Expected: current + 1, Current: current}
	}

	readiness, err := op.net.Ledger.CheckCommitReadiness(ctx, op.net.Channel, op.Definition, op.Collections)
	if err != nil {
		return nil, ledgerError(op.scope, err)
	}

	approved := approvedOrganizations(readiness)
	res := &Result{
		Decision:      chaincode.DecisionRejected,
		Message:       fmt.Sprintf("approved by %d of %d organizations", len(approved), len(readiness.Approvals)),
		Sequence:      op.Definition.Sequence,
		Approvals:     readiness.Approvals,
		Ready:         readiness.Ready,
		Organizations: approved,
	}
	if readiness.Ready {
		res.Decision = chaincode.DecisionAccepted
	}
	return res, nil
}

func (o *Orchestrator) queryApprovedOrganizations(ctx context.Context, op *operation) (*Result, error) {
	orgs, err := op.net.Ledger.QueryApprovedOrganizations(ctx, op.net.Channel, op.Definition, op.Collections)
	if err != nil {
		return nil, ledgerError(op.scope, err)
	}
	return &Result{
		Decision:      chaincode.DecisionAccepted,
		Message:       fmt.Sprintf("approved by %d organizations", len(orgs)),
		Sequence:      op.Definition.Sequence,
		Organizations: orgs,
	}, nil
}

func (o *Orchestrator) querySequence(ctx context.Context, op *operation) (*Result, error) {
	seq := o.tracker.CurrentSequence(ctx, op.net, op.Definition.Name, op.Definition.Version)
	return &Result{
		Decision: chaincode.DecisionAccepted,
		Message:  fmt.Sprintf("current sequence %d", seq),
		Sequence: seq,
	}, nil
}

func (o *Orchestrator) queryPackageID(ctx context.Context, op *operation) (*Result, error) {
	id := o.tracker.CurrentPackageID(ctx, op.net, op.Definition.Name, op.Definition.Version)
	return &Result{
		Decision:  chaincode.DecisionAccepted,
		Message:   fmt.Sprintf("current package id %q", id),
		PackageID: id,
	}, nil
}

// nextSequence checks that definition sequence follows committed one and returns committed sequence.
func (o *Orchestrator) nextSequence(ctx context.Context, op *operation) (int64, error) {
	current := o.tracker.CurrentSequence(ctx, op.net, op.Definition.Name, op.Definition.Version)
	if op.Definition.Sequence != current+1 {
		return current, &chaincode.SequenceConflictError{Scope: op.scope, Expected: current + 1, Current: current}
	}
	return current, nil
}

// sequenceAware maps ledger failure, a sequence refusal means another caller moved the sequence.
func sequenceAware(op *operation, current int64, err error) error {
	if errors.Is(err, chaincode.ErrSequenceMismatch) {
		op.logger.Debug("ledger refused sequence", zap.Error(err))
		return &chaincode.SequenceConflictError{Scope: op.scope, Expected: current + 1, Current: current}
	}
	return ledgerError(op.scope, err)
}

// approvedOrganizations returns sorted organizations whose approval is set.
func approvedOrganizations(r chaincode.CommitReadiness) []string {
	res := make([]string, 0, len(r.Approvals))
	for org, ok := range r.Approvals {
		if ok {
			res = append(res, org)
		}
	}
	slices.Sort(res)
	return res
}

func fromAggregated(agg chaincode.AggregatedResult, msg string) *Result {
	return &Result{
		Decision:       agg.Decision,
		Message:        msg,
		PackageID:      agg.PackageID,
		SucceededPeers: agg.SucceededPeers,
		FailedPeers:    agg.FailedPeers,
	}
}
