package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/network"
	"go.uber.org/zap"
)

// Request is a lifecycle operation on one network.
type Request struct {
	Network     string
	Operation   chaincode.OperationType
	Definition  chaincode.Definition
	Collections chaincode.CollectionConfig
	// Package is an installable chaincode artifact, used by INSTALL only.
	Package []byte
}

// Result of a lifecycle operation.
type Result struct {
	Operation      chaincode.OperationType `json:"operation"`
	Network        string                  `json:"network"`
	Decision       chaincode.Decision      `json:"decision"`
	Message        string                  `json:"message"`
	PackageID      string                  `json:"packageId,omitempty"`
	Sequence       int64                   `json:"sequence"`
	Organizations  []string                `json:"organizations,omitempty"`
	Approvals      map[string]bool         `json:"approvals,omitempty"`
	Ready          bool                    `json:"ready,omitempty"`
	TxID           string                  `json:"txId,omitempty"`
	SucceededPeers []string                `json:"succeededPeers,omitempty"`
	FailedPeers    []string                `json:"failedPeers,omitempty"`
}

// Networks resolves network handles by name.
type Networks interface {
	Get(name string) (*network.Network, bool)
}

type handler func(ctx context.Context, op *operation) (*Result, error)

// operation is a validated request bound to its network.
type operation struct {
	Request
	net    *network.Network
	scope  chaincode.Scope
	logger *zap.Logger
}

// Orchestrator drives chaincode lifecycle operations on configured networks.
type Orchestrator struct {
	logger   *zap.Logger
	networks Networks
	tracker  *Tracker
	handlers map[chaincode.OperationType]handler
}

// New creates orchestrator over networks.
func New(logger *zap.Logger, networks Networks) *Orchestrator {
	o := &Orchestrator{
		logger:   logger.Named("orchestrator"),
		networks: networks,
		tracker:  NewTracker(logger),
	}
	o.handlers = map[chaincode.OperationType]handler{
		chaincode.OperationInstall:                    o.install,
		chaincode.OperationApprove:                    o.approve,
		chaincode.OperationCommit:                     o.commit,
		chaincode.OperationCheckCommitReadiness:       o.checkCommitReadiness,
		chaincode.OperationQueryApprovedOrganizations: o.queryApprovedOrganizations,
		chaincode.OperationQuerySequence:              o.querySequence,
		chaincode.OperationQueryPackageID:             o.queryPackageID,
	}
	return o
}

// PerformOperation resolves network, validates request and runs the operation.
func (o *Orchestrator) PerformOperation(ctx context.Context, req Request) (*Result, error) {
	scope := chaincode.NewScope(req.Operation, req.Network, req.Definition)

	h, ok := o.handlers[req.Operation]
	if !ok {
		return nil, &chaincode.InvalidDefinitionError{Scope: scope, Field: "operation", Reason: "unsupported operation"}
	}

	n, ok := o.networks.Get(req.Network)
	if !ok {
		return nil, &chaincode.UnknownNetworkError{Scope: scope}
	}

	def, err := validate(req.Operation, req.Definition, req.Collections, req.Package)
	if err != nil {
		var inv *chaincode.InvalidDefinitionError
		if errors.As(err, &inv) {
			inv.Scope = scope
		}
		return nil, err
	}
	req.Definition = def

	op := &operation{
		Request: req,
		net:     n,
		scope:   chaincode.NewScope(req.Operation, req.Network, def),
		logger: o.logger.With(
			zap.Stringer("operation", req.Operation),
			zap.String("network", n.Name),
			zap.String("channel", n.Channel),
			zap.Stringer("definition", def),
		),
	}

	op.logger.Debug("perform operation")
	res, err := h(ctx, op)
	if err != nil {
		op.logger.Warn("operation failed", zap.Error(err))
		return nil, err
	}
	res.Operation, res.Network = req.Operation, n.Name
	op.logger.Info("operation performed", zap.Stringer("decision", res.Decision))
	return res, nil
}

// CurrentSequence returns committed sequence of chaincode version on network.
func (o *Orchestrator) CurrentSequence(ctx context.Context, networkName, name, version string) (int64, error) {
	res, err := o.PerformOperation(ctx, Request{
		Network:    networkName,
		Operation:  chaincode.OperationQuerySequence,
		Definition: chaincode.Definition{Name: name, Version: version},
	})
	if err != nil {
		return 0, err
	}
	return res.Sequence, nil
}

// CurrentPackageID returns package identity bound to chaincode version on network.
func (o *Orchestrator) CurrentPackageID(ctx context.Context, networkName, name, version string) (string, error) {
	res, err := o.PerformOperation(ctx, Request{
		Network:    networkName,
		Operation:  chaincode.OperationQueryPackageID,
		Definition: chaincode.Definition{Name: name, Version: version},
	})
	if err != nil {
		return "", err
	}
	return res.PackageID, nil
}

// ApprovedOrganizations returns sorted organizations approved the definition.
func (o *Orchestrator) ApprovedOrganizations(
	ctx context.Context,
	networkName string,
	def chaincode.Definition,
	collections chaincode.CollectionConfig,
) ([]string, error) {
	res, err := o.PerformOperation(ctx, Request{
		Network:     networkName,
		Operation:   chaincode.OperationQueryApprovedOrganizations,
		Definition:  def,
		Collections: collections,
	})
	if err != nil {
		return nil, err
	}
	return res.Organizations, nil
}

// ledgerError maps ledger client failure into error of operation scope.
func ledgerError(scope chaincode.Scope, err error) error {
	switch {
	case errors.Is(err, chaincode.ErrOrdererRejected):
		return &chaincode.CommitRejectedError{Scope: scope, Err: err}
	case errors.Is(err, chaincode.ErrUnavailable):
		return &chaincode.LedgerUnavailableError{Scope: scope, Err: err}
	case errors.Is(err, chaincode.ErrEndorsementFailed):
		return &chaincode.InsufficientEndorsementError{Scope: scope, Message: err.Error()}
	}
	return fmt.Errorf("%s: %w", scope, err)
}
