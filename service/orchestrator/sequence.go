package orchestrator

import (
	"context"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/network"
	"go.uber.org/zap"
)

// Tracker reads committed sequence and package identity through the ledger on every call.
// Read failures collapse to zero values.
type Tracker struct {
	logger *zap.Logger
}

// NewTracker creates sequence tracker.
func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{logger: logger.Named("sequence")}
}

// CurrentSequence returns committed sequence of chaincode or 0.
func (t *Tracker) CurrentSequence(ctx context.Context, n *network.Network, name, version string) int64 {
	seq, err := n.Ledger.QueryCurrentSequence(ctx, n.Channel, name, version)
	if err != nil {
		t.logger.Debug("query sequence failed",
			zap.String("network", n.Name), zap.String("chaincode", name), zap.String("version", version), zap.Error(err))
		return 0
	}
	return seq
}

// CurrentPackageID returns package identity bound to chaincode version or empty string.
func (t *Tracker) CurrentPackageID(ctx context.Context, n *network.Network, name, version string) string {
	id, err := n.Ledger.QueryCurrentPackageID(ctx, n.Channel, name, version)
	if err != nil {
		t.logger.Debug("query package id failed",
			zap.String("network", n.Name), zap.String("chaincode", name), zap.String("version", version), zap.Error(err))
		return ""
	}
	return id
}
