package chaincode

import "context"

// Ledger describes lifecycle capabilities of a ledger network.
//
//go:generate mockery --name Ledger --structname Ledger --filename ledger.go --output ../../test/mocks
type Ledger interface {
	// SendInstallProposal installs package on every peer, one endorsement per peer in target order.
	SendInstallProposal(ctx context.Context, peers []PeerTarget, pkg []byte) ([]PeerEndorsement, error)
	// SendApprovalProposal approves definition for organization of the peers.
	SendApprovalProposal(ctx context.Context, channel string, peers []PeerTarget, def Definition, collections CollectionConfig) ([]PeerEndorsement, error)
	// CheckCommitReadiness returns approvals of all channel organizations.
	CheckCommitReadiness(ctx context.Context, channel string, def Definition, collections CollectionConfig) (CommitReadiness, error)
	// SubmitCommit endorses commit on peers and submits transaction to the ordering service once.
	SubmitCommit(ctx context.Context, channel string, orderers []OrdererTarget, endorsingPeers []PeerTarget, def Definition, collections CollectionConfig) (string, error)
	// QueryCurrentSequence returns committed sequence of chaincode.
	QueryCurrentSequence(ctx context.Context, channel, name, version string) (int64, error)
	// QueryCurrentPackageID returns package identity bound to chaincode version.
	QueryCurrentPackageID(ctx context.Context, channel, name, version string) (string, error)
	// QueryApprovedOrganizations returns organizations approved the definition.
	QueryApprovedOrganizations(ctx context.Context, channel string, def Definition, collections CollectionConfig) ([]string, error)
}
