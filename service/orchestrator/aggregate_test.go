package orchestrator

import (
	"errors"
	"testing"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func endorsement(p chaincode.PeerTarget, status chaincode.EndorsementStatus, packageID, msg string) chaincode.PeerEndorsement {
	return chaincode.PeerEndorsement{Peer: p, Status: status, PackageID: packageID, Message: msg}
}

func TestAggregateInstall(t *testing.T) {
	scope := chaincode.NewScope(chaincode.OperationInstall, "net1", basic)
	res, err := Aggregate(scope, []chaincode.PeerEndorsement{
		endorsement(peer1, chaincode.StatusSuccess, "abc123", ""),
		endorsement(peer2, chaincode.StatusSuccess, "abc123", ""),
		endorsement(peer3, chaincode.StatusEndorsementFailure, "", "access denied"),
	})
	require.NoError(t, err)
	assert.Equal(t, chaincode.DecisionAccepted, res.Decision)
	assert.Equal(t, "abc123", res.PackageID)
	assert.Equal(t, []string{"peer1", "peer2"}, res.SucceededPeers)
	assert.Equal(t, []string{"peer3"}, res.FailedPeers)
	assert.Equal(t, []string{"Org1MSP"}, res.SucceededOrgs)
	assert.Equal(t, []string{"Org2MSP"}, res.FailedOrgs)
}

func TestAggregateReferencePeerFollowsTargetOrder(t *testing.T) {
	scope := chaincode.NewScope(chaincode.OperationInstall, "net1", basic)
	res, err := Aggregate(scope, []chaincode.PeerEndorsement{
		endorsement(peer1, chaincode.StatusConnectionFailure, "", "unreachable"),
		endorsement(peer3, chaincode.StatusSuccess, "abc123", ""),
		endorsement(peer2, chaincode.StatusSuccess, "abc123", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"peer2", "peer3"}, res.SucceededPeers)
	assert.Equal(t, "peer3", res.ReferencePeer)
}

func TestAggregatePackageIdentityMismatch(t *testing.T) {
	scope := chaincode.NewScope(chaincode.OperationInstall, "net1", basic)

	for name, endorsements := range map[string][]chaincode.PeerEndorsement{
		"adjacent": {
			endorsement(peer1, chaincode.StatusSuccess, "abc123", ""),
			endorsement(peer2, chaincode.StatusSuccess, "def456", ""),
			endorsement(peer3, chaincode.StatusSuccess, "abc123", ""),
		},
		"failure in between": {
			endorsement(peer2, chaincode.StatusEndorsementFailure, "", "denied"),
			endorsement(peer1, chaincode.StatusSuccess, "abc123", ""),
			endorsement(peer3, chaincode.StatusSuccess, "def456", ""),
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Aggregate(scope, endorsements)
			var mismatch *chaincode.PackageIdentityMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, "peer1", mismatch.FirstPeer)
			assert.Equal(t, "abc123", mismatch.FirstPackageID)
			assert.Equal(t, "def456", mismatch.SecondPackageID)
			assert.NotEqual(t, mismatch.FirstPeer, mismatch.SecondPeer)
			assert.Contains(t, err.Error(), "INSTALL")
		})
	}
}

func TestAggregateMismatchIsStableForTargetOrder(t *testing.T) {
	scope := chaincode.NewScope(chaincode.OperationInstall, "net1", basic)
	endorsements := []chaincode.PeerEndorsement{
		endorsement(peer3, chaincode.StatusSuccess, "def456", ""),
		endorsement(peer1, chaincode.StatusSuccess, "abc123", ""),
		endorsement(peer2, chaincode.StatusSuccess, "abc123", ""),
	}

	for i := 0; i < 10; i++ {
		_, err := Aggregate(scope, endorsements)
		var mismatch *chaincode.PackageIdentityMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, "peer3", mismatch.FirstPeer)
		assert.Equal(t, "peer1", mismatch.SecondPeer)
	}
}

func TestAggregateIgnoresIdentityOutsideInstall(t *testing.T) {
	scope := chaincode.NewScope(chaincode.OperationApprove, "net1", basic)
	res, err := Aggregate(scope, []chaincode.PeerEndorsement{
		endorsement(peer1, chaincode.StatusSuccess, "abc123", ""),
		endorsement(peer2, chaincode.StatusSuccess, "def456", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, chaincode.DecisionAccepted, res.Decision)
	assert.Empty(t, res.PackageID)
}

func TestAggregateNoSuccess(t *testing.T) {
	scope := chaincode.NewScope(chaincode.OperationApprove, "net1", basic)

	t.Run("first failure message", func(t *testing.T) {
		res, err := Aggregate(scope, []chaincode.PeerEndorsement{
			endorsement(peer2, chaincode.StatusConnectionFailure, "", "connection refused"),
			endorsement(peer1, chaincode.StatusEndorsementFailure, "", "access denied"),
			endorsement(peer3, chaincode.StatusEndorsementFailure, "", "policy failure"),
		})
		var insufficient *chaincode.InsufficientEndorsementError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, "connection refused", insufficient.Message)
		assert.Equal(t, []string{"peer1", "peer2", "peer3"}, insufficient.FailedPeers)
		assert.Equal(t, chaincode.DecisionRejected, res.Decision)
	})

	t.Run("all unreachable", func(t *testing.T) {
		_, err := Aggregate(scope, []chaincode.PeerEndorsement{
			endorsement(peer1, chaincode.StatusConnectionFailure, "", "timeout"),
			endorsement(peer2, chaincode.StatusConnectionFailure, "", "connection refused"),
		})
		var unavailable *chaincode.LedgerUnavailableError
		require.True(t, errors.As(err, &unavailable))
		assert.ErrorIs(t, err, chaincode.ErrUnavailable)
		assert.Contains(t, err.Error(), "timeout")
	})

	t.Run("no targets", func(t *testing.T) {
		_, err := Aggregate(scope, nil)
		var insufficient *chaincode.InsufficientEndorsementError
		assert.True(t, errors.As(err, &insufficient))
	})
}
