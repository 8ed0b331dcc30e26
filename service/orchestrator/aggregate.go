package orchestrator

import (
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"golang.org/x/exp/slices"
)

// Aggregate reduces per-peer endorsements, given in target order, into a single decision.
// For INSTALL every successful response must report the same package identity.
func Aggregate(scope chaincode.Scope, endorsements []chaincode.PeerEndorsement) (chaincode.AggregatedResult, error) {
	var (
		res       chaincode.AggregatedResult
		reference *chaincode.PeerEndorsement
		firstFail *chaincode.PeerEndorsement
		succeeded = newSet()
		failed    = newSet()
		succPeers = newSet()
		failPeers = newSet()
		offline   = 0
	)

	for i := range endorsements {
		e := &endorsements[i]
		if e.Status != chaincode.StatusSuccess {
			if firstFail == nil {
				firstFail = e
			}
			if e.Status == chaincode.StatusConnectionFailure {
				offline++
			}
			failed.add(e.Peer.MspID)
			failPeers.add(e.Peer.String())
			continue
		}

		if res.ReferencePeer == "" {
			res.ReferencePeer = e.Peer.String()
		}
		if scope.Operation == chaincode.OperationInstall {
			if reference == nil {
				reference = e
			} else if e.PackageID != reference.PackageID {
				return res, &chaincode.PackageIdentityMismatchError{
					Scope:           scope,
					FirstPeer:       reference.Peer.String(),
					FirstPackageID:  reference.PackageID,
					SecondPeer:      e.Peer.String(),
					SecondPackageID: e.PackageID,
				}
			}
		}
		succeeded.add(e.Peer.MspID)
		succPeers.add(e.Peer.String())
	}

	res.FailedOrgs, res.FailedPeers = failed.sorted(), failPeers.sorted()
	if succPeers.len() == 0 {
		if firstFail == nil {
			return res, &chaincode.InsufficientEndorsementError{Scope: scope, Message: "no target peers"}
		}
		if offline == len(endorsements) {
			return res, &chaincode.LedgerUnavailableError{Scope: scope, Err: unreachable(firstFail)}
		}
		return res, &chaincode.InsufficientEndorsementError{
			Scope:       scope,
			Message:     firstFail.Message,
			FailedPeers: res.FailedPeers,
		}
	}

	res.Decision = chaincode.DecisionAccepted
	res.SucceededOrgs, res.SucceededPeers = succeeded.sorted(), succPeers.sorted()
	if reference != nil {
		res.PackageID = reference.PackageID
	}
	return res, nil
}

type unreachableError struct {
	peer string
	msg  string
}

func (e *unreachableError) Error() string {
	return "peer " + e.peer + ": " + e.msg
}

func (e *unreachableError) Unwrap() error {
	return chaincode.ErrUnavailable
}

func unreachable(e *chaincode.PeerEndorsement) error {
	return &unreachableError{peer: e.Peer.String(), msg: e.Message}
}

type set map[string]struct{}

func newSet() set { return make(set) }

func (s set) add(v string) { s[v] = struct{}{} }

func (s set) len() int { return len(s) }

func (s set) sorted() []string {
	res := make([]string, 0, len(s))
	for v := range s {
		res = append(res, v)
	}
	slices.Sort(res)
	return res
}
