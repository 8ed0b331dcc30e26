package chaincode

import (
	"errors"
	"fmt"
)

// Scope identifies an operation an error happened in.
type Scope struct {
	Operation OperationType
	Network   string
	Name      string
	Version   string
	Sequence  int64
}

// NewScope creates scope for operation on definition.
func NewScope(op OperationType, network string, def Definition) Scope {
	return Scope{Operation: op, Network: network, Name: def.Name, Version: def.Version, Sequence: def.Sequence}
}

func (s Scope) String() string {
	return fmt.Sprintf("%s on network %q chaincode %s version %s sequence %d", s.Operation, s.Network, s.Name, s.Version, s.Sequence)
}

// UnknownNetworkError is returned when network name is not configured.
type UnknownNetworkError struct {
	Scope
}

func (e *UnknownNetworkError) Error() string {
	return fmt.Sprintf("%s: unknown network", e.Scope)
}

// InvalidDefinitionError is returned when definition fails validation.
type InvalidDefinitionError struct {
	Scope
	Field  string
	Reason string
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("%s: invalid field %s: %s", e.Scope, e.Field, e.Reason)
}

// PackageIdentityMismatchError is returned when peers report different package identities.
type PackageIdentityMismatchError struct {
	Scope
	FirstPeer       string
	FirstPackageID  string
	SecondPeer      string
	SecondPackageID string
}

func (e *PackageIdentityMismatchError) Error() string {
	return fmt.Sprintf("%s: package identity mismatch: peer %s reported %q, peer %s reported %q",
		e.Scope, e.FirstPeer, e.FirstPackageID, e.SecondPeer, e.SecondPackageID)
}

// InsufficientEndorsementError is returned when there are not enough successful responses.
type InsufficientEndorsementError struct {
	Scope
	Message     string
	FailedPeers []string
}

func (e *InsufficientEndorsementError) Error() string {
	return fmt.Sprintf("%s: insufficient endorsement: %s", e.Scope, e.Message)
}

// SequenceConflictError is returned when requested sequence is not the expected one.
type SequenceConflictError struct {
	Scope
	Expected int64
	Current  int64
}

func (e *SequenceConflictError) Error() string {
	return fmt.Sprintf("%s: sequence conflict: expected %d, current committed %d", e.Scope, e.Expected, e.Current)
}

// LedgerUnavailableError is returned when no target could be reached.
type LedgerUnavailableError struct {
	Scope
	Err error
}

func (e *LedgerUnavailableError) Error() string {
	return fmt.Sprintf("%s: ledger unavailable: %v", e.Scope, e.Err)
}

func (e *LedgerUnavailableError) Unwrap() error {
	return e.Err
}

// CommitRejectedError is returned when ordering service refuses the transaction.
type CommitRejectedError struct {
	Scope
	Err error
}

func (e *CommitRejectedError) Error() string {
	return fmt.Sprintf("%s: commit rejected: %v", e.Scope, e.Err)
}

func (e *CommitRejectedError) Unwrap() error {
	return e.Err
}

// Ledger implementations wrap these to let callers classify failures.
var (
	ErrOrdererRejected   = errors.New("orderer rejected transaction")
	ErrUnavailable       = errors.New("ledger unavailable")
	ErrSequenceMismatch  = errors.New("sequence mismatch reported by ledger")
	ErrDefinitionMissing = errors.New("chaincode definition not found")
	ErrAmbiguousPackage  = errors.New("several installed packages match chaincode version")
	ErrEndorsementFailed = errors.New("no peer endorsed proposal")
)
