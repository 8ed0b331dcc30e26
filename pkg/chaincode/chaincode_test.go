package chaincode

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperationType(t *testing.T) {
	for _, op := range Operations() {
		parsed, err := ParseOperationType(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, parsed)
	}

	op, err := ParseOperationType(" approve ")
	require.NoError(t, err)
	assert.Equal(t, OperationApprove, op)

	_, err = ParseOperationType("DEPLOY")
	assert.Error(t, err)
}

func TestOperationTypeJSON(t *testing.T) {
	var v struct {
		Op OperationType `json:"op"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"op":"QUERY_PACKAGE_ID"}`), &v))
	assert.Equal(t, OperationQueryPackageID, v.Op)

	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"QUERY_PACKAGE_ID"}`, string(b))
}

func TestCollectionConfig(t *testing.T) {
	b, ok := NoCollectionConfig().Get()
	assert.False(t, ok)
	assert.Nil(t, b)

	var zero CollectionConfig
	assert.False(t, zero.Present())

	b, ok = SomeCollectionConfig([]byte("[]")).Get()
	assert.True(t, ok)
	assert.Equal(t, []byte("[]"), b)

	// empty descriptor is still present
	assert.True(t, SomeCollectionConfig(nil).Present())
}

func TestDefinitionJSON(t *testing.T) {
	var def Definition
	require.NoError(t, json.Unmarshal([]byte(`{
		"chaincodeName": "basic",
		"chaincodeVersion": "1.0",
		"sequence": 2,
		"chaincodePackageID": "basic_1.0:abc",
		"initRequired": true
	}`), &def))

	assert.Equal(t, Definition{Name: "basic", Version: "1.0", Sequence: 2, PackageID: "basic_1.0:abc", InitRequired: true}, def)
	assert.Equal(t, "basic_1.0", def.Label())
	assert.Equal(t, "basic:1.0#2", def.String())
}

func TestErrorsCarryScope(t *testing.T) {
	scope := NewScope(OperationApprove, "net1", Definition{Name: "basic", Version: "1.0", Sequence: 2})

	errs := []error{
		&UnknownNetworkError{Scope: scope},
		&InvalidDefinitionError{Scope: scope, Field: "sequence", Reason: "must be positive"},
		&PackageIdentityMismatchError{Scope: scope, FirstPeer: "peer0", SecondPeer: "peer1"},
		&InsufficientEndorsementError{Scope: scope, Message: "denied"},
		&SequenceConflictError{Scope: scope, Expected: 3, Current: 2},
		&LedgerUnavailableError{Scope: scope, Err: ErrUnavailable},
		&CommitRejectedError{Scope: scope, Err: ErrOrdererRejected},
	}
	for _, err := range errs {
		t.Run(fmt.Sprintf("%T", err), func(t *testing.T) {
			assert.Contains(t, err.Error(), "APPROVE")
			assert.Contains(t, err.Error(), `"net1"`)
			assert.Contains(t, err.Error(), "basic")
			assert.Contains(t, err.Error(), "sequence 2")
		})
	}

	wrapped := fmt.Errorf("perform: %w", &CommitRejectedError{Scope: scope, Err: ErrOrdererRejected})
	assert.True(t, errors.Is(wrapped, ErrOrdererRejected))

	var rejected *CommitRejectedError
	assert.True(t, errors.As(wrapped, &rejected))
}
