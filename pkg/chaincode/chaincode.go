package chaincode

import (
	"fmt"
	"strings"
)

// Definition describes one lifecycle version of a chaincode on a channel.
type Definition struct {
	Name                string `json:"chaincodeName"`
	Version             string `json:"chaincodeVersion"`
	Sequence            int64  `json:"sequence"`
	PackageID           string `json:"chaincodePackageID"`
	InitRequired        bool   `json:"initRequired"`
	EndorsementPolicy   string `json:"endorsementPolicy,omitempty"`
	ChannelConfigPolicy string `json:"channelConfigPolicy,omitempty"`
	EndorsementPlugin   string `json:"endorsementPlugin,omitempty"`
	ValidationPlugin    string `json:"validationPlugin,omitempty"`
}

// Label returns package label used for chaincode packages of this definition.
func (d Definition) Label() string {
	return fmt.Sprintf("%s_%s", d.Name, d.Version)
}

func (d Definition) String() string {
	return fmt.Sprintf("%s:%s#%d", d.Name, d.Version, d.Sequence)
}

// OperationType is a lifecycle operation requested by a caller.
type OperationType int

const (
	OperationUnknown OperationType = iota
	OperationInstall
	OperationApprove
	OperationCommit
	OperationCheckCommitReadiness
	OperationQueryApprovedOrganizations
	OperationQuerySequence
	OperationQueryPackageID
)

var operationNames = map[OperationType]string{
	OperationInstall:                    "INSTALL",
	OperationApprove:                    "APPROVE",
	OperationCommit:                     "COMMIT",
	OperationCheckCommitReadiness:       "CHECK_COMMIT_READINESS",
	OperationQueryApprovedOrganizations: "QUERY_APPROVED_ORGANIZATIONS",
	OperationQuerySequence:              "QUERY_SEQUENCE",
	OperationQueryPackageID:             "QUERY_PACKAGE_ID",
}

// Operations returns every known operation type in declaration order.
func Operations() []OperationType {
	return []OperationType{
		OperationInstall,
		OperationApprove,
		OperationCommit,
		OperationCheckCommitReadiness,
		OperationQueryApprovedOrganizations,
		OperationQuerySequence,
		OperationQueryPackageID,
	}
}

func (o OperationType) String() string {
	if v, ok := operationNames[o]; ok {
		return v
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(o))
}

// ParseOperationType converts operation name into OperationType, case-insensitive.
func ParseOperationType(s string) (OperationType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for op, v := range operationNames {
		if v == name {
			return op, nil
		}
	}
	return OperationUnknown, fmt.Errorf("unknown operation type: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (o OperationType) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *OperationType) UnmarshalText(b []byte) error {
	v, err := ParseOperationType(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// CollectionConfig holds an optional private data collection descriptor.
// Zero value is the absent configuration.
type CollectionConfig struct {
	raw []byte
	set bool
}

// SomeCollectionConfig returns present collection configuration.
func SomeCollectionConfig(b []byte) CollectionConfig {
	return CollectionConfig{raw: b, set: true}
}

// NoCollectionConfig returns absent collection configuration.
func NoCollectionConfig() CollectionConfig {
	return CollectionConfig{}
}

// Get returns raw descriptor and flag whether it is present.
func (c CollectionConfig) Get() ([]byte, bool) {
	return c.raw, c.set
}

// Present reports whether configuration is set.
func (c CollectionConfig) Present() bool {
	return c.set
}
