package orchestrator

import (
	"fmt"
	"strings"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/collection"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/policy"
	"github.com/hyperledger/fabric/core/chaincode/persistence"
)

// profile lists definition fields an operation requires.
type profile struct {
	sequence      bool
	packageID     bool
	artifact      bool
	noCollections bool
}

var profiles = map[chaincode.OperationType]profile{
	chaincode.OperationInstall:                    {artifact: true, noCollections: true},
	chaincode.OperationApprove:                    {sequence: true, packageID: true},
	chaincode.OperationCommit:                     {sequence: true},
	chaincode.OperationCheckCommitReadiness:       {sequence: true},
	chaincode.OperationQueryApprovedOrganizations: {sequence: true},
	chaincode.OperationQuerySequence:              {},
	chaincode.OperationQueryPackageID:             {},
}

func invalid(field, reason string, args ...any) error {
	return &chaincode.InvalidDefinitionError{Field: field, Reason: fmt.Sprintf(reason, args...)}
}

// validate checks definition against profile of the operation. For INSTALL the package
// identity is derived from artifact when it is omitted.
func validate(op chaincode.OperationType, def chaincode.Definition, cc chaincode.CollectionConfig, pkg []byte) (chaincode.Definition, error) {
	p, ok := profiles[op]
	if !ok {
		return def, invalid("operation", "unsupported operation %s", op)
	}

	if strings.TrimSpace(def.Name) == "" {
		return def, invalid("chaincodeName", "must not be empty")
	}
	if strings.TrimSpace(def.Version) == "" {
		return def, invalid("chaincodeVersion", "must not be empty")
	}
	if p.sequence && def.Sequence <= 0 {
		return def, invalid("sequence", "must be positive, got %d", def.Sequence)
	}
	if p.packageID && def.PackageID == "" {
		return def, invalid("chaincodePackageID", "must not be empty")
	}

	if _, err := policy.ApplicationPolicyBytes(def.EndorsementPolicy, def.ChannelConfigPolicy); err != nil {
		return def, invalid("endorsementPolicy", "%v", err)
	}

	if raw, ok := cc.Get(); ok {
		if p.noCollections {
			return def, invalid("collectionConfig", "not allowed for %s", op)
		}
		if _, err := collection.Parse(raw); err != nil {
			return def, invalid("collectionConfig", "%v", err)
		}
	}

	if p.artifact {
		return withPackageIdentity(def, pkg)
	}
	return def, nil
}

func withPackageIdentity(def chaincode.Definition, pkg []byte) (chaincode.Definition, error) {
	if len(pkg) == 0 {
		return def, invalid("package", "must not be empty")
	}
	md, _, err := persistence.ParseChaincodePackage(pkg)
	if err != nil {
		return def, invalid("package", "%v", err)
	}
	if md.Label != def.Label() && md.Label != def.Name {
		return def, invalid("package", "label %q does not match %q", md.Label, def.Label())
	}
	id := persistence.PackageID(md.Label, pkg)
	if def.PackageID != "" && def.PackageID != id {
		return def, invalid("chaincodePackageID", "%q does not match package identity %q", def.PackageID, id)
	}
	def.PackageID = id
	return def, nil
}
