package ledger

import (
	"fmt"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/collection"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/policy"
	"github.com/atomyze-foundation/hlf-lifecycle/system/lifecycle"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	lb "github.com/hyperledger/fabric-protos-go/peer/lifecycle"
)

const (
	defaultEndorsementPlugin = "escc"
	defaultValidationPlugin  = "vscc"
)

// params are definition parameters shared by approve, readiness and commit.
type params struct {
	endorsementPlugin string
	validationPlugin  string
	validationParam   []byte
	collections       *pb.CollectionConfigPackage
}

func definitionParams(def chaincode.Definition, cc chaincode.CollectionConfig) (*params, error) {
	p := &params{
		endorsementPlugin: def.EndorsementPlugin,
		validationPlugin:  def.ValidationPlugin,
	}
	if p.endorsementPlugin == "" {
		p.endorsementPlugin = defaultEndorsementPlugin
	}
	if p.validationPlugin == "" {
		p.validationPlugin = defaultValidationPlugin
	}

	var err error
	if p.validationParam, err = policy.ApplicationPolicyBytes(def.EndorsementPolicy, def.ChannelConfigPolicy); err != nil {
		return nil, fmt.Errorf("endorsement policy: %w", err)
	}

	if raw, ok := cc.Get(); ok {
		if p.collections, err = collection.Parse(raw); err != nil {
			return nil, fmt.Errorf("collection config: %w", err)
		}
	}
	return p, nil
}

func approveRequest(def chaincode.Definition, p *params) *lifecycle.ApproveRequest {
	return &lifecycle.ApproveRequest{
		Name:              def.Name,
		PackageID:         def.PackageID,
		InitRequired:      def.InitRequired,
		SignaturePolicy:   p.validationParam,
		Sequence:          def.Sequence,
		Version:           def.Version,
		EndorsementPlugin: p.endorsementPlugin,
		ValidationPlugin:  p.validationPlugin,
		Collections:       p.collections,
	}
}

func readinessArgs(def chaincode.Definition, p *params) *lb.CheckCommitReadinessArgs {
	return &lb.CheckCommitReadinessArgs{
		Sequence:            def.Sequence,
		Name:                def.Name,
		Version:             def.Version,
		EndorsementPlugin:   p.endorsementPlugin,
		ValidationPlugin:    p.validationPlugin,
		ValidationParameter: p.validationParam,
		Collections:         p.collections,
		InitRequired:        def.InitRequired,
	}
}

func commitArgs(def chaincode.Definition, p *params) *lb.CommitChaincodeDefinitionArgs {
	return &lb.CommitChaincodeDefinitionArgs{
		Sequence:            def.Sequence,
		Name:                def.Name,
		Version:             def.Version,
		EndorsementPlugin:   p.endorsementPlugin,
		ValidationPlugin:    p.validationPlugin,
		ValidationParameter: p.validationParam,
		Collections:         p.collections,
		InitRequired:        def.InitRequired,
	}
}
