package policy

import (
	"fmt"

	"github.com/golang/protobuf/proto" //nolint:staticcheck
	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/hyperledger/fabric-protos-go/msp"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/hyperledger/fabric/common/policydsl"
	"github.com/pkg/errors"
)

// LifecycleEndorsement is the application policy deciding whether a definition may be committed.
const LifecycleEndorsement = "LifecycleEndorsement"

// ApplicationPolicyBytes returns marshaled endorsement policy of chaincode.
// Signature policy is expressed in policy DSL, channel config policy is a reference like
// /Channel/Application/Endorsement. Nil is returned when both are empty, the channel default applies.
func ApplicationPolicyBytes(signaturePolicy, channelConfigPolicy string) ([]byte, error) {
	if signaturePolicy != "" && channelConfigPolicy != "" {
		return nil, errors.New("cannot specify both signature policy and channel config policy")
	}

	var applicationPolicy *pb.ApplicationPolicy
	switch {
	case signaturePolicy != "":
		signaturePolicyEnvelope, err := policydsl.FromString(signaturePolicy)
		if err != nil {
			return nil, errors.Errorf("invalid signature policy: %s", signaturePolicy)
		}
		applicationPolicy = &pb.ApplicationPolicy{
			Type: &pb.ApplicationPolicy_SignaturePolicy{
				SignaturePolicy: signaturePolicyEnvelope,
			},
		}
	case channelConfigPolicy != "":
		applicationPolicy = &pb.ApplicationPolicy{
			Type: &pb.ApplicationPolicy_ChannelConfigPolicyReference{
				ChannelConfigPolicyReference: channelConfigPolicy,
			},
		}
	default:
		return nil, nil
	}

	policyBytes, err := proto.Marshal(applicationPolicy)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal application policy")
	}
	return policyBytes, nil
}

// Evaluate reports whether approvals of organizations satisfy channel policy.
// orgs are all application organizations of the channel.
func Evaluate(p *common.Policy, orgs []string, approvals map[string]bool) (bool, error) {
	if p == nil {
		return false, errors.New("policy is nil")
	}

	switch common.Policy_PolicyType(p.Type) {
	case common.Policy_IMPLICIT_META:
		var imp common.ImplicitMetaPolicy
		if err := proto.Unmarshal(p.Value, &imp); err != nil {
			return false, fmt.Errorf("unmarshal implicit meta policy: %w", err)
		}
		return evaluateImplicitMeta(imp.Rule, orgs, approvals)
	case common.Policy_SIGNATURE:
		var env common.SignaturePolicyEnvelope
		if err := proto.Unmarshal(p.Value, &env); err != nil {
			return false, fmt.Errorf("unmarshal signature policy: %w", err)
		}
		return EvaluateSignature(&env, approvals)
	default:
		return false, fmt.Errorf("unsupported policy type: %d", p.Type)
	}
}

// Majority returns implicit meta MAJORITY evaluation, the Fabric default for lifecycle endorsement.
func Majority(orgs []string, approvals map[string]bool) bool {
	ok, _ := evaluateImplicitMeta(common.ImplicitMetaPolicy_MAJORITY, orgs, approvals)
	return ok
}

func evaluateImplicitMeta(rule common.ImplicitMetaPolicy_Rule, orgs []string, approvals map[string]bool) (bool, error) {
	var threshold int
	switch rule {
	case common.ImplicitMetaPolicy_ANY:
		threshold = 1
	case common.ImplicitMetaPolicy_ALL:
		threshold = len(orgs)
	case common.ImplicitMetaPolicy_MAJORITY:
		threshold = len(orgs)/2 + 1
	default:
		return false, fmt.Errorf("unknown implicit meta rule: %s", rule)
	}

	approved := 0
	for _, org := range orgs {
		if approvals[org] {
			approved++
		}
	}
	return approved >= threshold, nil
}

// EvaluateSignature evaluates signature policy treating every approved organization as one
// signature satisfying role principals of its MSP. An approval is consumed once, like a signature.
func EvaluateSignature(env *common.SignaturePolicyEnvelope, approvals map[string]bool) (bool, error) {
	if env.GetRule() == nil {
		return false, errors.New("signature policy has no rule")
	}

	orgs := make([]string, 0, len(env.Identities))
	for i, principal := range env.Identities {
		org, err := principalOrg(principal)
		if err != nil {
			return false, fmt.Errorf("identity %d: %w", i, err)
		}
		orgs = append(orgs, org)
	}

	used := make(map[string]bool)
	return evalRule(env.Rule, orgs, approvals, used)
}

func evalRule(rule *common.SignaturePolicy, orgs []string, approvals map[string]bool, used map[string]bool) (bool, error) {
	switch t := rule.Type.(type) {
	case *common.SignaturePolicy_SignedBy:
		if t.SignedBy < 0 || int(t.SignedBy) >= len(orgs) {
			return false, fmt.Errorf("identity index %d out of range", t.SignedBy)
		}
		org := orgs[t.SignedBy]
		if org == "" || !approvals[org] || used[org] {
			return false, nil
		}
		used[org] = true
		return true, nil
	case *common.SignaturePolicy_NOutOf_:
		verified := int32(0)
		for _, sub := range t.NOutOf.Rules {
			attempt := make(map[string]bool, len(used))
			for k, v := range used {
				attempt[k] = v
			}
			ok, err := evalRule(sub, orgs, approvals, attempt)
			if err != nil {
				return false, err
			}
			if ok {
				verified++
				for k, v := range attempt {
					used[k] = v
				}
			}
		}
		return verified >= t.NOutOf.N, nil
	default:
		return false, fmt.Errorf("unknown signature policy type %T", t)
	}
}

// principalOrg returns msp of role or organization unit principal, empty string for the others.
func principalOrg(p *msp.MSPPrincipal) (string, error) {
	switch p.PrincipalClassification {
	case msp.MSPPrincipal_ROLE:
		var role msp.MSPRole
		if err := proto.Unmarshal(p.Principal, &role); err != nil {
			return "", fmt.Errorf("unmarshal msp role: %w", err)
		}
		return role.MspIdentifier, nil
	case msp.MSPPrincipal_ORGANIZATION_UNIT:
		var ou msp.OrganizationUnit
		if err := proto.Unmarshal(p.Principal, &ou); err != nil {
			return "", fmt.Errorf("unmarshal organization unit: %w", err)
		}
		return ou.MspIdentifier, nil
	}
	return "", nil
}
