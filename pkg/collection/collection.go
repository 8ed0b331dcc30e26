// Package collection parses private data collection descriptors.
// The descriptor format follows the peer CLI collections file, JSON or YAML.
package collection

import (
	"fmt"

	"github.com/golang/protobuf/proto" //nolint:staticcheck
	"github.com/hashicorp/go-multierror"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/hyperledger/fabric/common/policydsl"
	"gopkg.in/yaml.v2"
)

type endorsementPolicy struct {
	SignaturePolicy     string `yaml:"signaturePolicy"`
	ChannelConfigPolicy string `yaml:"channelConfigPolicy"`
}

type config struct {
	Name              string             `yaml:"name"`
	Policy            string             `yaml:"policy"`
	RequiredPeerCount int32              `yaml:"requiredPeerCount"`
	MaxPeerCount      int32              `yaml:"maxPeerCount"`
	BlockToLive       uint64             `yaml:"blockToLive"`
	MemberOnlyRead    bool               `yaml:"memberOnlyRead"`
	MemberOnlyWrite   bool               `yaml:"memberOnlyWrite"`
	EndorsementPolicy *endorsementPolicy `yaml:"endorsementPolicy"`
}

// Parse converts descriptor into collection config package.
func Parse(raw []byte) (*pb.CollectionConfigPackage, error) {
	var configs []config
	if err := yaml.UnmarshalStrict(raw, &configs); err != nil {
		return nil, fmt.Errorf("unmarshal collection config: %w", err)
	}

	var (
		result error
		names  = make(map[string]struct{}, len(configs))
		ccp    = &pb.CollectionConfigPackage{}
	)
	for i, c := range configs {
		if _, ok := names[c.Name]; ok {
			result = multierror.Append(result, fmt.Errorf("collection %d: duplicate name %q", i, c.Name))
			continue
		}
		names[c.Name] = struct{}{}

		sc, err := c.static()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("collection %d: %w", i, err))
			continue
		}
		ccp.Config = append(ccp.Config, &pb.CollectionConfig{
			Payload: &pb.CollectionConfig_StaticCollectionConfig{StaticCollectionConfig: sc},
		})
	}
	if result != nil {
		return nil, result
	}
	return ccp, nil
}

// Bytes parses descriptor and returns marshaled collection config package.
func Bytes(raw []byte) ([]byte, error) {
	ccp, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	b, err := proto.Marshal(ccp)
	if err != nil {
		return nil, fmt.Errorf("marshal collection config package: %w", err)
	}
	return b, nil
}

func (c config) static() (*pb.StaticCollectionConfig, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("name is empty")
	}
	if c.Policy == "" {
		return nil, fmt.Errorf("policy of %s is empty", c.Name)
	}
	if c.RequiredPeerCount < 0 || c.MaxPeerCount < c.RequiredPeerCount {
		return nil, fmt.Errorf("%s: requiredPeerCount %d must be non-negative and not exceed maxPeerCount %d", c.Name, c.RequiredPeerCount, c.MaxPeerCount)
	}

	memberPolicy, err := policydsl.FromString(c.Policy)
	if err != nil {
		return nil, fmt.Errorf("invalid policy of %s: %w", c.Name, err)
	}

	sc := &pb.StaticCollectionConfig{
		Name: c.Name,
		MemberOrgsPolicy: &pb.CollectionPolicyConfig{
			Payload: &pb.CollectionPolicyConfig_SignaturePolicy{SignaturePolicy: memberPolicy},
		},
		RequiredPeerCount: c.RequiredPeerCount,
		MaximumPeerCount:  c.MaxPeerCount,
		BlockToLive:       c.BlockToLive,
		MemberOnlyRead:    c.MemberOnlyRead,
		MemberOnlyWrite:   c.MemberOnlyWrite,
	}

	if ep := c.EndorsementPolicy; ep != nil {
		switch {
		case ep.SignaturePolicy != "" && ep.ChannelConfigPolicy != "":
			return nil, fmt.Errorf("%s: cannot specify both signature and channel config endorsement policy", c.Name)
		case ep.SignaturePolicy != "":
			env, err := policydsl.FromString(ep.SignaturePolicy)
			if err != nil {
				return nil, fmt.Errorf("invalid endorsement policy of %s: %w", c.Name, err)
			}
			sc.EndorsementPolicy = &pb.ApplicationPolicy{Type: &pb.ApplicationPolicy_SignaturePolicy{SignaturePolicy: env}}
		case ep.ChannelConfigPolicy != "":
			sc.EndorsementPolicy = &pb.ApplicationPolicy{Type: &pb.ApplicationPolicy_ChannelConfigPolicyReference{ChannelConfigPolicyReference: ep.ChannelConfigPolicy}}
		}
	}
	return sc, nil
}
