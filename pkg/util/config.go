package util

import (
	"fmt"
	"sort"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/orderer"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/peer"
	"github.com/golang/protobuf/proto" //nolint:staticcheck
	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/hyperledger/fabric-protos-go/msp"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
	"github.com/hyperledger/fabric-protos-go/orderer/etcdraft"
	"github.com/hyperledger/fabric-protos-go/orderer/smartbft"
	pp "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/hyperledger/fabric/common/channelconfig"
	"golang.org/x/exp/slices"
)

// GetOrdererConfig returns consenters of the channel with consensus type of ordering service.
func GetOrdererConfig(conf *common.Config) ([]*orderer.Orderer, orderer.ConsensusType, error) {
	ordererGroup, ok := conf.GetChannelGroup().GetGroups()[channelconfig.OrdererGroupKey]
	if !ok {
		return nil, orderer.ConsensusUnspecified, fmt.Errorf("orderer group not found")
	}

	cTypeValue, ok := ordererGroup.Values[channelconfig.ConsensusTypeKey]
	if !ok {
		return nil, orderer.ConsensusUnspecified, fmt.Errorf("consensus type not found")
	}

	cType := new(ab.ConsensusType)
	if err := proto.Unmarshal(cTypeValue.Value, cType); err != nil {
		return nil, orderer.ConsensusUnspecified, fmt.Errorf("unmarshal consensus value: %w", err)
	}

	consensusType := ConvertConsensusType(cType)
	nodes := make([]*orderer.Orderer, 0)

	switch consensusType {
	case orderer.ConsensusBFT:
		metadata := new(smartbft.ConfigMetadata)
		if err := proto.Unmarshal(cType.Metadata, metadata); err != nil {
			return nil, consensusType, fmt.Errorf("unmarshal bft metadata: %w", err)
		}
		orgMap, err := getOrgMspMap(ordererGroup)
		if err != nil {
			return nil, consensusType, fmt.Errorf("get orderer msp: %w", err)
		}
		for _, c := range metadata.Consenters {
			mspConf, ok := orgMap[c.MspId]
			if !ok {
				return nil, consensusType, fmt.Errorf("msp %s of consenter %s:%d not found", c.MspId, c.Host, c.Port)
			}
			nodes = append(nodes, &orderer.Orderer{
				Host:         c.Host,
				Port:         c.Port,
				MspID:        c.MspId,
				Certificates: caCerts(mspConf),
			})
		}
	case orderer.ConsensusRaft:
		metadata := new(etcdraft.ConfigMetadata)
		if err := proto.Unmarshal(cType.Metadata, metadata); err != nil {
			return nil, consensusType, fmt.Errorf("unmarshal raft metadata: %w", err)
		}
		consMap, err := getConsenterMap(ordererGroup)
		if err != nil {
			return nil, consensusType, fmt.Errorf("get consenter map: %w", err)
		}
		for _, c := range metadata.Consenters {
			node := &orderer.Orderer{Host: c.Host, Port: c.Port}
			if v, ok := consMap[node.String()]; ok {
				node.MspID, node.Certificates = v.MspID, v.Certificates
			}
			nodes = append(nodes, node)
		}
	default:
		return nil, consensusType, fmt.Errorf("unsupported consensus type: %s", cType.Type)
	}

	return nodes, consensusType, nil
}

func getConsenterMap(ordererGroup *common.ConfigGroup) (map[string]*orderer.Orderer, error) {
	ret := make(map[string]*orderer.Orderer)
	for _, orgGroup := range ordererGroup.Groups {
		mspConf, err := GetMspConfig(orgGroup)
		if err != nil {
			return nil, fmt.Errorf("get msp config: %w", err)
		}
		endpoints, err := GetEndpoints(orgGroup)
		if err != nil {
			return nil, fmt.Errorf("get endpoints config: %w", err)
		}
		if endpoints == nil {
			continue
		}

		for _, host := range endpoints.Addresses {
			ret[host] = &orderer.Orderer{
				MspID:        mspConf.Name,
				Certificates: caCerts(mspConf),
			}
		}
	}
	return ret, nil
}

// ConvertConsensusType maps channel config consensus name to ConsensusType.
func ConvertConsensusType(cType *ab.ConsensusType) orderer.ConsensusType {
	switch cType.Type {
	case "smartbft", "BFT":
		return orderer.ConsensusBFT
	case "etcdraft":
		return orderer.ConsensusRaft
	}
	return orderer.ConsensusUnspecified
}

func getOrgMspMap(ordererGroup *common.ConfigGroup) (map[string]*msp.FabricMSPConfig, error) {
	orgMap := make(map[string]*msp.FabricMSPConfig)
	for _, org := range ordererGroup.Groups {
		mspConf, err := GetMspConfig(org)
		if err != nil {
			return nil, fmt.Errorf("get msp config: %w", err)
		}
		orgMap[mspConf.Name] = mspConf
	}
	return orgMap, nil
}

// GetPeerConfig returns anchor peers of application organizations, all or filtered by msp identifiers.
// Result is ordered by msp identifier.
func GetPeerConfig(conf *common.Config, mspIds ...string) ([]*peer.Peer, error) {
	applicationGroup, ok := conf.GetChannelGroup().GetGroups()[channelconfig.ApplicationGroupKey]
	if !ok {
		return nil, fmt.Errorf("application group not found")
	}

	orgNames := make([]string, 0, len(applicationGroup.Groups))
	for name := range applicationGroup.Groups {
		orgNames = append(orgNames, name)
	}
	sort.Strings(orgNames)

	peers := make([]*peer.Peer, 0)
	for _, name := range orgNames {
		org := applicationGroup.Groups[name]
		mspConf, err := GetMspConfig(org)
		if err != nil {
			return nil, fmt.Errorf("get msp config: %w", err)
		}
		if len(mspIds) > 0 && !slices.Contains(mspIds, mspConf.Name) {
			continue
		}
		anchorPeersValue, ok := org.Values[channelconfig.AnchorPeersKey]
		if !ok {
			continue
		}
		var ap pp.AnchorPeers
		if err = proto.Unmarshal(anchorPeersValue.Value, &ap); err != nil {
			return nil, fmt.Errorf("unmarshal anchor peers: %w", err)
		}
		for _, p := range ap.AnchorPeers {
			peers = append(peers, &peer.Peer{
				Host:           p.Host,
				Port:           p.Port,
				MspID:          mspConf.Name,
				CACertificates: caCerts(mspConf),
			})
		}
	}
	return peers, nil
}

// GetApplicationOrgs returns sorted msp identifiers of application organizations.
func GetApplicationOrgs(conf *common.Config) ([]string, error) {
	applicationGroup, ok := conf.GetChannelGroup().GetGroups()[channelconfig.ApplicationGroupKey]
	if !ok {
		return nil, fmt.Errorf("application group not found")
	}
	orgs := make([]string, 0, len(applicationGroup.Groups))
	for _, org := range applicationGroup.Groups {
		mspConf, err := GetMspConfig(org)
		if err != nil {
			return nil, fmt.Errorf("get msp config: %w", err)
		}
		orgs = append(orgs, mspConf.Name)
	}
	sort.Strings(orgs)
	return orgs, nil
}

// GetApplicationPolicy returns policy of the application group by name.
func GetApplicationPolicy(conf *common.Config, name string) (*common.Policy, error) {
	applicationGroup, ok := conf.GetChannelGroup().GetGroups()[channelconfig.ApplicationGroupKey]
	if !ok {
		return nil, fmt.Errorf("application group not found")
	}
	p, ok := applicationGroup.Policies[name]
	if !ok || p.Policy == nil {
		return nil, fmt.Errorf("application policy %s not found", name)
	}
	return p.Policy, nil
}

// GetMspConfig returns fabric msp config from presented config group
func GetMspConfig(group *common.ConfigGroup) (*msp.FabricMSPConfig, error) {
	mspValue, ok := group.Values[channelconfig.MSPKey]
	if !ok {
		return nil, fmt.Errorf("msp key not found")
	}
	var mspConf msp.MSPConfig
	if err := proto.Unmarshal(mspValue.Value, &mspConf); err != nil {
		return nil, fmt.Errorf("unmarshal msp: %w", err)
	}
	var conf msp.FabricMSPConfig
	if err := proto.Unmarshal(mspConf.Config, &conf); err != nil {
		return nil, fmt.Errorf("unmarshal fabric msp config: %w", err)
	}

	return &conf, nil
}

func GetEndpoints(group *common.ConfigGroup) (*common.OrdererAddresses, error) {
	addrValue, ok := group.Values[channelconfig.EndpointsKey]
	if !ok {
		return nil, nil //nolint:nilnil
	}
	var addr common.OrdererAddresses
	if err := proto.Unmarshal(addrValue.Value, &addr); err != nil {
		return nil, fmt.Errorf("unmarshal orderer addresses: %w", err)
	}
	return &addr, nil
}

func caCerts(conf *msp.FabricMSPConfig) [][]byte {
	certs := make([][]byte, 0, len(conf.RootCerts)+len(conf.TlsRootCerts))
	certs = append(certs, conf.RootCerts...)
	return append(certs, conf.TlsRootCerts...)
}

// GetOrgCACerts returns trust material of every application organization keyed by msp identifier.
func GetOrgCACerts(conf *common.Config) (map[string][][]byte, error) {
	applicationGroup, ok := conf.GetChannelGroup().GetGroups()[channelconfig.ApplicationGroupKey]
	if !ok {
		return nil, fmt.Errorf("application group not found")
	}
	res := make(map[string][][]byte, len(applicationGroup.Groups))
	for _, org := range applicationGroup.Groups {
		mspConf, err := GetMspConfig(org)
		if err != nil {
			return nil, fmt.Errorf("get msp config: %w", err)
		}
		res[mspConf.Name] = caCerts(mspConf)
	}
	return res, nil
}
