package fixtures

import (
	"fmt"

	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/hyperledger/fabric-protos-go/msp"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
	"github.com/hyperledger/fabric-protos-go/orderer/etcdraft"
	"github.com/hyperledger/fabric-protos-go/orderer/smartbft"
	pp "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/hyperledger/fabric/common/channelconfig"
	"github.com/hyperledger/fabric/protoutil"
)

// Org is an organization of a test channel.
type Org struct {
	MspID       string
	RootCert    []byte
	AnchorPeers []*pp.AnchorPeer
}

// Consenter is an ordering node of a test channel.
type Consenter struct {
	Host  string
	Port  uint32
	MspID string
}

// Channel describes a test channel configuration.
type Channel struct {
	Consensus            string
	OrdererOrgs          []Org
	Consenters           []Consenter
	ApplicationOrgs      []Org
	LifecycleEndorsement *common.Policy
}

// ImplicitMeta returns implicit meta policy over Endorsement sub policies.
func ImplicitMeta(rule common.ImplicitMetaPolicy_Rule) *common.Policy {
	return &common.Policy{
		Type: int32(common.Policy_IMPLICIT_META),
		Value: protoutil.MarshalOrPanic(&common.ImplicitMetaPolicy{
			SubPolicy: "Endorsement",
			Rule:      rule,
		}),
	}
}

// Signature returns signature policy envelope wrapped into channel policy.
func Signature(env *common.SignaturePolicyEnvelope) *common.Policy {
	return &common.Policy{
		Type:  int32(common.Policy_SIGNATURE),
		Value: protoutil.MarshalOrPanic(env),
	}
}

// Config builds channel config from description.
func (c Channel) Config() *common.Config {
	ordererGroup := protoutil.NewConfigGroup()
	ordererGroup.Values[channelconfig.ConsensusTypeKey] = &common.ConfigValue{
		Value: protoutil.MarshalOrPanic(&ab.ConsensusType{Type: c.Consensus, Metadata: c.consensusMetadata()}),
	}
	for _, org := range c.OrdererOrgs {
		g := orgGroup(org)
		addresses := make([]string, 0)
		for _, cons := range c.Consenters {
			if cons.MspID == org.MspID {
				addresses = append(addresses, fmt.Sprintf("%s:%d", cons.Host, cons.Port))
			}
		}
		g.Values[channelconfig.EndpointsKey] = &common.ConfigValue{
			Value: protoutil.MarshalOrPanic(&common.OrdererAddresses{Addresses: addresses}),
		}
		ordererGroup.Groups[org.MspID] = g
	}

	appGroup := protoutil.NewConfigGroup()
	for _, org := range c.ApplicationOrgs {
		g := orgGroup(org)
		if len(org.AnchorPeers) > 0 {
			g.Values[channelconfig.AnchorPeersKey] = &common.ConfigValue{
				Value: protoutil.MarshalOrPanic(&pp.AnchorPeers{AnchorPeers: org.AnchorPeers}),
			}
		}
		appGroup.Groups[org.MspID] = g
	}
	if c.LifecycleEndorsement != nil {
		appGroup.Policies["LifecycleEndorsement"] = &common.ConfigPolicy{Policy: c.LifecycleEndorsement}
	}

	channelGroup := protoutil.NewConfigGroup()
	channelGroup.Groups[channelconfig.OrdererGroupKey] = ordererGroup
	channelGroup.Groups[channelconfig.ApplicationGroupKey] = appGroup

	return &common.Config{ChannelGroup: channelGroup}
}

func (c Channel) consensusMetadata() []byte {
	switch c.Consensus {
	case "etcdraft":
		md := &etcdraft.ConfigMetadata{}
		for _, cons := range c.Consenters {
			md.Consenters = append(md.Consenters, &etcdraft.Consenter{Host: cons.Host, Port: cons.Port})
		}
		return protoutil.MarshalOrPanic(md)
	case "smartbft":
		md := &smartbft.ConfigMetadata{}
		for i, cons := range c.Consenters {
			md.Consenters = append(md.Consenters, &smartbft.Consenter{
				ConsenterId: uint64(i + 1),
				Host:        cons.Host,
				Port:        cons.Port,
				MspId:       cons.MspID,
			})
		}
		return protoutil.MarshalOrPanic(md)
	}
	return nil
}

func orgGroup(org Org) *common.ConfigGroup {
	g := protoutil.NewConfigGroup()
	fabricConf := &msp.FabricMSPConfig{Name: org.MspID}
	if org.RootCert != nil {
		fabricConf.RootCerts = [][]byte{org.RootCert}
	}
	g.Values[channelconfig.MSPKey] = &common.ConfigValue{
		Value: protoutil.MarshalOrPanic(&msp.MSPConfig{Config: protoutil.MarshalOrPanic(fabricConf)}),
	}
	return g
}
