package collection

import (
	"testing"

	"github.com/golang/protobuf/proto" //nolint:staticcheck
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonConfig = `[
  {
    "name": "assetCollection",
    "policy": "OR('Org1MSP.member', 'Org2MSP.member')",
    "requiredPeerCount": 1,
    "maxPeerCount": 1,
    "blockToLive": 1000000,
    "memberOnlyRead": true,
    "memberOnlyWrite": true
  },
  {
    "name": "Org1MSPPrivateCollection",
    "policy": "OR('Org1MSP.member')",
    "requiredPeerCount": 0,
    "maxPeerCount": 1,
    "blockToLive": 3,
    "memberOnlyRead": true,
    "memberOnlyWrite": false,
    "endorsementPolicy": {
      "signaturePolicy": "OR('Org1MSP.member')"
    }
  }
]`

const yamlConfig = `
- name: assetCollection
  policy: OR('Org1MSP.member')
  maxPeerCount: 2
  endorsementPolicy:
    channelConfigPolicy: /Channel/Application/Endorsement
`

func TestParseJSON(t *testing.T) {
	ccp, err := Parse([]byte(jsonConfig))
	require.NoError(t, err)
	require.Len(t, ccp.Config, 2)

	first := ccp.Config[0].GetStaticCollectionConfig()
	assert.Equal(t, "assetCollection", first.Name)
	assert.Equal(t, int32(1), first.RequiredPeerCount)
	assert.Equal(t, uint64(1000000), first.BlockToLive)
	assert.True(t, first.MemberOnlyWrite)
	assert.NotNil(t, first.MemberOrgsPolicy.GetSignaturePolicy())
	assert.Nil(t, first.EndorsementPolicy)

	second := ccp.Config[1].GetStaticCollectionConfig()
	assert.NotNil(t, second.EndorsementPolicy.GetSignaturePolicy())
}

func TestParseYAML(t *testing.T) {
	ccp, err := Parse([]byte(yamlConfig))
	require.NoError(t, err)
	require.Len(t, ccp.Config, 1)
	sc := ccp.Config[0].GetStaticCollectionConfig()
	assert.Equal(t, int32(2), sc.MaximumPeerCount)
	assert.Equal(t, "/Channel/Application/Endorsement", sc.EndorsementPolicy.GetChannelConfigPolicyReference())
}

func TestParseInvalid(t *testing.T) {
	tests := map[string]string{
		"not a list":       `{"name": "c"}`,
		"unknown field":    `[{"name": "c", "policy": "OR('A.member')", "maxPeerCount": 1, "foo": 1}]`,
		"no name":          `[{"policy": "OR('A.member')"}]`,
		"no policy":        `[{"name": "c"}]`,
		"bad policy":       `[{"name": "c", "policy": "OR(A.member"}]`,
		"peer counts":      `[{"name": "c", "policy": "OR('A.member')", "requiredPeerCount": 2, "maxPeerCount": 1}]`,
		"duplicate":        `[{"name": "c", "policy": "OR('A.member')"}, {"name": "c", "policy": "OR('A.member')"}]`,
		"both endorsement": `[{"name": "c", "policy": "OR('A.member')", "endorsementPolicy": {"signaturePolicy": "OR('A.member')", "channelConfigPolicy": "/x"}}]`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestBytes(t *testing.T) {
	b, err := Bytes([]byte(yamlConfig))
	require.NoError(t, err)

	var ccp pb.CollectionConfigPackage
	require.NoError(t, proto.Unmarshal(b, &ccp))
	assert.Len(t, ccp.Config, 1)
}
