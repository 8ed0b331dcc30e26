package ledger

import (
	"context"
	"testing"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/peer"
	"github.com/atomyze-foundation/hlf-lifecycle/pkg/util"
	"github.com/atomyze-foundation/hlf-lifecycle/test/fixtures"
	"github.com/atomyze-foundation/hlf-lifecycle/test/mocks"
	"github.com/golang/protobuf/proto" //nolint:staticcheck
	"github.com/hyperledger/fabric-protos-go/common"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	lb "github.com/hyperledger/fabric-protos-go/peer/lifecycle"
	"github.com/hyperledger/fabric/core/scc/cscc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testChannel = "ch1"

var (
	peer0 = chaincode.PeerTarget{Name: "peer0", MspID: "Org1MSP", Host: "peer0.org1", Port: 7051}
	peer1 = chaincode.PeerTarget{Name: "peer1", MspID: "Org1MSP", Host: "peer1.org1", Port: 7051}
	peer2 = chaincode.PeerTarget{Name: "peer2", MspID: "Org2MSP", Host: "peer0.org2", Port: 9051}
	basic = chaincode.Definition{Name: "basic", Version: "1.0", Sequence: 1, PackageID: "basic_1.0:abc"}
)

func channelConfig(rule common.ImplicitMetaPolicy_Rule) *common.Config {
	return fixtures.Channel{
		Consensus:   "etcdraft",
		OrdererOrgs: []fixtures.Org{{MspID: "OrdererMSP"}},
		Consenters:  []fixtures.Consenter{{Host: "orderer0", Port: 7050, MspID: "OrdererMSP"}},
		ApplicationOrgs: []fixtures.Org{
			{MspID: "Org1MSP", RootCert: []byte("org1-ca")},
			{MspID: "Org2MSP", RootCert: []byte("org2-ca")},
			{MspID: "Org3MSP"},
		},
		LifecycleEndorsement: fixtures.ImplicitMeta(rule),
	}.Config()
}

type env struct {
	f    *Fabric
	pool *mocks.PeerPool
	ords *mocks.OrdererPool
	ends map[string]*mocks.RoutingEndorser
}

func newEnv(t *testing.T, conf *common.Config, targets ...chaincode.PeerTarget) *env {
	t.Helper()
	e := &env{pool: mocks.NewPeerPool(), ords: mocks.NewOrdererPool(), ends: make(map[string]*mocks.RoutingEndorser)}
	for _, target := range targets {
		end := mocks.NewRoutingEndorser().Handle(cscc.GetChannelConfig, func([]byte) (*pb.ProposalResponse, error) {
			return mocks.SuccessResponse(conf), nil
		})
		e.ends[target.Name] = end
		e.pool.AddEndorser(&peer.Peer{Host: target.Host, Port: target.Port, MspID: target.MspID}, end)
	}
	e.ords.Add("orderer0:7050", mocks.NewOrdererClient(true))
	e.f = New(zap.NewNop(), &mocks.Signer{MspID: "Org1MSP"}, e.pool, e.ords, Options{MspID: "Org1MSP", Concurrency: 2})
	return e
}

func installed(id string) mocks.Handler {
	return func([]byte) (*pb.ProposalResponse, error) {
		return mocks.SuccessResponse(&lb.InstallChaincodeResult{PackageId: id, Label: "basic_1.0"}), nil
	}
}

func failed(status common.Status, msg string) mocks.Handler {
	return func([]byte) (*pb.ProposalResponse, error) {
		return mocks.ErrorResponse(status, msg), nil
	}
}

func TestSendInstallProposal(t *testing.T) {
	offline := chaincode.PeerTarget{Name: "offline", MspID: "Org1MSP", Host: "offline", Port: 7051}
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0, peer1, peer2)
	e.ends["peer0"].Handle("InstallChaincode", installed("basic_1.0:abc"))
	e.ends["peer1"].Handle("InstallChaincode", failed(common.Status_INTERNAL_SERVER_ERROR,
		"failed to invoke backing implementation of 'InstallChaincode': chaincode already successfully installed (package ID 'basic_1.0:abc')"))
	e.ends["peer2"].Handle("InstallChaincode", failed(common.Status_INTERNAL_SERVER_ERROR, "access denied"))

	res, err := e.f.SendInstallProposal(context.Background(), []chaincode.PeerTarget{peer0, peer1, peer2, offline}, []byte("package"))
	require.NoError(t, err)
	require.Len(t, res, 4)

	assert.Equal(t, chaincode.StatusSuccess, res[0].Status)
	assert.Equal(t, "basic_1.0:abc", res[0].PackageID)
	assert.Equal(t, chaincode.StatusSuccess, res[1].Status)
	assert.Equal(t, "basic_1.0:abc", res[1].PackageID)
	assert.Equal(t, chaincode.StatusEndorsementFailure, res[2].Status)
	assert.Equal(t, "access denied", res[2].Message)
	assert.Equal(t, chaincode.StatusConnectionFailure, res[3].Status)
	assert.Equal(t, offline, res[3].Peer)
}

func TestSendApprovalProposal(t *testing.T) {
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0, peer1)
	var approved lb.ApproveChaincodeDefinitionForMyOrgArgs
	e.ends["peer0"].Handle("ApproveChaincodeDefinitionForMyOrg", func(raw []byte) (*pb.ProposalResponse, error) {
		if err := proto.Unmarshal(raw, &approved); err != nil {
			return nil, err
		}
		return mocks.SuccessResponse(nil), nil
	})
	e.ends["peer1"].Handle("ApproveChaincodeDefinitionForMyOrg", func([]byte) (*pb.ProposalResponse, error) {
		return mocks.SuccessResponse(nil), nil
	})

	res, err := e.f.SendApprovalProposal(context.Background(), testChannel, []chaincode.PeerTarget{peer0, peer1}, basic, chaincode.NoCollectionConfig())
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, chaincode.StatusSuccess, res[0].Status)
	assert.Equal(t, chaincode.StatusSuccess, res[1].Status)
	assert.Equal(t, 1, e.ords.Sent())

	assert.Equal(t, "basic", approved.Name)
	assert.Equal(t, int64(1), approved.Sequence)
	assert.Equal(t, "basic_1.0:abc", approved.GetSource().GetLocalPackage().GetPackageId())
	assert.Equal(t, "escc", approved.EndorsementPlugin)
	assert.Equal(t, "vscc", approved.ValidationPlugin)
}

func TestSendApprovalProposalNotEndorsed(t *testing.T) {
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
	e.ends["peer0"].Handle("ApproveChaincodeDefinitionForMyOrg", failed(common.Status_INTERNAL_SERVER_ERROR, "attempted to redefine"))

	res, err := e.f.SendApprovalProposal(context.Background(), testChannel, []chaincode.PeerTarget{peer0}, basic, chaincode.NoCollectionConfig())
	require.NoError(t, err)
	assert.Equal(t, chaincode.StatusEndorsementFailure, res[0].Status)
	assert.Zero(t, e.ords.Sent())
}

func TestSendApprovalProposalSequenceMismatch(t *testing.T) {
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
	e.ends["peer0"].Handle("ApproveChaincodeDefinitionForMyOrg", failed(common.Status_INTERNAL_SERVER_ERROR,
		"failed to invoke backing implementation of 'ApproveChaincodeDefinitionForMyOrg': requested sequence is 3, but new definition must be sequence 2"))

	res, err := e.f.SendApprovalProposal(context.Background(), testChannel, []chaincode.PeerTarget{peer0}, basic, chaincode.NoCollectionConfig())
	assert.ErrorIs(t, err, chaincode.ErrSequenceMismatch)
	require.Len(t, res, 1)
	assert.Zero(t, e.ords.Sent())
}

func TestSendApprovalProposalRejected(t *testing.T) {
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
	e.ords.Add("orderer0:7050", mocks.NewRejectingOrdererClient(common.Status_FORBIDDEN))
	e.ends["peer0"].Handle("ApproveChaincodeDefinitionForMyOrg", func([]byte) (*pb.ProposalResponse, error) {
		return mocks.SuccessResponse(nil), nil
	})

	_, err := e.f.SendApprovalProposal(context.Background(), testChannel, []chaincode.PeerTarget{peer0}, basic, chaincode.NoCollectionConfig())
	assert.ErrorIs(t, err, chaincode.ErrOrdererRejected)
}

func TestSendApprovalProposalInvalidPolicy(t *testing.T) {
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
	def := basic
	def.EndorsementPolicy = "OR('Org1MSP.member'"

	_, err := e.f.SendApprovalProposal(context.Background(), testChannel, []chaincode.PeerTarget{peer0}, def, chaincode.NoCollectionConfig())
	assert.Error(t, err)
	assert.Zero(t, e.ends["peer0"].Calls("ApproveChaincodeDefinitionForMyOrg"))
}

func readiness(approvals map[string]bool) mocks.Handler {
	return func([]byte) (*pb.ProposalResponse, error) {
		return mocks.SuccessResponse(&lb.CheckCommitReadinessResult{Approvals: approvals}), nil
	}
}

func TestCheckCommitReadiness(t *testing.T) {
	approvals := map[string]bool{"Org1MSP": true, "Org2MSP": true, "Org3MSP": false}

	for _, tc := range []struct {
		rule  common.ImplicitMetaPolicy_Rule
		ready bool
	}{
		{common.ImplicitMetaPolicy_ANY, true},
		{common.ImplicitMetaPolicy_MAJORITY, true},
		{common.ImplicitMetaPolicy_ALL, false},
	} {
		t.Run(tc.rule.String(), func(t *testing.T) {
			e := newEnv(t, channelConfig(tc.rule), peer0)
			e.ends["peer0"].Handle("CheckCommitReadiness", readiness(approvals))

			res, err := e.f.CheckCommitReadiness(context.Background(), testChannel, basic, chaincode.NoCollectionConfig())
			require.NoError(t, err)
			assert.Equal(t, approvals, res.Approvals)
			assert.Equal(t, tc.ready, res.Ready)
		})
	}
}

func TestCheckCommitReadinessUnavailable(t *testing.T) {
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY))
	_, err := e.f.CheckCommitReadiness(context.Background(), testChannel, basic, chaincode.NoCollectionConfig())
	assert.ErrorIs(t, err, chaincode.ErrUnavailable)
}

func TestCheckCommitReadinessWithoutChannelConfig(t *testing.T) {
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
	e.ends["peer0"].Handle("CheckCommitReadiness", readiness(map[string]bool{"Org1MSP": true, "Org2MSP": true}))
	e.ends["peer0"].Handle(cscc.GetChannelConfig, failed(common.Status_INTERNAL_SERVER_ERROR, "access denied"))

	res, err := e.f.CheckCommitReadiness(context.Background(), testChannel, basic, chaincode.NoCollectionConfig())
	require.ErrorIs(t, err, chaincode.ErrUnavailable)
	assert.ErrorContains(t, err, "lifecycle endorsement policy")
	assert.False(t, res.Ready)
	assert.Nil(t, res.Approvals)
}

func TestQueryApprovedOrganizations(t *testing.T) {
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
	e.ends["peer0"].Handle("CheckCommitReadiness", readiness(map[string]bool{"Org2MSP": true, "Org1MSP": true, "Org3MSP": false}))

	orgs, err := e.f.QueryApprovedOrganizations(context.Background(), testChannel, basic, chaincode.NoCollectionConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"Org1MSP", "Org2MSP"}, orgs)
}

func commitOK([]byte) (*pb.ProposalResponse, error) {
	return mocks.SuccessResponse(nil), nil
}

func TestSubmitCommit(t *testing.T) {
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0, peer2)
	e.ends["peer0"].Handle("CommitChaincodeDefinition", commitOK)
	e.ends["peer2"].Handle("CommitChaincodeDefinition", failed(common.Status_INTERNAL_SERVER_ERROR, "not approved"))

	txID, err := e.f.SubmitCommit(context.Background(), testChannel, nil, []chaincode.PeerTarget{peer0, peer2}, basic, chaincode.NoCollectionConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, txID)
	assert.Equal(t, 1, e.ords.Sent())
}

func TestSubmitCommitToConfiguredOrderer(t *testing.T) {
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
	e.ends["peer0"].Handle("CommitChaincodeDefinition", commitOK)
	configured := mocks.NewOrdererClient(true)
	e.ords.Add("orderer.local:7050", configured)

	_, err := e.f.SubmitCommit(context.Background(), testChannel,
		[]chaincode.OrdererTarget{{Host: "orderer.local", Port: 7050}}, []chaincode.PeerTarget{peer0}, basic, chaincode.NoCollectionConfig())
	require.NoError(t, err)
	assert.Equal(t, int32(1), configured.Sent.Load())
	assert.Equal(t, 1, e.ords.Sent())
}

func TestSubmitCommitFailures(t *testing.T) {
	t.Run("endorsement", func(t *testing.T) {
		e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
		e.ends["peer0"].Handle("CommitChaincodeDefinition", failed(common.Status_INTERNAL_SERVER_ERROR, "chaincode definition not agreed to by this org (Org1MSP)"))

		_, err := e.f.SubmitCommit(context.Background(), testChannel, nil, []chaincode.PeerTarget{peer0}, basic, chaincode.NoCollectionConfig())
		assert.ErrorIs(t, err, chaincode.ErrEndorsementFailed)
		assert.ErrorContains(t, err, "not agreed to by this org")
		assert.Zero(t, e.ords.Sent())
	})

	t.Run("sequence", func(t *testing.T) {
		e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
		e.ends["peer0"].Handle("CommitChaincodeDefinition", failed(common.Status_INTERNAL_SERVER_ERROR, "requested sequence is 2, but new definition must be sequence 1"))

		_, err := e.f.SubmitCommit(context.Background(), testChannel, nil, []chaincode.PeerTarget{peer0}, basic, chaincode.NoCollectionConfig())
		assert.ErrorIs(t, err, chaincode.ErrSequenceMismatch)
		assert.ErrorContains(t, err, "must be sequence 1")
		assert.Zero(t, e.ords.Sent())
	})

	t.Run("connection", func(t *testing.T) {
		e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
		_, err := e.f.SubmitCommit(context.Background(), testChannel, nil, []chaincode.PeerTarget{peer1}, basic, chaincode.NoCollectionConfig())
		assert.ErrorIs(t, err, chaincode.ErrUnavailable)
	})

	t.Run("rejected", func(t *testing.T) {
		e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
		e.ends["peer0"].Handle("CommitChaincodeDefinition", commitOK)
		e.ords.Add("orderer0:7050", mocks.NewRejectingOrdererClient(common.Status_BAD_REQUEST))

		_, err := e.f.SubmitCommit(context.Background(), testChannel, nil, []chaincode.PeerTarget{peer0}, basic, chaincode.NoCollectionConfig())
		assert.ErrorIs(t, err, chaincode.ErrOrdererRejected)
	})
}

type fakeDelivery struct {
	code pb.TxValidationCode
}

func (d fakeDelivery) SubscribeTx(ctx context.Context, _, _ string) (pb.TxValidationCode, error) {
	util.FromContext(ctx).Signal()
	return d.code, nil
}

func TestSubmitCommitWaitsForValidation(t *testing.T) {
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
	e.ends["peer0"].Handle("CommitChaincodeDefinition", commitOK)

	e.f.dlv = fakeDelivery{code: pb.TxValidationCode_VALID}
	_, err := e.f.SubmitCommit(context.Background(), testChannel, nil, []chaincode.PeerTarget{peer0}, basic, chaincode.NoCollectionConfig())
	require.NoError(t, err)

	e.f.dlv = fakeDelivery{code: pb.TxValidationCode_ENDORSEMENT_POLICY_FAILURE}
	_, err = e.f.SubmitCommit(context.Background(), testChannel, nil, []chaincode.PeerTarget{peer0}, basic, chaincode.NoCollectionConfig())
	assert.ErrorIs(t, err, chaincode.ErrOrdererRejected)
	assert.ErrorContains(t, err, "ENDORSEMENT_POLICY_FAILURE")
}

func TestQueryCurrentSequence(t *testing.T) {
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
	e.ends["peer0"].Handle("QueryChaincodeDefinition", func(raw []byte) (*pb.ProposalResponse, error) {
		var args lb.QueryChaincodeDefinitionArgs
		if err := proto.Unmarshal(raw, &args); err != nil {
			return nil, err
		}
		if args.Name != "basic" {
			return mocks.ErrorResponse(common.Status_NOT_FOUND, "namespace "+args.Name+" is not defined"), nil
		}
		return mocks.SuccessResponse(&lb.QueryChaincodeDefinitionResult{Sequence: 3, Version: "1.0"}), nil
	})

	seq, err := e.f.QueryCurrentSequence(context.Background(), testChannel, "basic", "1.0")
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)

	seq, err = e.f.QueryCurrentSequence(context.Background(), testChannel, "other", "1.0")
	require.NoError(t, err)
	assert.Zero(t, seq)
}

func approvedDefinition(version, packageID string) mocks.Handler {
	return func([]byte) (*pb.ProposalResponse, error) {
		return mocks.SuccessResponse(&lb.QueryApprovedChaincodeDefinitionResult{
			Sequence: 1,
			Version:  version,
			Source: &lb.ChaincodeSource{Type: &lb.ChaincodeSource_LocalPackage{
				LocalPackage: &lb.ChaincodeSource_Local{PackageId: packageID},
			}},
		}), nil
	}
}

func installedList(pkgs ...*lb.QueryInstalledChaincodesResult_InstalledChaincode) mocks.Handler {
	return func([]byte) (*pb.ProposalResponse, error) {
		return mocks.SuccessResponse(&lb.QueryInstalledChaincodesResult{InstalledChaincodes: pkgs}), nil
	}
}

func TestQueryCurrentPackageID(t *testing.T) {
	t.Run("approved", func(t *testing.T) {
		e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
		e.ends["peer0"].Handle("QueryApprovedChaincodeDefinition", approvedDefinition("1.0", "basic_1.0:abc"))

		id, err := e.f.QueryCurrentPackageID(context.Background(), testChannel, "basic", "1.0")
		require.NoError(t, err)
		assert.Equal(t, "basic_1.0:abc", id)
		assert.Zero(t, e.ends["peer0"].Calls("QueryInstalledChaincodes"))
	})

	t.Run("installed by label", func(t *testing.T) {
		e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
		e.ends["peer0"].Handle("QueryApprovedChaincodeDefinition", approvedDefinition("1.0", "basic_1.0:abc"))
		e.ends["peer0"].Handle("QueryInstalledChaincodes", installedList(
			&lb.QueryInstalledChaincodesResult_InstalledChaincode{PackageId: "basic_1.0:abc", Label: "basic_1.0"},
			&lb.QueryInstalledChaincodesResult_InstalledChaincode{PackageId: "basic_2.0:def", Label: "basic_2.0"},
		))

		id, err := e.f.QueryCurrentPackageID(context.Background(), testChannel, "basic", "2.0")
		require.NoError(t, err)
		assert.Equal(t, "basic_2.0:def", id)
	})

	t.Run("installed by name", func(t *testing.T) {
		e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
		e.ends["peer0"].Handle("QueryApprovedChaincodeDefinition", failed(common.Status_NOT_FOUND, "could not fetch approved chaincode definition"))
		e.ends["peer0"].Handle("QueryInstalledChaincodes", installedList(
			&lb.QueryInstalledChaincodesResult_InstalledChaincode{PackageId: "basic:fff", Label: "basic"},
		))

		id, err := e.f.QueryCurrentPackageID(context.Background(), testChannel, "basic", "3.0")
		require.NoError(t, err)
		assert.Equal(t, "basic:fff", id)
	})

	t.Run("missing", func(t *testing.T) {
		e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
		e.ends["peer0"].Handle("QueryApprovedChaincodeDefinition", failed(common.Status_NOT_FOUND, "could not fetch approved chaincode definition"))
		e.ends["peer0"].Handle("QueryInstalledChaincodes", installedList())

		_, err := e.f.QueryCurrentPackageID(context.Background(), testChannel, "basic", "1.0")
		assert.ErrorIs(t, err, chaincode.ErrDefinitionMissing)
	})

	t.Run("several packages of label", func(t *testing.T) {
		e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
		e.ends["peer0"].Handle("QueryApprovedChaincodeDefinition", failed(common.Status_NOT_FOUND, "could not fetch approved chaincode definition"))
		e.ends["peer0"].Handle("QueryInstalledChaincodes", installedList(
			&lb.QueryInstalledChaincodesResult_InstalledChaincode{PackageId: "basic_1.0:111old", Label: "basic_1.0"},
			&lb.QueryInstalledChaincodesResult_InstalledChaincode{PackageId: "basic_1.0:999new", Label: "basic_1.0"},
		))

		_, err := e.f.QueryCurrentPackageID(context.Background(), testChannel, "basic", "1.0")
		assert.ErrorIs(t, err, chaincode.ErrAmbiguousPackage)
		assert.ErrorContains(t, err, "basic_1.0:111old, basic_1.0:999new")
	})

	t.Run("reinstalled package wins", func(t *testing.T) {
		e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
		e.ends["peer0"].Handle("InstallChaincode", installed("basic_1.0:999new"))
		e.ends["peer0"].Handle("QueryApprovedChaincodeDefinition", approvedDefinition("1.0", "basic_1.0:111old"))
		e.ends["peer0"].Handle("QueryInstalledChaincodes", installedList(
			&lb.QueryInstalledChaincodesResult_InstalledChaincode{PackageId: "basic_1.0:111old", Label: "basic_1.0"},
			&lb.QueryInstalledChaincodesResult_InstalledChaincode{PackageId: "basic_1.0:999new", Label: "basic_1.0"},
		))

		res, err := e.f.SendInstallProposal(context.Background(), []chaincode.PeerTarget{peer0}, []byte("package"))
		require.NoError(t, err)
		require.Equal(t, chaincode.StatusSuccess, res[0].Status)

		id, err := e.f.QueryCurrentPackageID(context.Background(), testChannel, "basic", "1.0")
		require.NoError(t, err)
		assert.Equal(t, "basic_1.0:999new", id)
		assert.Zero(t, e.ends["peer0"].Calls("QueryApprovedChaincodeDefinition"))
	})

	t.Run("diverging install is not remembered", func(t *testing.T) {
		e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0, peer1)
		e.ends["peer0"].Handle("InstallChaincode", installed("basic_1.0:999new"))
		e.ends["peer1"].Handle("InstallChaincode", installed("basic_1.0:111old"))

		_, err := e.f.SendInstallProposal(context.Background(), []chaincode.PeerTarget{peer0, peer1}, []byte("package"))
		require.NoError(t, err)
		_, ok := e.f.lastInstalled("basic_1.0")
		assert.False(t, ok)
	})
}

func TestHeight(t *testing.T) {
	e := newEnv(t, channelConfig(common.ImplicitMetaPolicy_MAJORITY), peer0)
	e.ends["peer0"].Handle("GetChainInfo", func(raw []byte) (*pb.ProposalResponse, error) {
		return mocks.SuccessResponse(&common.BlockchainInfo{Height: 7}), nil
	})

	h, err := e.f.Height(context.Background(), testChannel)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), h)
}

func TestQuorumBft(t *testing.T) {
	for n, q := range map[int]int{1: 1, 3: 2, 4: 3, 7: 5, 10: 7} {
		assert.Equal(t, q, quorumBft(n), "n=%d", n)
	}
}
