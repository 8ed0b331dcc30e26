package lifecycle

import (
	"context"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	lb "github.com/hyperledger/fabric-protos-go/peer/lifecycle"
)

// CcName is the name of the lifecycle system chaincode.
const CcName = "_lifecycle"

// _lifecycle functions invoked by this package.
const (
	installFunc                = "InstallChaincode"
	queryInstalledFunc         = "QueryInstalledChaincodes"
	approveForMyOrgFunc        = "ApproveChaincodeDefinitionForMyOrg"
	queryApprovedFunc          = "QueryApprovedChaincodeDefinition"
	checkCommitReadinessFunc   = "CheckCommitReadiness"
	commitFunc                 = "CommitChaincodeDefinition"
	queryCommittedFunc         = "QueryChaincodeDefinitions"
	queryCommittedWithNameFunc = "QueryChaincodeDefinition"
)

type InstalledChaincode struct {
	PackageID string
	Label     string
}

// ApproveRequest is the definition an organization approves, policy already marshaled.
type ApproveRequest struct {
	Name              string
	Version           string
	Sequence          int64
	PackageID         string
	InitRequired      bool
	SignaturePolicy   []byte
	EndorsementPlugin string
	ValidationPlugin  string
	Collections       *pb.CollectionConfigPackage
}

// Client performs read-only _lifecycle queries against a single peer.
//
//go:generate mockery --name Client --structname LifecycleClient --filename lifecycle.go
type Client interface {
	Install(ctx context.Context, pkg []byte) (*lb.InstallChaincodeResult, error)
	QueryInstalled(ctx context.Context) ([]InstalledChaincode, error)
	// QueryApproved returns definition approved by the organization of identity,
	// zero sequence means the latest approved one.
	QueryApproved(ctx context.Context, channelName, chaincodeName string, sequence int64) (*lb.QueryApprovedChaincodeDefinitionResult, error)
	CheckCommitReadiness(ctx context.Context, channelName string, args *lb.CheckCommitReadinessArgs) (*lb.CheckCommitReadinessResult, error)
	QueryCommitted(ctx context.Context, channelName string) ([]*lb.QueryChaincodeDefinitionsResult_ChaincodeDefinition, error)
	// QueryCommittedWithName fails when chaincode is not defined on channel.
	QueryCommittedWithName(ctx context.Context, channelName, chaincodeName string) (*lb.QueryChaincodeDefinitionResult, error)
}
