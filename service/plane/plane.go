package plane

import (
	"context"
	"fmt"
	"net/http"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/service/orchestrator"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

// Operator performs lifecycle operations on behalf of HTTP callers.
type Operator interface {
	PerformOperation(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error)
	CurrentSequence(ctx context.Context, network, name, version string) (int64, error)
	CurrentPackageID(ctx context.Context, network, name, version string) (string, error)
	ApprovedOrganizations(ctx context.Context, network string, def chaincode.Definition, collections chaincode.CollectionConfig) ([]string, error)
}

const (
	pathOperations = "/chaincode/operations"
	pathSequence   = "/chaincode/sequence"
	pathPackageID  = "/chaincode/packageId"
	pathApproved   = "/chaincode/approved-organisations"
)

type srv struct {
	logger *zap.Logger
	op     Operator
	// maxPackageSize limits in-memory part of multipart request.
	maxPackageSize int64
}

// Register binds chaincode lifecycle routes to the gateway mux.
func Register(mux *runtime.ServeMux, logger *zap.Logger, op Operator, maxPackageSize int64) error {
	s := &srv{
		logger:         logger.Named("plane"),
		op:             op,
		maxPackageSize: maxPackageSize,
	}
	routes := []struct {
		method, path string
		h            runtime.HandlerFunc
	}{
		{http.MethodPut, pathOperations, s.operations},
		{http.MethodGet, pathSequence, s.sequence},
		{http.MethodGet, pathPackageID, s.packageID},
		{http.MethodPost, pathApproved, s.approvedOrganizations},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.path, r.h); err != nil {
			return fmt.Errorf("register %s %s: %w", r.method, r.path, err)
		}
	}
	return nil
}
