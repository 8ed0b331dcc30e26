package plane

import (
	"html"
	"net/http"
	"strconv"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"github.com/atomyze-foundation/hlf-lifecycle/service/orchestrator"
	"go.uber.org/zap"
)

func (s *srv) operations(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	networkName, err := requiredParam(r, paramNetwork)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opName, err := requiredParam(r, paramOperation)
	if err != nil {
		s.writeError(w, err)
		return
	}
	op, err := chaincode.ParseOperationType(opName)
	if err != nil {
		s.writeError(w, &requestError{field: paramOperation, reason: err.Error()})
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Debug("chaincode operation",
		zap.String("network", networkName),
		zap.Stringer("operation", op),
		zap.Stringer("definition", body.def),
		zap.Bool("collections", body.collections.Present()),
		zap.Int("packageSize", len(body.pkg)),
	)
	res, err := s.op.PerformOperation(r.Context(), orchestrator.Request{
		Network:     networkName,
		Operation:   op,
		Definition:  body.def,
		Collections: body.collections,
		Package:     body.pkg,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	res.Message = html.EscapeString(res.Message)
	s.writeJSON(w, http.StatusOK, res)
}

func (s *srv) sequence(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	networkName, name, version, err := chaincodeParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	seq, err := s.op.CurrentSequence(r.Context(), networkName, name, version)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeText(w, strconv.FormatInt(seq, 10))
}

func (s *srv) packageID(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	networkName, name, version, err := chaincodeParams(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := s.op.CurrentPackageID(r.Context(), networkName, name, version)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeText(w, id)
}

func (s *srv) approvedOrganizations(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	networkName, err := requiredParam(r, paramNetwork)
	if err != nil {
		s.writeError(w, err)
		return
	}
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	orgs, err := s.op.ApprovedOrganizations(r.Context(), networkName, body.def, body.collections)
	if err != nil {
		s.writeError(w, err)
		return
	}
	escaped := make([]string, 0, len(orgs))
	for _, org := range orgs {
		escaped = append(escaped, html.EscapeString(org))
	}
	s.writeJSON(w, http.StatusOK, escaped)
}

func chaincodeParams(r *http.Request) (networkName, name, version string, err error) {
	if networkName, err = requiredParam(r, paramNetwork); err != nil {
		return
	}
	if name, err = requiredParam(r, paramName); err != nil {
		return
	}
	version, err = requiredParam(r, paramVersion)
	return
}
