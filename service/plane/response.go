package plane

import (
	"encoding/json"
	"errors"
	"html"
	"net/http"

	"github.com/atomyze-foundation/hlf-lifecycle/pkg/chaincode"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

// StatusFromError maps lifecycle error to HTTP status code.
func StatusFromError(err error) int {
	var (
		reqErr       *requestError
		unknown      *chaincode.UnknownNetworkError
		invalid      *chaincode.InvalidDefinitionError
		conflict     *chaincode.SequenceConflictError
		mismatch     *chaincode.PackageIdentityMismatchError
		insufficient *chaincode.InsufficientEndorsementError
		unavailable  *chaincode.LedgerUnavailableError
		rejected     *chaincode.CommitRejectedError
	)
	switch {
	case errors.As(err, &reqErr), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &unknown):
		return http.StatusNotFound
	case errors.As(err, &conflict), errors.As(err, &mismatch):
		return http.StatusConflict
	case errors.As(err, &insufficient):
		return http.StatusPreconditionFailed
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &rejected):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *srv) writeError(w http.ResponseWriter, err error) {
	code := StatusFromError(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("code", code), zap.Error(err))
	} else {
		s.logger.Info("request refused", zap.Int("code", code), zap.Error(err))
	}
	s.writeJSON(w, code, errorResponse{Error: html.EscapeString(err.Error())})
}

func (s *srv) writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("response json marshal error", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(b); err != nil {
		s.logger.Error("response write error", zap.Error(err))
	}
}

func (s *srv) writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html.EscapeString(text))); err != nil {
		s.logger.Error("response write error", zap.Error(err))
	}
}
