package middleware

import (
	"context"
	"encoding/json"
	"html"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/status"
)

type errorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler renders gateway errors as escaped JSON error body.
func ErrorHandler(logger *zap.Logger) runtime.ServeMuxOption {
	return runtime.WithErrorHandler(func(ctx context.Context, mux *runtime.ServeMux, marshaler runtime.Marshaler, writer http.ResponseWriter, request *http.Request, err error) {
		writer.Header().Del("Trailer")
		writer.Header().Del("Transfer-Encoding")

		code, msg := http.StatusInternalServerError, err.Error()
		if s, ok := status.FromError(err); ok {
			code, msg = runtime.HTTPStatusFromCode(s.Code()), s.Message()
		}
		writeError(writer, code, msg)
		logger.Error("request error", zap.String("path", request.URL.Path), zap.Int("code", code), zap.String("error", msg))
	})
}

// RoutingErrorHandler renders unknown routes and methods the same way as other errors.
func RoutingErrorHandler() runtime.ServeMuxOption {
	return runtime.WithRoutingErrorHandler(func(ctx context.Context, mux *runtime.ServeMux, marshaler runtime.Marshaler, writer http.ResponseWriter, request *http.Request, httpStatus int) {
		writeError(writer, httpStatus, http.StatusText(httpStatus))
	})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	b, _ := json.Marshal(errorResponse{Error: html.EscapeString(msg)})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
