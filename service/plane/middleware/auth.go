package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	authHeader   = "authorization"
	bearerPrefix = "Bearer "
	healthCheck  = "/grpc.health.v1.Health/Check"
)

// validToken compares header value with token, with or without bearer prefix.
func validToken(value, token string) bool {
	value = strings.TrimPrefix(value, bearerPrefix)
	return subtle.ConstantTimeCompare([]byte(value), []byte(token)) == 1
}

// AuthenticationInterceptor checks access token of unary gRPC calls. Empty token disables the check.
func AuthenticationInterceptor(token string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		// skip auth check on service healthcheck
		if token == "" || info.FullMethod == healthCheck {
			return handler(ctx, req)
		}
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Errorf(codes.Unauthenticated, "metadata is not provided")
		}
		if len(md.Get(authHeader)) != 1 {
			return nil, status.Errorf(codes.Unauthenticated, "auth header is not provided")
		}
		if !validToken(md.Get(authHeader)[0], token) {
			return nil, status.Errorf(codes.Unauthenticated, "auth header is invalid")
		}
		return handler(ctx, req)
	}
}

// Authentication checks access token of HTTP requests to paths with presented prefixes.
// Empty token disables the check.
func Authentication(token string, next http.Handler, prefixes ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token == "" || !hasPrefix(r.URL.Path, prefixes) {
			next.ServeHTTP(w, r)
			return
		}
		values := r.Header.Values(authHeader)
		switch {
		case len(values) != 1:
			writeError(w, http.StatusUnauthorized, "auth header is not provided")
		case !validToken(values[0], token):
			writeError(w, http.StatusUnauthorized, "auth header is invalid")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
