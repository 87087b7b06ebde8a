package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Authentication failures shared by the HTTP and gRPC front ends.
var (
	errNoCredentials = errors.New("missing authorization header")
	errBadScheme     = errors.New("authorization scheme must be Bearer")
	errBadToken      = errors.New("invalid token")
)

const bearerPrefix = "Bearer "

// bearerAuth checks a shared bearer token. An empty token disables the check.
type bearerAuth struct {
	token []byte
}

func newBearerAuth(token string) bearerAuth {
	return bearerAuth{token: []byte(token)}
}

func (a bearerAuth) enabled() bool { return len(a.token) > 0 }

// verify checks the value of an Authorization header.
func (a bearerAuth) verify(header string) error {
	if !a.enabled() {
		return nil
	}
	if header == "" {
		return errNoCredentials
	}
	got, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return errBadScheme
	}
	if subtle.ConstantTimeCompare([]byte(got), a.token) != 1 {
		return errBadToken
	}
	return nil
}

// publicRPC lists gRPC methods callable without a token.
func publicRPC(fullMethod string) bool {
	return strings.HasPrefix(fullMethod, "/"+healthpb.Health_ServiceDesc.ServiceName+"/")
}

// publicRoute lists HTTP routes callable without a token.
func publicRoute(r *http.Request) bool {
	return r.Method == http.MethodGet && r.URL.Path == "/v1/health"
}

// AuthInterceptor rejects unary calls without the bearer token as
// Unauthenticated. Health checks are always allowed.
func AuthInterceptor(token string) grpc.UnaryServerInterceptor {
	auth := newBearerAuth(token)
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !auth.enabled() || publicRPC(info.FullMethod) {
			return handler(ctx, req)
		}
		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get("authorization"); len(vals) > 0 {
				header = vals[0]
			}
		}
		if err := auth.verify(header); err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return handler(ctx, req)
	}
}

// AuthMiddleware rejects HTTP requests without the bearer token with 401.
// GET /v1/health is always allowed.
func AuthMiddleware(token string, next http.Handler) http.Handler {
	auth := newBearerAuth(token)
	if !auth.enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicRoute(r) {
			next.ServeHTTP(w, r)
			return
		}
		if err := auth.verify(r.Header.Get("Authorization")); err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="quotewidget"`)
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rpcLogLevel picks the log level for a finished call: server faults are
// errors, client mistakes are warnings.
func rpcLogLevel(code codes.Code) slog.Level {
	switch code {
	case codes.OK:
		return slog.LevelInfo
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// LoggingInterceptor logs every unary call with its status code and latency.
func LoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)
	attrs := []any{
		"method", info.FullMethod,
		"code", code.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	slog.Log(ctx, rpcLogLevel(code), "rpc", attrs...)
	return resp, err
}

// RecoveryInterceptor turns a handler panic into codes.Internal.
func RecoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("rpc panicked", "method", info.FullMethod, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			resp, err = nil, status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}
