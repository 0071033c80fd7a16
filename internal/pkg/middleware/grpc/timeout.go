package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/autopeer-io/missionlens/pkg/log"
)

const DefaultRPCTimeout = 10 * time.Second

// UnaryClientTimeout bounds calls that carry no deadline of their own.
// A non-positive timeout uses DefaultRPCTimeout.
func UnaryClientTimeout(timeout time.Duration) grpc.UnaryClientInterceptor {
	if timeout <= 0 {
		timeout = DefaultRPCTimeout
	}
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// UnaryServerTimeout caps the handler deadline at timeout. Shorter client
// deadlines still win.
func UnaryServerTimeout(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = DefaultRPCTimeout
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return handler(ctx, req)
	}
}

// UnaryServerLogger logs every call at debug level and failed calls with
// their status code.
func UnaryServerLogger(logger log.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("gRPC call failed", "method", info.FullMethod, "code", status.Code(err).String(), "error", err.Error())
			return resp, err
		}
		logger.Debug("gRPC call", "method", info.FullMethod, "latency", time.Since(start))
		return resp, nil
	}
}
