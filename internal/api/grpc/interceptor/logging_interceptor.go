package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"carshare-escrow/internal/logger"
)

// UnaryLogging logs every call with its status code and duration. Calls that
// fail inside the server are logged at error level.
func UnaryLogging() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		started := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(started)}
		switch code {
		case codes.Internal, codes.Unknown:
			logger.ErrorContext(ctx, "gRPC call failed", append(args, "error", err)...)
		default:
			logger.Debug("gRPC call", args...)
		}
		return resp, err
	}
}
