package grpc

import (
	"context"

	"carshare-escrow/internal/domain"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// PrincipalHeader is set by the auth interceptor after the token is verified.
const PrincipalHeader = "x-principal"

// GetPrincipalFromContext extracts the caller principal from the gRPC metadata.
func GetPrincipalFromContext(ctx context.Context) (domain.Principal, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Errorf(codes.Unauthenticated, "metadata is not provided")
	}

	values := md.Get(PrincipalHeader)
	if len(values) == 0 {
		return "", status.Errorf(codes.Unauthenticated, "principal is not provided in metadata")
	}

	p, err := domain.ParsePrincipal(values[0])
	if err != nil {
		return "", status.Errorf(codes.InvalidArgument, "invalid principal: %v", err)
	}
	return p, nil
}
