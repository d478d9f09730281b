package interceptor

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"carshare-escrow/internal/config"
	"carshare-escrow/internal/logger"
	"carshare-escrow/internal/security"
)

// PrincipalHeader mirrors the header the handlers read the caller from.
const PrincipalHeader = "x-principal"

type AuthInterceptor struct {
	tokenManager security.TokenManager
}

func NewAuthInterceptor(tm security.TokenManager) *AuthInterceptor {
	return &AuthInterceptor{tokenManager: tm}
}

// Unary returns a server interceptor function to authenticate unary RPCs
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		// Copy so a client supplied principal header never reaches a handler.
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			md = metadata.New(nil)
		} else {
			md = md.Copy()
		}
		md.Delete(PrincipalHeader)

		level := config.GetSecurityLevel(info.FullMethod)

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			return handler(metadata.NewIncomingContext(ctx, md), req)
		}

		token, err := extractToken(md)
		if err != nil {
			return nil, err
		}

		claims, err := i.tokenManager.ValidateToken(token)
		if err != nil {
			logger.InfoContext(ctx, "Rejected access token", "method", info.FullMethod, "error", err)
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}
		principal, err := claims.Principal()
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid token subject: %v", err)
		}

		md.Set(PrincipalHeader, principal.String())
		return handler(metadata.NewIncomingContext(ctx, md), req)
	}
}

func extractToken(md metadata.MD) (string, error) {
	authHeader := md.Get("authorization")
	if len(authHeader) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}

	token := authHeader[0]
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}

	return token, nil
}
