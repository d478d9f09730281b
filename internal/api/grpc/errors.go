package grpc

import (
	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/logger"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain names the ErrorInfo domain attached to engine rejections.
const ErrorDomain = "carshare.v1"

var kindCodes = map[string]codes.Code{
	"ListingNotFound": codes.NotFound,
	"BookingNotFound": codes.NotFound,

	"AlreadyRegistered": codes.AlreadyExists,
	"AlreadyRated":      codes.AlreadyExists,

	"NotContractOwner":     codes.PermissionDenied,
	"NotCarOwner":          codes.PermissionDenied,
	"RoleConflict":         codes.PermissionDenied,
	"OwnCarBooking":        codes.PermissionDenied,
	"NotParty":             codes.PermissionDenied,
	"NotArbitrator":        codes.PermissionDenied,
	"OnlyRenter":           codes.PermissionDenied,
	"OnlyCarOwner":         codes.PermissionDenied,
	"NotInsuranceVerifier": codes.PermissionDenied,

	"FeeTooHigh":       codes.InvalidArgument,
	"BadPrice":         codes.InvalidArgument,
	"InvalidRange":     codes.InvalidArgument,
	"IncorrectEscrow":  codes.InvalidArgument,
	"SplitMismatch":    codes.InvalidArgument,
	"RatingOutOfRange": codes.InvalidArgument,
	"InvalidPrincipal": codes.InvalidArgument,
}

// CodeForKind maps a rejection kind to its gRPC code. Kinds not listed are
// state preconditions.
func CodeForKind(kind string) codes.Code {
	if c, ok := kindCodes[kind]; ok {
		return c
	}
	return codes.FailedPrecondition
}

// toStatus converts a service error into a gRPC status. Rejections carry
// their kind as ErrorInfo.Reason; anything else is reported as internal.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	kind := domain.KindOf(err)
	if kind == "" {
		logger.Error("Internal error", "error", err)
		return status.Error(codes.Internal, "internal error")
	}

	st := status.New(CodeForKind(kind), err.Error())
	detailed, derr := st.WithDetails(&errdetails.ErrorInfo{Reason: kind, Domain: ErrorDomain})
	if derr != nil {
		return st.Err()
	}
	return detailed.Err()
}

// KindFromError recovers the rejection kind from a status returned by the
// service. It returns "" for errors that are not rejections.
func KindFromError(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.Domain == ErrorDomain {
			return info.Reason
		}
	}
	return ""
}

