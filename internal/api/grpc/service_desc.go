package grpc

import (
	"context"

	"carshare-escrow/internal/domain"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "carshare.v1.CarShareService"

// FullMethod returns the path of a method on the service.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary builds a MethodDesc for a handler method. Messages are decoded by the
// JSON codec, so the request type only needs a zero value.
func unary[Req, Resp any](name string, call func(*Handler, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			h := srv.(*Handler)
			if interceptor == nil {
				return call(h, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(h, ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc describes CarShareService for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{
		unary("WhoAmI", (*Handler).WhoAmI),
		unary("Register", (*Handler).Register),
		unary("SetRoles", (*Handler).SetRoles),
		unary("SetPlatformFee", (*Handler).SetPlatformFee),
		unary("GetRoles", (*Handler).GetRoles),

		unary("CreateListing", (*Handler).CreateListing),
		unary("EditListing", (*Handler).EditListing),
		unary("SetListingActive", (*Handler).SetListingActive),
		unary("VerifyInsurance", (*Handler).VerifyInsurance),
		unary("GetListing", (*Handler).GetListing),
		unary("ListListings", (*Handler).ListListings),

		unary("RequestBooking", (*Handler).RequestBooking),
		unary("ApproveBooking", (*Handler).ApproveBooking),
		unary("RejectBooking", (*Handler).RejectBooking),
		unary("CancelBeforeActive", (*Handler).CancelBeforeActive),
		unary("ConfirmPickup", (*Handler).ConfirmPickup),
		unary("ConfirmReturn", (*Handler).ConfirmReturn),
		unary("OpenDispute", (*Handler).OpenDispute),
		unary("ResolveDispute", (*Handler).ResolveDispute),
		unary("GetBooking", (*Handler).GetBooking),
		unary("ListBookings", (*Handler).ListBookings),

		unary("RateOwner", (*Handler).RateOwner),
		unary("RateRenter", (*Handler).RateRenter),
		unary("GetRating", (*Handler).GetRating),
		unary("GetReputation", (*Handler).GetReputation),

		unary("Withdraw", (*Handler).Withdraw),
		unary("GetBalance", (*Handler).GetBalance),
		unary("ListLedgerEntries", (*Handler).ListLedgerEntries),
		unary("GetLedgerSummary", (*Handler).GetLedgerSummary),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "carshare/v1/carshare.proto",
}

// RegisterCarShareServer registers h on s.
func RegisterCarShareServer(s grpc.ServiceRegistrar, h *Handler) {
	s.RegisterService(&ServiceDesc, h)
}

// NewServer returns a grpc.Server speaking the JSON codec with the given
// interceptors chained in order.
func NewServer(h *Handler, interceptors ...grpc.UnaryServerInterceptor) *grpc.Server {
	s := grpc.NewServer(
		grpc.ForceServerCodec(Codec{}),
		grpc.ChainUnaryInterceptor(interceptors...),
	)
	RegisterCarShareServer(s, h)
	return s
}

// Client invokes CarShareService methods over a client connection.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Call invokes method with in and decodes the reply into out.
func (c *Client) Call(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append(opts, grpc.ForceCodec(Codec{}))
	return c.conn.Invoke(ctx, FullMethod(method), in, out, opts...)
}

// Summary fetches the ledger reconciliation view.
func (c *Client) Summary(ctx context.Context) (*domain.LedgerSummary, error) {
	out := new(domain.LedgerSummary)
	if err := c.Call(ctx, "GetLedgerSummary", &Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBookings fetches every booking.
func (c *Client) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	out := new(ListBookingsResponse)
	if err := c.Call(ctx, "ListBookings", &ListBookingsRequest{}, out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}
