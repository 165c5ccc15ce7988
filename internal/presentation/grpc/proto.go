package grpc

// proto.go hand-writes the service descriptor for origination.v1. Messages
// travel over the JSON codec, so the application DTOs double as messages.

import (
	"context"

	"github.com/shopspring/decimal"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/optic/loan-origination/internal/application/dto"
)

const serviceName = "origination.v1.OriginationService"

// Full method names, as seen by interceptors.
const (
	MethodSimulate             = "/" + serviceName + "/Simulate"
	MethodCreateApplication    = "/" + serviceName + "/CreateApplication"
	MethodGetApplication       = "/" + serviceName + "/GetApplication"
	MethodRecomputeApplication = "/" + serviceName + "/RecomputeApplication"
	MethodDeleteApplication    = "/" + serviceName + "/DeleteApplication"
	MethodSearchApplications   = "/" + serviceName + "/SearchApplications"
)

type (
	LoanRequest               = dto.LoanRequest
	SimulationResponse        = dto.SimulationResponse
	ApplicationResponse       = dto.LoanApplicationResponse
	GetApplicationRequest     = dto.GetApplicationRequest
	DeleteApplicationRequest  = dto.DeleteApplicationRequest
	SearchApplicationsRequest = dto.SearchRequest
)

// RecomputeApplicationRequest carries the application ID in the body, unlike
// the REST form which takes it from the path.
type RecomputeApplicationRequest struct {
	ApplicationID      string              `json:"application_id"`
	Principal          decimal.NullDecimal `json:"principal"`
	DownPaymentPercent decimal.NullDecimal `json:"down_payment_percent"`
	TermYears          *int                `json:"term_years"`
}

type DeleteApplicationResponse struct {
	Deleted bool `json:"deleted"`
}

type SearchApplicationsResponse struct {
	Applications []dto.LoanApplicationResponse `json:"applications"`
}

// OriginationServiceServer is the server API for OriginationService.
type OriginationServiceServer interface {
	Simulate(context.Context, *LoanRequest) (*SimulationResponse, error)
	CreateApplication(context.Context, *LoanRequest) (*ApplicationResponse, error)
	GetApplication(context.Context, *GetApplicationRequest) (*ApplicationResponse, error)
	RecomputeApplication(context.Context, *RecomputeApplicationRequest) (*ApplicationResponse, error)
	DeleteApplication(context.Context, *DeleteApplicationRequest) (*DeleteApplicationResponse, error)
	SearchApplications(context.Context, *SearchApplicationsRequest) (*SearchApplicationsResponse, error)
	mustEmbedUnimplementedOriginationServiceServer()
}

// UnimplementedOriginationServiceServer provides forward-compatible default implementations.
type UnimplementedOriginationServiceServer struct{}

func (UnimplementedOriginationServiceServer) Simulate(context.Context, *LoanRequest) (*SimulationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Simulate not implemented")
}
func (UnimplementedOriginationServiceServer) CreateApplication(context.Context, *LoanRequest) (*ApplicationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateApplication not implemented")
}
func (UnimplementedOriginationServiceServer) GetApplication(context.Context, *GetApplicationRequest) (*ApplicationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetApplication not implemented")
}
func (UnimplementedOriginationServiceServer) RecomputeApplication(context.Context, *RecomputeApplicationRequest) (*ApplicationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RecomputeApplication not implemented")
}
func (UnimplementedOriginationServiceServer) DeleteApplication(context.Context, *DeleteApplicationRequest) (*DeleteApplicationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteApplication not implemented")
}
func (UnimplementedOriginationServiceServer) SearchApplications(context.Context, *SearchApplicationsRequest) (*SearchApplicationsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SearchApplications not implemented")
}
func (UnimplementedOriginationServiceServer) mustEmbedUnimplementedOriginationServiceServer() {}

// RegisterOriginationServiceServer registers srv with the gRPC server.
func RegisterOriginationServiceServer(s grpclib.ServiceRegistrar, srv OriginationServiceServer) {
	s.RegisterService(&originationServiceDesc, srv)
}

var originationServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OriginationServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Simulate", Handler: unary(MethodSimulate, OriginationServiceServer.Simulate)},
		{MethodName: "CreateApplication", Handler: unary(MethodCreateApplication, OriginationServiceServer.CreateApplication)},
		{MethodName: "GetApplication", Handler: unary(MethodGetApplication, OriginationServiceServer.GetApplication)},
		{MethodName: "RecomputeApplication", Handler: unary(MethodRecomputeApplication, OriginationServiceServer.RecomputeApplication)},
		{MethodName: "DeleteApplication", Handler: unary(MethodDeleteApplication, OriginationServiceServer.DeleteApplication)},
		{MethodName: "SearchApplications", Handler: unary(MethodSearchApplications, OriginationServiceServer.SearchApplications)},
	},
	Streams: []grpclib.StreamDesc{},
}

// unary adapts a typed server method to grpc's MethodHandler, running it
// through the interceptor chain when one is installed.
func unary[Req, Resp any](
	fullMethod string,
	call func(OriginationServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(OriginationServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(OriginationServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
