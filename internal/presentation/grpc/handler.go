package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/valueobject"
)

// UseCase is the shape shared by the application use cases served here.
type UseCase[Req, Resp any] interface {
	Execute(ctx context.Context, req Req) (Resp, error)
}

// UseCases collects the application services exposed over gRPC.
type UseCases struct {
	Simulate          UseCase[dto.SimulateRequest, dto.SimulationResponse]
	CreateApplication UseCase[dto.CreateApplicationRequest, dto.LoanApplicationResponse]
	GetApplication    UseCase[dto.GetApplicationRequest, dto.LoanApplicationResponse]
	Recompute         UseCase[dto.RecomputeApplicationRequest, dto.LoanApplicationResponse]
	SearchApps        UseCase[dto.SearchRequest, []dto.LoanApplicationResponse]
	DeleteApplication interface {
		Execute(ctx context.Context, req dto.DeleteApplicationRequest) error
	}
}

// OriginationHandler implements OriginationServiceServer on top of the use cases.
type OriginationHandler struct {
	UnimplementedOriginationServiceServer
	uc     UseCases
	logger *slog.Logger
}

// NewOriginationHandler creates a new handler with all use-case dependencies.
func NewOriginationHandler(uc UseCases, logger *slog.Logger) *OriginationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OriginationHandler{uc: uc, logger: logger}
}

func (h *OriginationHandler) Simulate(ctx context.Context, req *LoanRequest) (*SimulationResponse, error) {
	resp, err := h.uc.Simulate.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

func (h *OriginationHandler) CreateApplication(ctx context.Context, req *LoanRequest) (*ApplicationResponse, error) {
	resp, err := h.uc.CreateApplication.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

func (h *OriginationHandler) GetApplication(ctx context.Context, req *GetApplicationRequest) (*ApplicationResponse, error) {
	resp, err := h.uc.GetApplication.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

func (h *OriginationHandler) RecomputeApplication(ctx context.Context, req *RecomputeApplicationRequest) (*ApplicationResponse, error) {
	resp, err := h.uc.Recompute.Execute(ctx, dto.RecomputeApplicationRequest{
		ApplicationID:      req.ApplicationID,
		Principal:          req.Principal,
		DownPaymentPercent: req.DownPaymentPercent,
		TermYears:          req.TermYears,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

func (h *OriginationHandler) DeleteApplication(ctx context.Context, req *DeleteApplicationRequest) (*DeleteApplicationResponse, error) {
	if err := h.uc.DeleteApplication.Execute(ctx, *req); err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &DeleteApplicationResponse{Deleted: true}, nil
}

func (h *OriginationHandler) SearchApplications(ctx context.Context, req *SearchApplicationsRequest) (*SearchApplicationsResponse, error) {
	apps, err := h.uc.SearchApps.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &SearchApplicationsResponse{Applications: apps}, nil
}

// toStatus maps domain errors to gRPC status codes.
func (h *OriginationHandler) toStatus(ctx context.Context, err error) error {
	switch {
	case model.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case model.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, model.ErrOptimisticLock):
		return status.Error(codes.Aborted, err.Error())
	case model.IsConflict(err), errors.Is(err, valueobject.ErrInvalidStatusTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		h.logger.ErrorContext(ctx, "rpc failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
