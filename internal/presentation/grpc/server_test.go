package grpc_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/domain/model"
	origgrpc "github.com/optic/loan-origination/internal/presentation/grpc"
	"github.com/optic/loan-origination/pkg/auth"
	"github.com/optic/loan-origination/pkg/testutil"
)

type fakeUseCase[Req, Resp any] struct {
	resp Resp
	err  error
	last Req
}

func (f *fakeUseCase[Req, Resp]) Execute(_ context.Context, req Req) (Resp, error) {
	f.last = req
	return f.resp, f.err
}

type fakeDelete struct {
	err  error
	last dto.DeleteApplicationRequest
}

func (f *fakeDelete) Execute(_ context.Context, req dto.DeleteApplicationRequest) error {
	f.last = req
	return f.err
}

type harness struct {
	conn   *grpclib.ClientConn
	jwt    *auth.JWTService
	get    *fakeUseCase[dto.GetApplicationRequest, dto.LoanApplicationResponse]
	recomp *fakeUseCase[dto.RecomputeApplicationRequest, dto.LoanApplicationResponse]
	del    *fakeDelete
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "loan-origination"})
	require.NoError(t, err)

	h := &harness{
		jwt: jwtSvc,
		get: &fakeUseCase[dto.GetApplicationRequest, dto.LoanApplicationResponse]{
			resp: dto.LoanApplicationResponse{
				ID: testutil.TestApplicationID,
				SimulationResponse: dto.SimulationResponse{
					Status:             "APPROVED",
					StatusCode:         1,
					MonthlyInstallment: decimal.RequireFromString("644.47"),
				},
				Version: 1,
			},
		},
		recomp: &fakeUseCase[dto.RecomputeApplicationRequest, dto.LoanApplicationResponse]{},
		del:    &fakeDelete{},
	}

	handler := origgrpc.NewOriginationHandler(origgrpc.UseCases{
		Simulate:          &fakeUseCase[dto.SimulateRequest, dto.SimulationResponse]{},
		CreateApplication: &fakeUseCase[dto.CreateApplicationRequest, dto.LoanApplicationResponse]{},
		GetApplication:    h.get,
		Recompute:         h.recomp,
		SearchApps:        &fakeUseCase[dto.SearchRequest, []dto.LoanApplicationResponse]{},
		DeleteApplication: h.del,
	}, nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := origgrpc.NewServer(handler, logger, jwtSvc, origgrpc.ServerConfig{})

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.ServeListener(lis) }()
	t.Cleanup(srv.GracefulStop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	h.conn = conn
	return h
}

func (h *harness) ctx(t *testing.T, roles []string, perms ...string) context.Context {
	t.Helper()
	tok, err := h.jwt.GenerateToken(auth.Identity{
		UserID:      uuid.MustParse(testutil.TestUserID),
		Username:    "ana",
		Roles:       roles,
		Permissions: perms,
	})
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func (h *harness) invoke(ctx context.Context, method string, in, out any) error {
	return h.conn.Invoke(ctx, method, in, out, grpclib.CallContentSubtype("json"))
}

func TestGetApplication(t *testing.T) {
	h := newHarness(t)
	ctx := h.ctx(t, []string{auth.RoleUser}, "READ_LOANS")

	var out dto.LoanApplicationResponse
	err := h.invoke(ctx, origgrpc.MethodGetApplication, &dto.GetApplicationRequest{ApplicationID: testutil.TestApplicationID}, &out)
	require.NoError(t, err)

	assert.Equal(t, testutil.TestApplicationID, h.get.last.ApplicationID)
	assert.Equal(t, testutil.TestApplicationID, out.ID)
	testutil.AssertDecimalEqual(t, "644.47", out.MonthlyInstallment)
}

func TestAuthAndPermissions(t *testing.T) {
	h := newHarness(t)
	req := &dto.DeleteApplicationRequest{ApplicationID: testutil.TestApplicationID}
	var out origgrpc.DeleteApplicationResponse

	err := h.invoke(context.Background(), origgrpc.MethodDeleteApplication, req, &out)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	err = h.invoke(h.ctx(t, []string{auth.RoleUser}, "READ_LOANS"), origgrpc.MethodDeleteApplication, req, &out)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	err = h.invoke(h.ctx(t, []string{auth.RoleAdmin}), origgrpc.MethodDeleteApplication, req, &out)
	require.NoError(t, err)
	assert.True(t, out.Deleted)
	assert.Equal(t, testutil.TestApplicationID, h.del.last.ApplicationID)
}

func TestRecomputeForwardsFields(t *testing.T) {
	h := newHarness(t)
	years := 10
	in := &origgrpc.RecomputeApplicationRequest{
		ApplicationID: testutil.TestApplicationID,
		TermYears:     &years,
	}
	var out dto.LoanApplicationResponse
	require.NoError(t, h.invoke(h.ctx(t, []string{auth.RoleAdmin}), origgrpc.MethodRecomputeApplication, in, &out))

	last := h.recomp.last
	assert.Equal(t, testutil.TestApplicationID, last.ApplicationID)
	require.NotNil(t, last.TermYears)
	assert.Equal(t, 10, *last.TermYears)
	assert.False(t, last.Principal.Valid)
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{&model.ValidationError{Field: "principal", Reason: "is required"}, codes.InvalidArgument},
		{fmt.Errorf("find application: %w", model.ErrApplicationNotFound), codes.NotFound},
		{fmt.Errorf("save: %w", model.ErrOptimisticLock), codes.Aborted},
		{fmt.Errorf("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			h := newHarness(t)
			h.get.err = tt.err
			var out dto.LoanApplicationResponse
			err := h.invoke(h.ctx(t, []string{auth.RoleAdmin}), origgrpc.MethodGetApplication,
				&dto.GetApplicationRequest{ApplicationID: testutil.TestApplicationID}, &out)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestHealthIsPublic(t *testing.T) {
	h := newHarness(t)
	resp, err := healthpb.NewHealthClient(h.conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
