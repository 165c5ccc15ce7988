package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/optic/loan-origination/internal/application/dto"
)

// UseCase is the shape shared by most application use cases.
type UseCase[Req, Resp any] interface {
	Execute(ctx context.Context, req Req) (Resp, error)
}

// Command is a use case that returns nothing but an error.
type Command[Req any] interface {
	Execute(ctx context.Context, req Req) error
}

// ClientRegistrar registers a client, reporting whether it was newly created.
type ClientRegistrar interface {
	Execute(ctx context.Context, req dto.ClientRequest) (dto.ClientResponse, bool, error)
}

// DashboardQuery computes the dashboard view.
type DashboardQuery interface {
	Execute(ctx context.Context) (dto.DashboardResponse, error)
}

// UseCases collects the application services exposed over HTTP.
type UseCases struct {
	Simulate          UseCase[dto.SimulateRequest, dto.SimulationResponse]
	CreateApplication UseCase[dto.CreateApplicationRequest, dto.LoanApplicationResponse]
	Recompute         UseCase[dto.RecomputeApplicationRequest, dto.LoanApplicationResponse]
	GetApplication    UseCase[dto.GetApplicationRequest, dto.LoanApplicationResponse]
	SearchApps        UseCase[dto.SearchRequest, []dto.LoanApplicationResponse]
	Schedule          UseCase[dto.GetApplicationRequest, dto.ScheduleResponse]
	DeleteApplication Command[dto.DeleteApplicationRequest]

	RegisterClient ClientRegistrar
	GetClient      UseCase[string, dto.ClientResponse]
	SearchClients  UseCase[dto.SearchRequest, []dto.ClientResponse]
	UpdateClient   UseCase[dto.UpdateClientRequest, dto.ClientResponse]
	DeleteClient   Command[string]

	RegisterUser UseCase[dto.RegisterUserRequest, dto.AuthResponse]
	Login        UseCase[dto.LoginRequest, dto.AuthResponse]

	Dashboard DashboardQuery
}

// Handler translates HTTP requests into use case calls.
type Handler struct {
	uc     UseCases
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(uc UseCases, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{uc: uc, logger: logger}
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.RegisterUser.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, "user registered", resp)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.Login.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "login successful", resp)
}

// ---------------------------------------------------------------------------
// Clients
// ---------------------------------------------------------------------------

func (h *Handler) registerClient(w http.ResponseWriter, r *http.Request) {
	var req dto.ClientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, created, err := h.uc.RegisterClient.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if created {
		writeData(w, http.StatusCreated, "client registered", resp)
		return
	}
	writeData(w, http.StatusOK, "client already registered", resp)
}

func (h *Handler) searchClients(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.SearchClients.Execute(r.Context(), dto.SearchRequest{Query: r.URL.Query().Get("query")})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "", resp)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.GetClient.Execute(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "", resp)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateClientRequest
	if err := decodeJSON(r, &req.ClientRequest); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.ClientID = r.PathValue("id")
	resp, err := h.uc.UpdateClient.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "client updated", resp)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteClient.Execute(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "client deleted", nil)
}

// ---------------------------------------------------------------------------
// Loan applications
// ---------------------------------------------------------------------------

func (h *Handler) simulate(w http.ResponseWriter, r *http.Request) {
	var req dto.SimulateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.Simulate.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "simulation completed", resp)
}

func (h *Handler) createApplication(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.CreateApplication.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, "application registered", resp)
}

func (h *Handler) searchApplications(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.SearchApps.Execute(r.Context(), dto.SearchRequest{Query: r.URL.Query().Get("query")})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "", resp)
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.GetApplication.Execute(r.Context(), dto.GetApplicationRequest{ApplicationID: r.PathValue("id")})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "", resp)
}

func (h *Handler) getSchedule(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.Schedule.Execute(r.Context(), dto.GetApplicationRequest{ApplicationID: r.PathValue("id")})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "", resp)
}

func (h *Handler) recomputeApplication(w http.ResponseWriter, r *http.Request) {
	var req dto.RecomputeApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.ApplicationID = r.PathValue("id")
	resp, err := h.uc.Recompute.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "application recomputed", resp)
}

func (h *Handler) deleteApplication(w http.ResponseWriter, r *http.Request) {
	err := h.uc.DeleteApplication.Execute(r.Context(), dto.DeleteApplicationRequest{ApplicationID: r.PathValue("id")})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "application deleted", nil)
}

// ---------------------------------------------------------------------------
// Dashboard
// ---------------------------------------------------------------------------

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.Dashboard.Execute(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "", resp)
}
