package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/port"
)

// RegisterClientUseCase registers a client, or returns the existing one when
// the document is already known.
type RegisterClientUseCase struct {
	clients   port.ClientRepository
	publisher port.EventPublisher
}

// NewRegisterClientUseCase wires dependencies.
func NewRegisterClientUseCase(clients port.ClientRepository, publisher port.EventPublisher) *RegisterClientUseCase {
	return &RegisterClientUseCase{clients: clients, publisher: publisher}
}

// Execute is idempotent by document. The boolean reports whether a new
// client was created.
func (uc *RegisterClientUseCase) Execute(ctx context.Context, req dto.ClientRequest) (dto.ClientResponse, bool, error) {
	now := time.Now().UTC()

	// 1. Validate and normalise.
	client, err := model.NewClient(toClientProfile(req), now)
	if err != nil {
		return dto.ClientResponse{}, false, err
	}

	// 2. Return the existing client for a known document.
	existing, err := uc.clients.FindByDocument(ctx, client.Document())
	switch {
	case err == nil:
		return toClientResponse(existing), false, nil
	case !errors.Is(err, model.ErrClientNotFound):
		return dto.ClientResponse{}, false, fmt.Errorf("find client by document: %w", err)
	}

	// 3. Persist. A concurrent registration of the same document wins the
	// race; answer with its record.
	if err := uc.clients.Save(ctx, client); err != nil {
		if errors.Is(err, model.ErrDuplicateDocument) {
			existing, findErr := uc.clients.FindByDocument(ctx, client.Document())
			if findErr == nil {
				return toClientResponse(existing), false, nil
			}
		}
		return dto.ClientResponse{}, false, fmt.Errorf("save client: %w", err)
	}

	// 4. Publish domain events.
	if err := uc.publisher.Publish(ctx, client.DomainEvents()...); err != nil {
		return dto.ClientResponse{}, false, fmt.Errorf("publish events: %w", err)
	}

	return toClientResponse(client), true, nil
}

// GetClientUseCase retrieves a client by ID.
type GetClientUseCase struct {
	clients port.ClientRepository
}

// NewGetClientUseCase wires dependencies.
func NewGetClientUseCase(clients port.ClientRepository) *GetClientUseCase {
	return &GetClientUseCase{clients: clients}
}

func (uc *GetClientUseCase) Execute(ctx context.Context, id string) (dto.ClientResponse, error) {
	if err := requireID(id, model.ErrClientNotFound); err != nil {
		return dto.ClientResponse{}, err
	}
	c, err := uc.clients.FindByID(ctx, id)
	if err != nil {
		return dto.ClientResponse{}, fmt.Errorf("find client: %w", err)
	}
	return toClientResponse(c), nil
}

// SearchClientsUseCase lists clients whose name or document contains the
// query, ignoring case.
type SearchClientsUseCase struct {
	clients port.ClientRepository
}

// NewSearchClientsUseCase wires dependencies.
func NewSearchClientsUseCase(clients port.ClientRepository) *SearchClientsUseCase {
	return &SearchClientsUseCase{clients: clients}
}

func (uc *SearchClientsUseCase) Execute(ctx context.Context, req dto.SearchRequest) ([]dto.ClientResponse, error) {
	found, err := uc.clients.Search(ctx, strings.TrimSpace(req.Query))
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	out := make([]dto.ClientResponse, 0, len(found))
	for _, c := range found {
		out = append(out, toClientResponse(c))
	}
	return out, nil
}

// UpdateClientUseCase replaces a client's profile. A document change drops
// the cached risk answers of both documents.
type UpdateClientUseCase struct {
	clients port.ClientRepository
	cache   port.RiskCache
	logger  *slog.Logger
}

// NewUpdateClientUseCase wires dependencies. cache may be nil.
func NewUpdateClientUseCase(clients port.ClientRepository, cache port.RiskCache, logger *slog.Logger) *UpdateClientUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateClientUseCase{clients: clients, cache: cache, logger: logger}
}

// Execute updates the client. Moving to a document owned by another client
// fails with model.ErrDuplicateDocument.
func (uc *UpdateClientUseCase) Execute(ctx context.Context, req dto.UpdateClientRequest) (dto.ClientResponse, error) {
	now := time.Now().UTC()

	if err := requireID(req.ClientID, model.ErrClientNotFound); err != nil {
		return dto.ClientResponse{}, err
	}
	current, err := uc.clients.FindByID(ctx, req.ClientID)
	if err != nil {
		return dto.ClientResponse{}, fmt.Errorf("find client: %w", err)
	}

	updated, err := current.Update(toClientProfile(req.ClientRequest), now)
	if err != nil {
		return dto.ClientResponse{}, err
	}

	if updated.Document() != current.Document() {
		other, err := uc.clients.FindByDocument(ctx, updated.Document())
		switch {
		case err == nil && other.ID() != current.ID():
			return dto.ClientResponse{}, model.ErrDuplicateDocument
		case err != nil && !errors.Is(err, model.ErrClientNotFound):
			return dto.ClientResponse{}, fmt.Errorf("find client by document: %w", err)
		}
	}

	if err := uc.clients.Save(ctx, updated); err != nil {
		return dto.ClientResponse{}, fmt.Errorf("save client: %w", err)
	}
	if updated.Document() != current.Document() {
		uc.invalidate(ctx, current.Document(), updated.Document())
	}
	return toClientResponse(updated), nil
}

// invalidate logs failures; stale entries still expire on their TTL.
func (uc *UpdateClientUseCase) invalidate(ctx context.Context, documents ...string) {
	if uc.cache == nil {
		return
	}
	for _, d := range documents {
		if err := uc.cache.Invalidate(ctx, d); err != nil {
			uc.logger.WarnContext(ctx, "risk cache invalidation failed", "error", err)
		}
	}
}

// DeleteClientUseCase removes a client together with its applications.
type DeleteClientUseCase struct {
	clients port.ClientRepository
}

// NewDeleteClientUseCase wires dependencies.
func NewDeleteClientUseCase(clients port.ClientRepository) *DeleteClientUseCase {
	return &DeleteClientUseCase{clients: clients}
}

func (uc *DeleteClientUseCase) Execute(ctx context.Context, id string) error {
	if err := requireID(id, model.ErrClientNotFound); err != nil {
		return err
	}
	if err := uc.clients.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}
