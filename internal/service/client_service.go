// internal/service/client_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"bike-wallet/internal/domain"
	"bike-wallet/internal/repository"
	"bike-wallet/internal/util"
)

// ClientService registers and looks up wallet owners.
type ClientService interface {
	RegisterClient(ctx context.Context, id, fullName, phoneNumber string) (*domain.Client, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
}

type clientService struct {
	dbExecutor repository.DBExecutor
	clientRepo repository.ClientRepository
	logger     *slog.Logger
}

// NewClientService creates a new instance of ClientService.
func NewClientService(dbExecutor repository.DBExecutor, clientRepo repository.ClientRepository, logger *slog.Logger) ClientService {
	return &clientService{
		dbExecutor: dbExecutor,
		clientRepo: clientRepo,
		logger:     logger,
	}
}

// RegisterClient stores a new client. An empty id gets a generated UUID.
// Phone numbers are unique across clients.
func (s *clientService) RegisterClient(ctx context.Context, id, fullName, phoneNumber string) (*domain.Client, error) {
	id = strings.TrimSpace(id)
	fullName = strings.TrimSpace(fullName)
	phoneNumber = strings.TrimSpace(phoneNumber)
	if fullName == "" || phoneNumber == "" {
		return nil, util.ErrInvalidInput
	}
	if id == "" {
		id = uuid.NewString()
	}

	client := domain.NewClient(id, fullName, phoneNumber)
	if err := s.clientRepo.CreateClient(ctx, s.dbExecutor, client); err != nil {
		return nil, fmt.Errorf("register client: %w", err)
	}

	s.logger.Info("Client registered", "client_id", client.ID)
	return client, nil
}

// GetClient returns a client by id.
func (s *clientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	client, err := s.clientRepo.GetClientByID(ctx, s.dbExecutor, strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return client, nil
}
