// internal/repository/client_repo.go
package repository

import (
	"context"

	"bike-wallet/internal/domain"
)

// ClientRepository defines the interface for client lookups.
type ClientRepository interface {
	// CreateClient adds a new client record using the provided DBExecutor.
	CreateClient(ctx context.Context, q DBExecutor, client *domain.Client) error
	// GetClientByID retrieves a client by its identifier.
	GetClientByID(ctx context.Context, q DBExecutor, id string) (*domain.Client, error)
}
