// internal/repository/postgres/client_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bike-wallet/internal/domain"
	"bike-wallet/internal/repository"
	"bike-wallet/internal/util"
)

// ClientRepository implements repository.ClientRepository for PostgreSQL.
type ClientRepository struct{}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository() repository.ClientRepository {
	return &ClientRepository{}
}

// CreateClient inserts a new client using the provided DBExecutor.
func (r *ClientRepository) CreateClient(ctx context.Context, q repository.DBExecutor, client *domain.Client) error {
	query := `INSERT INTO clients (id, full_name, phone_number, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := q.ExecContext(ctx, query, client.ID, client.FullName, client.PhoneNumber, client.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			if violatedConstraint(err) == "clients_pkey" {
				return util.ErrClientIDTaken
			}
			return util.ErrClientAlreadyExists
		}
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetClientByID retrieves a client by its identifier.
func (r *ClientRepository) GetClientByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.Client, error) {
	var client domain.Client
	query := `SELECT id, full_name, phone_number, created_at FROM clients WHERE id = $1`
	if err := q.GetContext(ctx, &client, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client by ID '%s': %w", id, err)
	}
	return &client, nil
}
