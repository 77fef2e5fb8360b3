// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bike-wallet/internal/domain"
	"bike-wallet/internal/repository"
	"bike-wallet/internal/util"

	"github.com/shopspring/decimal"
)

const walletColumns = `id, client_id, balance, version, created_at, updated_at`

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct{}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository() repository.WalletRepository {
	return &WalletRepository{}
}

// CreateWallet inserts a new wallet into the database using the provided DBExecutor.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (client_id, balance, version, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query, wallet.ClientID, wallet.Balance, wallet.Version, wallet.CreatedAt, wallet.UpdatedAt).Scan(&wallet.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return util.ErrWalletAlreadyExists
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWalletByClientID retrieves a wallet by its owner.
func (r *WalletRepository) GetWalletByClientID(ctx context.Context, q repository.DBExecutor, clientID string) (*domain.Wallet, error) {
	return r.getWallet(ctx, q, `SELECT `+walletColumns+` FROM wallets WHERE client_id = $1`, clientID)
}

// GetWalletByClientIDForUpdate retrieves a wallet and locks its row until the surrounding transaction ends.
func (r *WalletRepository) GetWalletByClientIDForUpdate(ctx context.Context, q repository.DBExecutor, clientID string) (*domain.Wallet, error) {
	return r.getWallet(ctx, q, `SELECT `+walletColumns+` FROM wallets WHERE client_id = $1 FOR UPDATE`, clientID)
}

func (r *WalletRepository) getWallet(ctx context.Context, q repository.DBExecutor, query, clientID string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := q.GetContext(ctx, &wallet, query, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet for client '%s': %w", clientID, err)
	}
	wallet.Transactions = []domain.Transaction{}
	return &wallet, nil
}

// UpdateWallet writes the new balance guarded by the expected version.
func (r *WalletRepository) UpdateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet, expectedVersion int64) error {
	now := time.Now().UTC()
	query := `UPDATE wallets SET balance = $1, version = version + 1, updated_at = $2
              WHERE id = $3 AND version = $4`
	result, err := q.ExecContext(ctx, query, wallet.Balance, now, wallet.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update wallet %d: %w", wallet.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating wallet %d: %w", wallet.ID, err)
	}
	if rowsAffected == 0 {
		return util.ErrVersionConflict
	}

	wallet.Version = expectedVersion + 1
	wallet.UpdatedAt = now
	return nil
}

// DeleteWalletByClientID deletes the wallet regardless of its balance.
// Transactions go with it through ON DELETE CASCADE.
func (r *WalletRepository) DeleteWalletByClientID(ctx context.Context, q repository.DBExecutor, clientID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `DELETE FROM wallets WHERE client_id = $1 RETURNING balance`
	if err := q.GetContext(ctx, &balance, query, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, util.ErrWalletNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to delete wallet for client '%s': %w", clientID, err)
	}
	return balance, nil
}
