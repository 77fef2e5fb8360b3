// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"

	"bike-wallet/internal/domain"
	"bike-wallet/internal/repository"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new transaction record into the database using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO wallet_transactions (wallet_id, type, amount, date, description)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.WalletID,
		transaction.Type,
		transaction.Amount,
		transaction.Date,
		transaction.Description,
	).Scan(&transaction.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionsByWalletID retrieves a paginated list of transactions for a specific wallet.
// Rows come back in insertion order; a second query returns the total count.
func (r *TransactionRepository) GetTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	query := `
		SELECT id, wallet_id, type, amount, date, description
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY id ASC
		LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &transactions, query, walletID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for wallet %d: %w", walletID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM wallet_transactions WHERE wallet_id = $1`
	if err := q.GetContext(ctx, &totalCount, countQuery, walletID); err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for wallet %d: %w", walletID, err)
	}

	return transactions, totalCount, nil
}

// GetAllTransactionsByWalletID retrieves the whole history of a wallet.
func (r *TransactionRepository) GetAllTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `
		SELECT id, wallet_id, type, amount, date, description
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY id ASC`
	if err := q.SelectContext(ctx, &transactions, query, walletID); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for wallet %d: %w", walletID, err)
	}
	return transactions, nil
}
