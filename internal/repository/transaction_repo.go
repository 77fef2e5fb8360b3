// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"bike-wallet/internal/domain"
)

// TransactionRepository defines the interface for transaction data operations.
type TransactionRepository interface {
	// CreateTransaction appends a transaction record using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionsByWalletID retrieves a page of history in insertion order plus the total count.
	GetTransactionsByWalletID(ctx context.Context, q DBExecutor, walletID int64, limit, offset int) ([]domain.Transaction, int64, error)
	// GetAllTransactionsByWalletID retrieves the full history in insertion order.
	GetAllTransactionsByWalletID(ctx context.Context, q DBExecutor, walletID int64) ([]domain.Transaction, error)
}
