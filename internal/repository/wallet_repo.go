// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"bike-wallet/internal/domain"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// CreateWallet inserts a new wallet. A second wallet for the same client fails with util.ErrWalletAlreadyExists.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByClientID retrieves the wallet header (no history) for a client.
	GetWalletByClientID(ctx context.Context, q DBExecutor, clientID string) (*domain.Wallet, error)
	// GetWalletByClientIDForUpdate is GetWalletByClientID with a row lock; q must be a transaction.
	GetWalletByClientIDForUpdate(ctx context.Context, q DBExecutor, clientID string) (*domain.Wallet, error)
	// UpdateWallet stores the balance if the stored version still equals expectedVersion,
	// otherwise it returns util.ErrVersionConflict. On success wallet.Version is advanced.
	UpdateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet, expectedVersion int64) error
	// DeleteWalletByClientID removes the wallet and its history, returning the discarded balance.
	DeleteWalletByClientID(ctx context.Context, q DBExecutor, clientID string) (decimal.Decimal, error)
}
