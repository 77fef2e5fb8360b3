// internal/service/wallet_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bike-wallet/internal/domain"
	"bike-wallet/internal/lock"
	"bike-wallet/internal/repository"
	"bike-wallet/internal/util"
	"bike-wallet/pkg/db"

	"github.com/shopspring/decimal"
)

// WalletService defines the interface for wallet-related business logic.
type WalletService interface {
	CreateWallet(ctx context.Context, clientID string) (*domain.Wallet, error)
	Deposit(ctx context.Context, clientID string, amount decimal.Decimal, description string) (*domain.Wallet, *domain.Transaction, error)
	MakePayment(ctx context.Context, clientID string, amount decimal.Decimal, description string) (*domain.Wallet, *domain.Transaction, error)
	GetWallet(ctx context.Context, clientID string) (*domain.Wallet, error)
	GetTransactions(ctx context.Context, clientID string, limit, offset int) ([]domain.Transaction, int64, error)
	DeleteWallet(ctx context.Context, clientID string) error
}

// walletService implements the WalletService interface.
type walletService struct {
	dbBeginner      db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	clientRepo      repository.ClientRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
	locker          lock.Locker
	logger          *slog.Logger
	maxSaveAttempts int
}

// NewWalletService creates a new instance of WalletService.
// maxSaveAttempts bounds how often a load-mutate-save is retried after a version conflict.
func NewWalletService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	clientRepo repository.ClientRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	locker lock.Locker,
	logger *slog.Logger,
	maxSaveAttempts int,
) WalletService {
	if maxSaveAttempts < 1 {
		maxSaveAttempts = 1
	}
	return &walletService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		clientRepo:      clientRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
		locker:          locker,
		logger:          logger,
		maxSaveAttempts: maxSaveAttempts,
	}
}

// CreateWallet opens an empty wallet for an existing client.
func (s *walletService) CreateWallet(ctx context.Context, clientID string) (*domain.Wallet, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, util.ErrInvalidInput
	}

	unlock, err := s.locker.Lock(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("create wallet: failed to lock client '%s': %w", clientID, err)
	}
	defer unlock()

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("create wallet: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("create wallet: transaction controller does not implement DBExecutor")
	}

	if _, err := s.clientRepo.GetClientByID(ctx, txExecutor, clientID); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	_, err = s.walletRepo.GetWalletByClientID(ctx, txExecutor, clientID)
	if err == nil {
		return nil, util.ErrWalletAlreadyExists
	}
	if !errors.Is(err, util.ErrWalletNotFound) {
		return nil, fmt.Errorf("create wallet: failed to check existing wallet: %w", err)
	}

	wallet := domain.NewWallet(clientID)
	if err := s.walletRepo.CreateWallet(ctx, txExecutor, wallet); err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create wallet: failed to commit transaction: %w", err)
	}

	s.logger.Info("Wallet created", "client_id", clientID, "wallet_id", wallet.ID)
	return wallet, nil
}

// Deposit adds money to a client's wallet.
func (s *walletService) Deposit(ctx context.Context, clientID string, amount decimal.Decimal, description string) (*domain.Wallet, *domain.Transaction, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, nil, util.ErrInvalidInput
	}
	// Checked again by the wallet; rejecting here skips the lock round-trip.
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, nil, err
	}

	wallet, transaction, err := s.mutate(ctx, "deposit", clientID, func(w *domain.Wallet) (*domain.Transaction, error) {
		return w.Deposit(amount, description)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Wallet deposit applied", "client_id", clientID, "amount", amount.String(), "balance", wallet.Balance.String())
	return wallet, transaction, nil
}

// MakePayment takes money out of a client's wallet, bounded by the available balance.
func (s *walletService) MakePayment(ctx context.Context, clientID string, amount decimal.Decimal, description string) (*domain.Wallet, *domain.Transaction, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, nil, util.ErrInvalidInput
	}
	// Checked again by the wallet; rejecting here skips the lock round-trip.
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, nil, err
	}

	wallet, transaction, err := s.mutate(ctx, "payment", clientID, func(w *domain.Wallet) (*domain.Transaction, error) {
		return w.MakePayment(amount, description)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Wallet payment applied", "client_id", clientID, "amount", amount.String(), "balance", wallet.Balance.String())
	return wallet, transaction, nil
}

type walletMutation func(w *domain.Wallet) (*domain.Transaction, error)

// mutate runs one load-mutate-save cycle under the owner lock, retrying on version conflicts.
func (s *walletService) mutate(ctx context.Context, op, clientID string, fn walletMutation) (*domain.Wallet, *domain.Transaction, error) {
	unlock, err := s.locker.Lock(ctx, clientID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to lock client '%s': %w", op, clientID, err)
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		wallet, transaction, err := s.applyOnce(ctx, op, clientID, fn)
		if !errors.Is(err, util.ErrVersionConflict) {
			return wallet, transaction, err
		}
		if attempt >= s.maxSaveAttempts {
			s.logger.Error("Giving up on wallet update after version conflicts", "client_id", clientID, "attempts", attempt)
			return nil, nil, fmt.Errorf("%s: %w", op, util.ErrConcurrentUpdate)
		}
		s.logger.Warn("Wallet version conflict, retrying", "client_id", clientID, "attempt", attempt)
	}
}

func (s *walletService) applyOnce(ctx context.Context, op, clientID string, fn walletMutation) (*domain.Wallet, *domain.Transaction, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("%s: transaction controller does not implement DBExecutor", op)
	}

	wallet, err := s.walletRepo.GetWalletByClientIDForUpdate(ctx, txExecutor, clientID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to get wallet for client '%s': %w", op, clientID, err)
	}
	expectedVersion := wallet.Version

	// Business-rule rejections come back unwrapped; the rollback leaves storage untouched.
	transaction, err := fn(wallet)
	if err != nil {
		return nil, nil, err
	}

	if err := s.walletRepo.UpdateWallet(ctx, txExecutor, wallet, expectedVersion); err != nil {
		return nil, nil, fmt.Errorf("%s: failed to update wallet balance: %w", op, err)
	}

	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, nil, fmt.Errorf("%s: failed to create transaction: %w", op, err)
	}

	history, err := s.transactionRepo.GetAllTransactionsByWalletID(ctx, txExecutor, wallet.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to re-fetch transactions for wallet %d: %w", op, wallet.ID, err)
	}
	wallet.Transactions = history
	if total := wallet.SignedTotal(); !total.Equal(wallet.Balance) {
		s.logger.Error("Wallet balance does not match transaction history",
			"client_id", clientID, "balance", wallet.Balance.String(), "history_total", total.String())
		return nil, nil, fmt.Errorf("%s: %w", op, util.ErrLedgerMismatch)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return wallet, transaction, nil
}

// GetWallet returns the wallet with its full history.
func (s *walletService) GetWallet(ctx context.Context, clientID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByClientID(ctx, s.dbExecutor, clientID)
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	history, err := s.transactionRepo.GetAllTransactionsByWalletID(ctx, s.dbExecutor, wallet.ID)
	if err != nil {
		return nil, fmt.Errorf("get wallet: failed to retrieve transactions: %w", err)
	}
	wallet.Transactions = history
	return wallet, nil
}

// GetTransactions retrieves a wallet's history in insertion order.
// A limit of zero or less returns the whole history.
func (s *walletService) GetTransactions(ctx context.Context, clientID string, limit, offset int) ([]domain.Transaction, int64, error) {
	wallet, err := s.walletRepo.GetWalletByClientID(ctx, s.dbExecutor, clientID)
	if err != nil {
		return nil, 0, fmt.Errorf("get transactions: %w", err)
	}

	if limit <= 0 {
		history, err := s.transactionRepo.GetAllTransactionsByWalletID(ctx, s.dbExecutor, wallet.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("get transactions: failed to retrieve transaction history: %w", err)
		}
		return history, int64(len(history)), nil
	}

	transactions, totalCount, err := s.transactionRepo.GetTransactionsByWalletID(ctx, s.dbExecutor, wallet.ID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("get transactions: failed to retrieve transaction history: %w", err)
	}
	return transactions, totalCount, nil
}

// DeleteWallet removes a wallet whatever its balance.
func (s *walletService) DeleteWallet(ctx context.Context, clientID string) error {
	unlock, err := s.locker.Lock(ctx, clientID)
	if err != nil {
		return fmt.Errorf("delete wallet: failed to lock client '%s': %w", clientID, err)
	}
	defer unlock()

	balance, err := s.walletRepo.DeleteWalletByClientID(ctx, s.dbExecutor, clientID)
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}

	if !balance.IsZero() {
		s.logger.Warn("Deleted wallet with non-zero balance", "client_id", clientID, "balance", balance.String())
	} else {
		s.logger.Info("Wallet deleted", "client_id", clientID)
	}
	return nil
}
