// internal/domain/wallet.go
package domain

import (
	"time"

	"bike-wallet/internal/util"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Wallet is a client's prepaid balance together with its transaction history.
// Balance never goes negative and always equals the signed sum of Transactions
// when the full history is loaded. Transactions is append-only.
type Wallet struct {
	ID           int64           `db:"id" json:"id"`
	ClientID     string          `db:"client_id" json:"client_id"`
	Balance      decimal.Decimal `db:"balance" json:"balance"`
	Version      int64           `db:"version" json:"version"` // Bumped on every successful save
	Transactions []Transaction   `db:"-" json:"transactions"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// AmountScale is the number of decimal places money is stored with (NUMERIC(20, 4)).
const AmountScale = 4

// ValidateAmount rejects amounts that are not positive or that carry more
// precision than storage keeps.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Truncate(AmountScale)) {
		return util.ErrInvalidAmount
	}
	return nil
}

// NewWallet creates an empty wallet for the given client.
func NewWallet(clientID string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ClientID:     clientID,
		Balance:      decimal.Zero,
		Transactions: []Transaction{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Deposit credits the wallet and records a Deposit transaction.
func (w *Wallet) Deposit(amount decimal.Decimal, description string) (*Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if description == "" {
		description = DefaultDepositDescription
	}

	tx := NewTransaction(w.ID, TransactionTypeDeposit, amount, description)
	w.Balance = w.Balance.Add(amount)
	w.Transactions = append(w.Transactions, *tx)
	w.UpdatedAt = tx.Date
	return tx, nil
}

// MakePayment debits the wallet and records a Payment transaction.
// Amounts are validated like deposits, otherwise a "payment" of a negative
// amount would credit the wallet.
func (w *Wallet) MakePayment(amount decimal.Decimal, description string) (*Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if amount.GreaterThan(w.Balance) {
		return nil, util.ErrInsufficientFunds
	}
	if description == "" {
		description = DefaultPaymentDescription
	}

	tx := NewTransaction(w.ID, TransactionTypePayment, amount, description)
	w.Balance = w.Balance.Sub(amount)
	w.Transactions = append(w.Transactions, *tx)
	w.UpdatedAt = tx.Date
	return tx, nil
}

// GetBalance returns the current balance.
func (w *Wallet) GetBalance() decimal.Decimal {
	return w.Balance
}

// GetTransactions returns a copy of the history in insertion order.
func (w *Wallet) GetTransactions() []Transaction {
	out := make([]Transaction, len(w.Transactions))
	copy(out, w.Transactions)
	return out
}

// SignedTotal sums the transactions with deposits positive and payments negative.
func (w *Wallet) SignedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, tx := range w.Transactions {
		total = total.Add(tx.SignedAmount())
	}
	return total
}
