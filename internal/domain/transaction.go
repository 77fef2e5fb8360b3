// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the type of a wallet transaction.
type TransactionType string

const (
	TransactionTypeDeposit TransactionType = "Deposit"
	TransactionTypePayment TransactionType = "Payment"
)

// Default descriptions used when the caller supplies none.
const (
	DefaultDepositDescription = "Deposit"
	DefaultPaymentDescription = "Payment"
)

// Transaction is an immutable record of a single balance change.
// Amount is always positive; the sign is implied by Type.
type Transaction struct {
	ID          int64           `db:"id" json:"id"`
	WalletID    int64           `db:"wallet_id" json:"wallet_id"`
	Type        TransactionType `db:"type" json:"type"`
	Amount      decimal.Decimal `db:"amount" json:"amount"` // NUMERIC(20, 4) in DB
	Date        time.Time       `db:"date" json:"date"`
	Description string          `db:"description" json:"description"`
}

// NewTransaction creates a new Transaction stamped with the current time.
func NewTransaction(walletID int64, txType TransactionType, amount decimal.Decimal, description string) *Transaction {
	return &Transaction{
		WalletID:    walletID,
		Type:        txType,
		Amount:      amount,
		Date:        time.Now().UTC(),
		Description: description,
	}
}

// SignedAmount returns the amount with the sign implied by the transaction type.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypePayment {
		return t.Amount.Neg()
	}
	return t.Amount
}
