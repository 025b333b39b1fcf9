package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of a ledger entry. Direction is
// encoded by the type, never by the sign of the amount.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// TransferDirection distinguishes the two legs of a transfer. Empty for
// income and expense entries.
type TransferDirection string

const (
	TransferOut TransferDirection = "OUT"
	TransferIn  TransferDirection = "IN"
)

// Transaction is one entry in a wallet's ledger. Amounts are exact
// decimals and strictly positive. Transfers produce two legs, one per
// wallet, linked through RelatedWalletID and tagged with a direction so
// balance derivation can net them.
type Transaction struct {
	Base
	WalletID   string          `gorm:"type:uuid;not null;index" json:"wallet_id"`
	UserID     string          `gorm:"type:uuid;not null" json:"user_id"`
	Type       TransactionType `gorm:"not null;size:20" json:"type"`
	Amount     decimal.Decimal `gorm:"type:decimal(19,4);not null" json:"amount"`
	Currency   string          `gorm:"not null;size:10" json:"currency"`
	CategoryID *string         `gorm:"type:uuid" json:"category_id,omitempty"`

	Description     string            `json:"description"`
	RelatedWalletID *string           `gorm:"type:uuid" json:"related_wallet_id,omitempty"`
	Direction       TransferDirection `gorm:"column:transfer_direction;size:4" json:"transfer_direction,omitempty"`

	// TransactionDate is a calendar date, stored at midnight UTC.
	TransactionDate time.Time `gorm:"not null;index" json:"transaction_date"`

	Wallet        Wallet    `gorm:"foreignKey:WalletID" json:"-"`
	RelatedWallet *Wallet   `gorm:"foreignKey:RelatedWalletID" json:"-"`
	Category      *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
