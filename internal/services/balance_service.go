package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"moneytracker/internal/clock"
	apperrors "moneytracker/internal/errors"
	"moneytracker/internal/models"
)

// balanceService derives wallet balances from the transaction log on
// every call. Sums are computed in Go over exact decimals so the result
// is identical across database drivers and never touches binary floats.
type balanceService struct {
	db  *gorm.DB
	clk clock.Clock
}

// NewBalanceService creates a new BalanceServicer.
func NewBalanceService(db *gorm.DB, clk clock.Clock) BalanceServicer {
	return &balanceService{db: db, clk: clk}
}

// ledgerRow carries the columns needed for balance arithmetic.
type ledgerRow struct {
	Type              models.TransactionType
	TransferDirection models.TransferDirection
	Amount            decimal.Decimal
}

// ledgerEffect returns the signed effect of one ledger entry on its own
// wallet's balance. Incomes credit, expenses debit, and transfer legs
// net by their persisted direction: the outgoing leg debits the source
// wallet and the generated incoming leg credits the target, so a
// transfer conserves value across the two wallets.
func ledgerEffect(row ledgerRow) decimal.Decimal {
	switch row.Type {
	case models.TransactionTypeIncome:
		return row.Amount
	case models.TransactionTypeExpense:
		return row.Amount.Neg()
	case models.TransactionTypeTransfer:
		if row.TransferDirection == models.TransferIn {
			return row.Amount
		}
		return row.Amount.Neg()
	}
	return decimal.Zero
}

func (s *balanceService) sumRows(q *gorm.DB) (decimal.Decimal, error) {
	var rows []ledgerRow
	if err := q.Select("type, transfer_direction, amount").Scan(&rows).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(ledgerEffect(row))
	}
	return total, nil
}

// Balance returns the wallet's point-in-time balance over its entire
// ledger. Zero when no transactions exist.
func (s *balanceService) Balance(walletID string) (decimal.Decimal, error) {
	return s.sumRows(s.db.Model(&models.Transaction{}).Where("wallet_id = ?", walletID))
}

// BalanceAsOf returns the balance considering only entries dated on or
// before the given calendar date.
func (s *balanceService) BalanceAsOf(walletID string, date time.Time) (decimal.Decimal, error) {
	return s.sumRows(s.db.Model(&models.Transaction{}).
		Where("wallet_id = ? AND transaction_date <= ?", walletID, clock.DateOf(date)))
}

// DailyChange returns today's income minus today's expense for the
// wallet. Transfer legs are excluded: daily change reports earned vs
// spent, not money moved between own wallets.
func (s *balanceService) DailyChange(walletID string) (decimal.Decimal, error) {
	today := clock.Today(s.clk)
	return s.sumRows(s.db.Model(&models.Transaction{}).
		Where("wallet_id = ? AND transaction_date = ? AND type IN ?",
			walletID, today,
			[]models.TransactionType{models.TransactionTypeIncome, models.TransactionTypeExpense}))
}
