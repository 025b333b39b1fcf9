package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"moneytracker/internal/clock"
	apperrors "moneytracker/internal/errors"
	"moneytracker/internal/models"
	"moneytracker/internal/pagination"
)

// transactionService validates and executes ledger mutations, including
// the dual-leg transfer protocol.
type transactionService struct {
	db      *gorm.DB
	access  AccessServicer
	balance BalanceServicer
	clk     clock.Clock
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, access AccessServicer, balance BalanceServicer, clk clock.Clock) TransactionServicer {
	return &transactionService{db: db, access: access, balance: balance, clk: clk}
}

func (s *transactionService) getWallet(walletID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.db.Where("id = ?", walletID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &wallet, nil
}

// CreateTransaction records a ledger entry against a wallet the user can
// write to. For transfers with a target wallet, both legs are written in
// one database transaction: either both wallets see the transfer or
// neither does.
func (s *transactionService) CreateTransaction(userID string, input CreateTransactionInput) (*models.Transaction, error) {
	switch input.Type {
	case models.TransactionTypeIncome, models.TransactionTypeExpense, models.TransactionTypeTransfer:
	default:
		return nil, apperrors.ErrInvalidTransactionType
	}

	if !input.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	wallet, err := s.getWallet(input.WalletID)
	if err != nil {
		return nil, err
	}

	ok, err := s.access.CanWrite(wallet, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "You don't have permission to add transactions to this wallet")
	}

	if input.CategoryID != nil {
		var count int64
		if err := s.db.Model(&models.Category{}).Where("id = ?", *input.CategoryID).Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrCategoryNotFound
		}
	}

	date := clock.Today(s.clk)
	if input.TransactionDate != nil {
		date = clock.DateOf(*input.TransactionDate)
	}

	// Currency is stamped from the wallet at recording time, never taken
	// from the caller.
	transaction := &models.Transaction{
		WalletID:        wallet.ID,
		UserID:          userID,
		Type:            input.Type,
		Amount:          input.Amount,
		Currency:        wallet.Currency,
		CategoryID:      input.CategoryID,
		Description:     input.Description,
		TransactionDate: date,
	}

	var counterpart *models.Transaction
	if input.Type == models.TransactionTypeTransfer {
		transaction.Direction = models.TransferOut

		if input.TargetWalletID != nil {
			target, err := s.getWallet(*input.TargetWalletID)
			if err != nil {
				if errors.Is(err, apperrors.ErrWalletNotFound) {
					return nil, apperrors.WithMessage(apperrors.ErrWalletNotFound, "Target wallet not found")
				}
				return nil, err
			}

			ok, err := s.access.CanWrite(target, userID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, apperrors.WithMessage(apperrors.ErrForbidden, "You don't have permission to add transactions to the target wallet")
			}

			transaction.RelatedWalletID = &target.ID
			counterpart = &models.Transaction{
				WalletID:        target.ID,
				UserID:          userID,
				Type:            models.TransactionTypeTransfer,
				Amount:          input.Amount,
				Currency:        target.Currency,
				Description:     "Transfer from " + wallet.Name,
				RelatedWalletID: &wallet.ID,
				Direction:       models.TransferIn,
				TransactionDate: date,
			}
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if counterpart != nil {
			if err := tx.Create(counterpart).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// GetTransactionByID resolves a transaction the user can read.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").Where("id = ?", transactionID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	wallet, err := s.getWallet(transaction.WalletID)
	if err != nil {
		return nil, err
	}
	ok, err := s.access.CanRead(wallet, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "You don't have access to this wallet")
	}

	return &transaction, nil
}

// DeleteTransaction removes a ledger entry, gated on write access to its
// wallet. The paired leg of a transfer is intentionally left in place;
// the counterpart keeps its back-reference and its wallet keeps the
// credited or debited amount.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	var transaction models.Transaction
	if err := s.db.Where("id = ?", transactionID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTransactionNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	wallet, err := s.getWallet(transaction.WalletID)
	if err != nil {
		return err
	}
	ok, err := s.access.CanWrite(wallet, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.WithMessage(apperrors.ErrForbidden, "You don't have permission to delete this transaction")
	}

	if err := s.db.Delete(&transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetWalletBalance recomputes a wallet's balance, gated on read access.
func (s *transactionService) GetWalletBalance(userID, walletID string) (decimal.Decimal, error) {
	wallet, err := s.getWallet(walletID)
	if err != nil {
		return decimal.Zero, err
	}
	ok, err := s.access.CanRead(wallet, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrForbidden, "You don't have access to this wallet")
	}
	return s.balance.Balance(walletID)
}

// ledgerOrder is the canonical listing order: newest date first, ties
// broken by insertion order so pagination stays deterministic.
const ledgerOrder = "transaction_date DESC, created_at DESC"

func (s *transactionService) listPage(base *gorm.DB, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Category").
		Order(ledgerOrder).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetWalletTransactions lists one wallet's ledger, gated on read access.
func (s *transactionService) GetWalletTransactions(userID, walletID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	wallet, err := s.getWallet(walletID)
	if err != nil {
		return nil, err
	}
	ok, err := s.access.CanRead(wallet, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "You don't have access to this wallet")
	}

	base := s.db.Model(&models.Transaction{}).Where("wallet_id = ?", walletID)
	return s.listPage(base, page)
}

// GetUserTransactions lists entries across every wallet the user can
// read, owned and member-of alike.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	walletIDs, err := accessibleWalletIDs(s.db, userID)
	if err != nil {
		return nil, err
	}
	if len(walletIDs) == 0 {
		empty := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
		return &empty, nil
	}

	base := s.db.Model(&models.Transaction{}).Where("wallet_id IN ?", walletIDs)
	return s.listPage(base, page)
}

// GetWalletTransactionsByDateRange lists one wallet's entries within an
// inclusive calendar-date window.
func (s *transactionService) GetWalletTransactionsByDateRange(userID, walletID string, start, end time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	wallet, err := s.getWallet(walletID)
	if err != nil {
		return nil, err
	}
	ok, err := s.access.CanRead(wallet, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "You don't have access to this wallet")
	}

	base := s.db.Model(&models.Transaction{}).
		Where("wallet_id = ? AND transaction_date BETWEEN ? AND ?",
			walletID, clock.DateOf(start), clock.DateOf(end))
	return s.listPage(base, page)
}
