package services

import (
	"time"

	"github.com/shopspring/decimal"

	"moneytracker/internal/models"
	"moneytracker/internal/pagination"
)

// UpdateUserInput is a partial profile patch. Nil fields are left
// untouched; a new password is re-hashed before storage.
type UpdateUserInput struct {
	DisplayName *string
	Password    *string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, displayName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	UpdateUser(id string, input UpdateUserInput) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// AccessServicer decides what a principal may do with a wallet. The
// owner column is consulted first as an implicit OWNER membership; the
// explicit membership set is a fallback, so access never depends on the
// redundant owner-membership row having been written.
type AccessServicer interface {
	CanRead(wallet *models.Wallet, userID string) (bool, error)
	CanWrite(wallet *models.Wallet, userID string) (bool, error)
	IsOwner(wallet *models.Wallet, userID string) bool
}

// WalletView is a wallet together with its derived read-path fields.
type WalletView struct {
	Wallet      models.Wallet   `json:"wallet"`
	Balance     decimal.Decimal `json:"balance"`
	DailyChange decimal.Decimal `json:"daily_change"`
	IsShared    bool            `json:"is_shared"`
	MemberCount int             `json:"member_count"`
	IsOwner     bool            `json:"is_owner"`
}

// CreateWalletInput holds the fields for creating a wallet.
type CreateWalletInput struct {
	Name        string
	Type        models.WalletType
	Currency    string
	Description string
	Icon        string
	Color       string
}

// UpdateWalletInput is a partial patch. Nil fields are left untouched;
// a pointer to the zero value clears the field.
type UpdateWalletInput struct {
	Name          *string
	Type          *models.WalletType
	Currency      *string
	Description   *string
	Icon          *string
	Color         *string
	IsFavorite    *bool
	FavoriteOrder *int
}

// FavoriteUpdate is one item of a batch favorite update. Unlike the
// wallet patch, both fields are always written, including a nil order.
type FavoriteUpdate struct {
	WalletID      string
	IsFavorite    bool
	FavoriteOrder *int
}

// WalletServicer defines the contract for wallet lifecycle management.
type WalletServicer interface {
	CreateWallet(userID string, input CreateWalletInput) (*WalletView, error)
	GetUserWallets(userID string) ([]WalletView, error)
	GetFavoriteWallets(userID string) ([]WalletView, error)
	GetWalletByID(userID, walletID string) (*WalletView, error)
	UpdateWallet(userID, walletID string, input UpdateWalletInput) (*WalletView, error)
	DeleteWallet(userID, walletID string) error
	TransferWallet(userID, sourceWalletID, targetWalletID string) (*WalletView, error)
	UpdateFavorites(userID string, updates []FavoriteUpdate) ([]WalletView, error)
}

// CreateTransactionInput holds the fields for recording a ledger entry.
// TransactionDate nil defaults to the service clock's current date.
// TargetWalletID is only meaningful for transfers.
type CreateTransactionInput struct {
	WalletID        string
	Type            models.TransactionType
	Amount          decimal.Decimal
	CategoryID      *string
	Description     string
	TransactionDate *time.Time
	TargetWalletID  *string
}

// TransactionServicer defines the contract for the transaction engine.
type TransactionServicer interface {
	CreateTransaction(userID string, input CreateTransactionInput) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	GetWalletBalance(userID, walletID string) (decimal.Decimal, error)
	GetWalletTransactions(userID, walletID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	GetUserTransactions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	GetWalletTransactionsByDateRange(userID, walletID string, start, end time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// BalanceServicer derives balances from the ledger. Nothing is cached:
// every call recomputes from the transaction log.
type BalanceServicer interface {
	Balance(walletID string) (decimal.Decimal, error)
	BalanceAsOf(walletID string, date time.Time) (decimal.Decimal, error)
	DailyChange(walletID string) (decimal.Decimal, error)
}

// CategoryBreakdownEntry is one category's share of a month's expenses.
// Orphaned marks entries whose category no longer resolves, so deleted
// categories stay observable instead of silently vanishing.
type CategoryBreakdownEntry struct {
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Orphaned   bool            `json:"orphaned,omitempty"`
}

// DashboardSummary is the composite month-to-date view for a user.
type DashboardSummary struct {
	TotalBalance       decimal.Decimal          `json:"total_balance"`
	MonthlyIncome      decimal.Decimal          `json:"monthly_income"`
	MonthlyExpense     decimal.Decimal          `json:"monthly_expense"`
	MonthlyChange      decimal.Decimal          `json:"monthly_change"`
	Wallets            []WalletView             `json:"wallets"`
	RecentTransactions []models.Transaction     `json:"recent_transactions"`
	CategoryBreakdown  []CategoryBreakdownEntry `json:"category_breakdown"`
}

// NetWorthPoint is one day's net worth snapshot.
type NetWorthPoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
	Label string          `json:"label"`
}

// NetWorthHistory is a daily net worth series over a named period.
type NetWorthHistory struct {
	History             []NetWorthPoint `json:"history"`
	CurrentNetWorth     decimal.Decimal `json:"current_net_worth"`
	PeriodChange        decimal.Decimal `json:"period_change"`
	PeriodChangePercent decimal.Decimal `json:"period_change_percent"`
}

// DashboardServicer composes wallets, balances, and the ledger into
// aggregate read views.
type DashboardServicer interface {
	Dashboard(userID string) (*DashboardSummary, error)
	NetWorthHistory(userID string, period string) (*NetWorthHistory, error)
}

// CreateCategoryInput holds the fields for creating a user category.
type CreateCategoryInput struct {
	Name  string
	Type  models.CategoryType
	Icon  string
	Color string
}

// UpdateCategoryInput is a partial patch for a user category.
type UpdateCategoryInput struct {
	Name  *string
	Type  *models.CategoryType
	Icon  *string
	Color *string
}

// CategoryServicer defines the contract for category management.
type CategoryServicer interface {
	GetUserCategories(userID string) ([]models.Category, error)
	GetCategoriesByType(userID string, categoryType models.CategoryType) ([]models.Category, error)
	GetSystemCategories() ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	CreateCategory(userID string, input CreateCategoryInput) (*models.Category, error)
	UpdateCategory(userID, categoryID string, input UpdateCategoryInput) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}
