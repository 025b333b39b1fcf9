package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"moneytracker/internal/clock"
	apperrors "moneytracker/internal/errors"
	"moneytracker/internal/models"
)

// netWorthPeriods maps a period name to its lookback length in days.
var netWorthPeriods = map[string]int{
	"7D": 7,
	"1M": 30,
	"3M": 90,
	"6M": 180,
	"1Y": 365,
}

// dashboardService composes the wallet registry, the balance calculator,
// and the ledger into aggregate month-to-date and net-worth views.
type dashboardService struct {
	db      *gorm.DB
	wallets WalletServicer
	balance BalanceServicer
	clk     clock.Clock
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB, wallets WalletServicer, balance BalanceServicer, clk clock.Clock) DashboardServicer {
	return &dashboardService{db: db, wallets: wallets, balance: balance, clk: clk}
}

// monthWindow returns the first and last calendar day of today's month.
func (s *dashboardService) monthWindow() (time.Time, time.Time) {
	today := clock.Today(s.clk)
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// Dashboard builds the composite month-to-date summary for a user.
func (s *dashboardService) Dashboard(userID string) (*DashboardSummary, error) {
	views, err := s.wallets.GetUserWallets(userID)
	if err != nil {
		return nil, err
	}

	totalBalance := decimal.Zero
	for i := range views {
		totalBalance = totalBalance.Add(views[i].Balance)
	}

	walletIDs, err := accessibleWalletIDs(s.db, userID)
	if err != nil {
		return nil, err
	}

	monthStart, monthEnd := s.monthWindow()
	var monthTransactions []models.Transaction
	if len(walletIDs) > 0 {
		if err := s.db.
			Where("wallet_id IN ? AND transaction_date BETWEEN ? AND ?", walletIDs, monthStart, monthEnd).
			Find(&monthTransactions).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	monthlyIncome := decimal.Zero
	monthlyExpense := decimal.Zero
	for i := range monthTransactions {
		switch monthTransactions[i].Type {
		case models.TransactionTypeIncome:
			monthlyIncome = monthlyIncome.Add(monthTransactions[i].Amount)
		case models.TransactionTypeExpense:
			monthlyExpense = monthlyExpense.Add(monthTransactions[i].Amount)
		}
	}

	recent, err := s.recentTransactions(userID)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.categoryBreakdown(monthTransactions)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		TotalBalance:       totalBalance,
		MonthlyIncome:      monthlyIncome,
		MonthlyExpense:     monthlyExpense,
		MonthlyChange:      monthlyIncome.Sub(monthlyExpense),
		Wallets:            views,
		RecentTransactions: recent,
		CategoryBreakdown:  breakdown,
	}, nil
}

// recentTransactions returns the 10 newest entries across wallets the
// user owns. Member-of wallets are deliberately excluded here, a
// narrower scope than the rest of the dashboard.
func (s *dashboardService) recentTransactions(userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.
		Joins("JOIN wallets ON wallets.id = transactions.wallet_id").
		Where("wallets.owner_id = ?", userID).
		Order("transactions.transaction_date DESC, transactions.created_at DESC").
		Limit(10).
		Preload("Category").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// categoryBreakdown groups the window's expense entries by category.
// Entries whose category no longer resolves are kept and tagged as
// orphaned rather than dropped. The breakdown is empty whenever the
// window's total expense is zero, so the percentage denominator is
// never zero.
func (s *dashboardService) categoryBreakdown(transactions []models.Transaction) ([]CategoryBreakdownEntry, error) {
	totalExpense := decimal.Zero
	for i := range transactions {
		if transactions[i].Type == models.TransactionTypeExpense {
			totalExpense = totalExpense.Add(transactions[i].Amount)
		}
	}

	if totalExpense.IsZero() {
		return []CategoryBreakdownEntry{}, nil
	}

	amounts := make(map[string]decimal.Decimal)
	for i := range transactions {
		t := &transactions[i]
		if t.Type != models.TransactionTypeExpense || t.CategoryID == nil {
			continue
		}
		amounts[*t.CategoryID] = amounts[*t.CategoryID].Add(t.Amount)
	}

	categoryIDs := make([]string, 0, len(amounts))
	for id := range amounts {
		categoryIDs = append(categoryIDs, id)
	}

	categories := make(map[string]models.Category)
	if len(categoryIDs) > 0 {
		var found []models.Category
		if err := s.db.Where("id IN ?", categoryIDs).Find(&found).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for i := range found {
			categories[found[i].ID] = found[i]
		}
	}

	hundred := decimal.NewFromInt(100)
	entries := make([]CategoryBreakdownEntry, 0, len(amounts))
	for id, amount := range amounts {
		entry := CategoryBreakdownEntry{
			CategoryID: id,
			Amount:     amount,
			Percentage: amount.Mul(hundred).Div(totalExpense).Round(2),
		}
		if category, ok := categories[id]; ok {
			entry.Name = category.Name
			entry.Color = category.Color
		} else {
			entry.Orphaned = true
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Amount.Equal(entries[j].Amount) {
			return entries[i].Amount.GreaterThan(entries[j].Amount)
		}
		return entries[i].CategoryID < entries[j].CategoryID
	})

	return entries, nil
}

// NetWorthHistory produces a daily net-worth series over a named period.
// Older points are balances as of that day; the final point is today and
// always equals the live total balance.
func (s *dashboardService) NetWorthHistory(userID, period string) (*NetWorthHistory, error) {
	days, ok := netWorthPeriods[period]
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown period: "+period)
	}

	walletIDs, err := accessibleWalletIDs(s.db, userID)
	if err != nil {
		return nil, err
	}

	today := clock.Today(s.clk)
	history := make([]NetWorthPoint, 0, days)
	for i := days - 1; i > 0; i-- {
		date := today.AddDate(0, 0, -i)
		value := decimal.Zero
		for _, walletID := range walletIDs {
			balance, err := s.balance.BalanceAsOf(walletID, date)
			if err != nil {
				return nil, err
			}
			value = value.Add(balance)
		}
		history = append(history, NetWorthPoint{Date: date, Value: value, Label: date.Format("Jan 2")})
	}

	current := decimal.Zero
	for _, walletID := range walletIDs {
		balance, err := s.balance.Balance(walletID)
		if err != nil {
			return nil, err
		}
		current = current.Add(balance)
	}
	history = append(history, NetWorthPoint{Date: today, Value: current, Label: today.Format("Jan 2")})

	first := history[0].Value
	change := current.Sub(first)
	percent := decimal.Zero
	if !first.IsZero() {
		percent = change.Mul(decimal.NewFromInt(100)).Div(first).Round(2)
	}

	return &NetWorthHistory{
		History:             history,
		CurrentNetWorth:     current,
		PeriodChange:        change,
		PeriodChangePercent: percent,
	}, nil
}
