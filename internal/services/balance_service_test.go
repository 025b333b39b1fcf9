package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneytracker/internal/clock"
	"moneytracker/internal/models"
	"moneytracker/internal/testutil"
)

var testNow = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

func testClock() clock.Clock {
	return clock.Fixed{Time: testNow}
}

func TestBalance(t *testing.T) {
	t.Run("empty_ledger_is_zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBalanceService(db, testClock())
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		balance, err := svc.Balance(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.Zero, balance)
	})

	t.Run("income_minus_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBalanceService(db, testClock())
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		date := clock.DateOf(testNow)
		testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, decimal.RequireFromString("100.50"), date)
		testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, decimal.RequireFromString("19.50"), date)
		testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeExpense, decimal.RequireFromString("45.25"), date)

		balance, err := svc.Balance(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.RequireFromString("74.75"), balance)
	})

	t.Run("transfer_legs_net_by_direction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBalanceService(db, testClock())
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestWallet(t, db, user.ID)
		target := testutil.CreateTestWallet(t, db, user.ID)

		date := clock.DateOf(testNow)
		amount := decimal.RequireFromString("30")
		out := &models.Transaction{
			WalletID: source.ID, UserID: user.ID,
			Type: models.TransactionTypeTransfer, Direction: models.TransferOut,
			Amount: amount, Currency: "USD",
			RelatedWalletID: &target.ID, TransactionDate: date,
		}
		in := &models.Transaction{
			WalletID: target.ID, UserID: user.ID,
			Type: models.TransactionTypeTransfer, Direction: models.TransferIn,
			Amount: amount, Currency: "USD",
			RelatedWalletID: &source.ID, TransactionDate: date,
		}
		if err := db.Create(out).Error; err != nil {
			t.Fatalf("failed to create out leg: %v", err)
		}
		if err := db.Create(in).Error; err != nil {
			t.Fatalf("failed to create in leg: %v", err)
		}

		sourceBalance, err := svc.Balance(source.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, amount.Neg(), sourceBalance)

		targetBalance, err := svc.Balance(target.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, amount, targetBalance)

		// A transfer moves value; it never creates or destroys it.
		testutil.AssertDecimalEqual(t, decimal.Zero, sourceBalance.Add(targetBalance))
	})

	t.Run("read_is_idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBalanceService(db, testClock())
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)
		testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, decimal.NewFromInt(10), clock.DateOf(testNow))

		first, err := svc.Balance(wallet.ID)
		testutil.AssertNoError(t, err)
		second, err := svc.Balance(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, first, second)
	})
}

func TestBalanceAsOf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBalanceService(db, testClock())
	user := testutil.CreateTestUser(t, db)
	wallet := testutil.CreateTestWallet(t, db, user.ID)

	today := clock.DateOf(testNow)
	lastWeek := today.AddDate(0, 0, -7)
	testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, decimal.NewFromInt(100), lastWeek)
	testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeExpense, decimal.NewFromInt(40), today)

	asOfLastWeek, err := svc.BalanceAsOf(wallet.ID, lastWeek)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimalEqual(t, decimal.NewFromInt(100), asOfLastWeek)

	asOfToday, err := svc.BalanceAsOf(wallet.ID, today)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimalEqual(t, decimal.NewFromInt(60), asOfToday)
}

func TestDailyChange(t *testing.T) {
	t.Run("only_today_counts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBalanceService(db, testClock())
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		today := clock.DateOf(testNow)
		yesterday := today.AddDate(0, 0, -1)
		testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, decimal.NewFromInt(500), yesterday)
		testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, decimal.NewFromInt(20), today)
		testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeExpense, decimal.NewFromInt(5), today)

		change, err := svc.DailyChange(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(15), change)
	})

	t.Run("transfers_excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBalanceService(db, testClock())
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		today := clock.DateOf(testNow)
		tx := &models.Transaction{
			WalletID: wallet.ID, UserID: user.ID,
			Type: models.TransactionTypeTransfer, Direction: models.TransferIn,
			Amount: decimal.NewFromInt(1000), Currency: "USD",
			TransactionDate: today,
		}
		if err := db.Create(tx).Error; err != nil {
			t.Fatalf("failed to create transfer leg: %v", err)
		}

		change, err := svc.DailyChange(wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.Zero, change)
	})
}
