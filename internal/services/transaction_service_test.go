package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"moneytracker/internal/clock"
	"moneytracker/internal/models"
	"moneytracker/internal/pagination"
	"moneytracker/internal/testutil"
)

func newTransactionService(db *gorm.DB) TransactionServicer {
	access := NewAccessService(db)
	balance := NewBalanceService(db, testClock())
	return NewTransactionService(db, access, balance, testClock())
}

func TestCreateTransaction(t *testing.T) {
	t.Run("income", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		tx, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeIncome,
			Amount:   decimal.RequireFromString("250.75"),
		})
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected generated transaction ID")
		}
		if tx.Currency != "USD" {
			t.Errorf("expected currency stamped from wallet, got %s", tx.Currency)
		}
		if !tx.TransactionDate.Equal(clock.DateOf(testNow)) {
			t.Errorf("expected date defaulted to today, got %s", tx.TransactionDate)
		}
	})

	t.Run("zero_amount_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   decimal.Zero,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("negative_amount_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   decimal.NewFromInt(-5),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_type_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionType("REFUND"),
			Amount:   decimal.NewFromInt(10),
		})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("unknown_category_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		missing := "0195f000-0000-7000-8000-000000000000"
		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			WalletID:   wallet.ID,
			Type:       models.TransactionTypeExpense,
			Amount:     decimal.NewFromInt(10),
			CategoryID: &missing,
		})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("no_write_access_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, owner.ID)

		_, err := svc.CreateTransaction(stranger.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeIncome,
			Amount:   decimal.NewFromInt(10),
		})
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("member_can_write", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, owner.ID)
		testutil.CreateTestMember(t, db, wallet.ID, member.ID)

		tx, err := svc.CreateTransaction(member.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeExpense,
			Amount:   decimal.NewFromInt(10),
		})
		testutil.AssertNoError(t, err)
		if tx.UserID != member.ID {
			t.Errorf("expected entry recorded by member, got %s", tx.UserID)
		}
	})
}

func TestCreateTransfer(t *testing.T) {
	t.Run("both_legs_written", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestWallet(t, db, user.ID)
		target := testutil.CreateTestWallet(t, db, user.ID)
		amount := decimal.RequireFromString("75.50")

		out, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			WalletID:       source.ID,
			Type:           models.TransactionTypeTransfer,
			Amount:         amount,
			TargetWalletID: &target.ID,
		})
		testutil.AssertNoError(t, err)

		if out.Direction != models.TransferOut {
			t.Errorf("expected OUT direction on the source leg, got %s", out.Direction)
		}
		if out.RelatedWalletID == nil || *out.RelatedWalletID != target.ID {
			t.Error("expected source leg to reference the target wallet")
		}

		var in models.Transaction
		err = db.Where("wallet_id = ? AND type = ?", target.ID, models.TransactionTypeTransfer).First(&in).Error
		testutil.AssertNoError(t, err)
		if in.Direction != models.TransferIn {
			t.Errorf("expected IN direction on the counterpart, got %s", in.Direction)
		}
		if in.RelatedWalletID == nil || *in.RelatedWalletID != source.ID {
			t.Error("expected counterpart to reference the source wallet")
		}
		if in.Description != "Transfer from "+source.Name {
			t.Errorf("unexpected counterpart description: %s", in.Description)
		}
		testutil.AssertDecimalEqual(t, amount, in.Amount)

		// The pair conserves value across the two wallets.
		balance := NewBalanceService(db, testClock())
		sourceBalance, err := balance.Balance(source.ID)
		testutil.AssertNoError(t, err)
		targetBalance, err := balance.Balance(target.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.Zero, sourceBalance.Add(targetBalance))
	})

	t.Run("without_target_is_one_leg", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		out, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			WalletID: wallet.ID,
			Type:     models.TransactionTypeTransfer,
			Amount:   decimal.NewFromInt(50),
		})
		testutil.AssertNoError(t, err)
		if out.Direction != models.TransferOut {
			t.Errorf("expected OUT direction, got %s", out.Direction)
		}

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 1 {
			t.Errorf("expected a single leg, got %d", count)
		}
	})

	t.Run("missing_target_writes_nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestWallet(t, db, user.ID)

		missing := "0195f000-0000-7000-8000-000000000000"
		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			WalletID:       source.ID,
			Type:           models.TransactionTypeTransfer,
			Amount:         decimal.NewFromInt(10),
			TargetWalletID: &missing,
		})
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no legs written, got %d", count)
		}
	})

	t.Run("inaccessible_target_writes_nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestWallet(t, db, user.ID)
		target := testutil.CreateTestWallet(t, db, other.ID)

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			WalletID:       source.ID,
			Type:           models.TransactionTypeTransfer,
			Amount:         decimal.NewFromInt(10),
			TargetWalletID: &target.ID,
		})
		testutil.AssertAppError(t, err, "FORBIDDEN")

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no legs written, got %d", count)
		}
	})

	t.Run("counterpart_stamps_target_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestWallet(t, db, user.ID)
		target := testutil.CreateTestWallet(t, db, user.ID)
		if err := db.Model(target).Update("currency", "EUR").Error; err != nil {
			t.Fatalf("failed to update currency: %v", err)
		}

		_, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			WalletID:       source.ID,
			Type:           models.TransactionTypeTransfer,
			Amount:         decimal.NewFromInt(10),
			TargetWalletID: &target.ID,
		})
		testutil.AssertNoError(t, err)

		var in models.Transaction
		err = db.Where("wallet_id = ?", target.ID).First(&in).Error
		testutil.AssertNoError(t, err)
		if in.Currency != "EUR" {
			t.Errorf("expected counterpart in target currency, got %s", in.Currency)
		}
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("deletes_single_entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)
		tx := testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, decimal.NewFromInt(10), clock.DateOf(testNow))

		testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, tx.ID))

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("expected empty ledger, got %d entries", count)
		}
	})

	t.Run("paired_leg_survives", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestWallet(t, db, user.ID)
		target := testutil.CreateTestWallet(t, db, user.ID)

		out, err := svc.CreateTransaction(user.ID, CreateTransactionInput{
			WalletID:       source.ID,
			Type:           models.TransactionTypeTransfer,
			Amount:         decimal.NewFromInt(10),
			TargetWalletID: &target.ID,
		})
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, out.ID))

		var in models.Transaction
		err = db.Where("wallet_id = ?", target.ID).First(&in).Error
		testutil.AssertNoError(t, err)
		if in.RelatedWalletID == nil || *in.RelatedWalletID != source.ID {
			t.Error("expected surviving leg to keep its back-reference")
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		err := svc.DeleteTransaction(user.ID, "0195f000-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("no_write_access", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, owner.ID)
		tx := testutil.CreateTestTransaction(t, db, owner.ID, wallet.ID, models.TransactionTypeIncome, decimal.NewFromInt(10), clock.DateOf(testNow))

		err := svc.DeleteTransaction(stranger.ID, tx.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestGetWalletBalance(t *testing.T) {
	t.Run("member_can_read", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, owner.ID)
		testutil.CreateTestMember(t, db, wallet.ID, member.ID)
		testutil.CreateTestTransaction(t, db, owner.ID, wallet.ID, models.TransactionTypeIncome, decimal.NewFromInt(80), clock.DateOf(testNow))

		balance, err := svc.GetWalletBalance(member.ID, wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(80), balance)
	})

	t.Run("stranger_denied", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, owner.ID)

		_, err := svc.GetWalletBalance(stranger.ID, wallet.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestGetWalletTransactions(t *testing.T) {
	t.Run("newest_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		today := clock.DateOf(testNow)
		old := testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, decimal.NewFromInt(1), today.AddDate(0, 0, -3))
		recent := testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, decimal.NewFromInt(2), today)

		page, err := svc.GetWalletTransactions(user.ID, wallet.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Fatalf("expected 2 entries, got %d", page.TotalItems)
		}
		if page.Data[0].ID != recent.ID || page.Data[1].ID != old.ID {
			t.Error("expected entries ordered newest date first")
		}
	})

	t.Run("no_read_access", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, owner.ID)

		_, err := svc.GetWalletTransactions(stranger.ID, wallet.ID, pagination.PageRequest{})
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("pagination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID)

		today := clock.DateOf(testNow)
		for i := 0; i < 5; i++ {
			testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, decimal.NewFromInt(1), today.AddDate(0, 0, -i))
		}

		page, err := svc.GetWalletTransactions(user.ID, wallet.ID, pagination.PageRequest{Page: 2, PageSize: 2})
		testutil.AssertNoError(t, err)
		if len(page.Data) != 2 {
			t.Errorf("expected 2 items on page 2, got %d", len(page.Data))
		}
		if page.TotalItems != 5 || page.TotalPages != 3 {
			t.Errorf("expected 5 items over 3 pages, got %d over %d", page.TotalItems, page.TotalPages)
		}
	})
}

func TestGetUserTransactions(t *testing.T) {
	t.Run("spans_owned_and_member_wallets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		owned := testutil.CreateTestWallet(t, db, user.ID)
		shared := testutil.CreateTestWallet(t, db, other.ID)
		testutil.CreateTestMember(t, db, shared.ID, user.ID)
		hidden := testutil.CreateTestWallet(t, db, other.ID)

		today := clock.DateOf(testNow)
		testutil.CreateTestTransaction(t, db, user.ID, owned.ID, models.TransactionTypeIncome, decimal.NewFromInt(1), today)
		testutil.CreateTestTransaction(t, db, other.ID, shared.ID, models.TransactionTypeExpense, decimal.NewFromInt(2), today)
		testutil.CreateTestTransaction(t, db, other.ID, hidden.ID, models.TransactionTypeIncome, decimal.NewFromInt(3), today)

		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected entries from owned and member wallets only, got %d", page.TotalItems)
		}
	})

	t.Run("no_wallets_empty_page", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 0 || len(page.Data) != 0 {
			t.Errorf("expected empty page, got %d items", page.TotalItems)
		}
	})
}

func TestGetWalletTransactionsByDateRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	wallet := testutil.CreateTestWallet(t, db, user.ID)

	today := clock.DateOf(testNow)
	inside := testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, decimal.NewFromInt(1), today.AddDate(0, 0, -2))
	edge := testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, decimal.NewFromInt(2), today.AddDate(0, 0, -5))
	testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeIncome, decimal.NewFromInt(3), today.AddDate(0, 0, -10))

	page, err := svc.GetWalletTransactionsByDateRange(user.ID, wallet.ID, today.AddDate(0, 0, -5), today, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 2 {
		t.Fatalf("expected 2 entries in window, got %d", page.TotalItems)
	}

	ids := map[string]bool{page.Data[0].ID: true, page.Data[1].ID: true}
	if !ids[inside.ID] || !ids[edge.ID] {
		t.Error("expected window to be inclusive of its boundary date")
	}
}

func TestGetTransactionByID(t *testing.T) {
	t.Run("member_can_read", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUserWithEmail(t, db, "member@example.com")
		wallet := testutil.CreateTestWallet(t, db, owner.ID)
		testutil.CreateTestMember(t, db, wallet.ID, member.ID)
		created := testutil.CreateTestTransaction(t, db, owner.ID, wallet.ID,
			models.TransactionTypeExpense, decimal.RequireFromString("12.50"), testNow)

		tx, err := svc.GetTransactionByID(member.ID, created.ID)
		testutil.AssertNoError(t, err)

		if tx.ID != created.ID {
			t.Errorf("expected transaction %s, got %s", created.ID, tx.ID)
		}
		testutil.AssertDecimalEqual(t, decimal.RequireFromString("12.50"), tx.Amount)
	})

	t.Run("stranger_denied", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUserWithEmail(t, db, "stranger@example.com")
		wallet := testutil.CreateTestWallet(t, db, owner.ID)
		created := testutil.CreateTestTransaction(t, db, owner.ID, wallet.ID,
			models.TransactionTypeIncome, decimal.RequireFromString("5"), testNow)

		_, err := svc.GetTransactionByID(stranger.ID, created.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetTransactionByID(user.ID, "0195f000-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}
