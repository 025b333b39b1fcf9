package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"moneytracker/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestWallet creates a bank wallet owned by the given user, with
// its implicit owner membership row.
func CreateTestWallet(t *testing.T, db *gorm.DB, ownerID string) *models.Wallet {
	t.Helper()

	wallet := &models.Wallet{
		OwnerID:  ownerID,
		Name:     fmt.Sprintf("Test Wallet %d", nextID()),
		Type:     models.WalletTypeBank,
		Currency: "USD",
	}
	if err := db.Create(wallet).Error; err != nil {
		t.Fatalf("failed to create test wallet: %v", err)
	}
	member := &models.WalletMember{
		WalletID: wallet.ID,
		UserID:   ownerID,
		Role:     models.MemberRoleOwner,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create owner membership: %v", err)
	}
	return wallet
}

// CreateTestMember adds a user as a MEMBER of the given wallet.
func CreateTestMember(t *testing.T, db *gorm.DB, walletID, userID string) *models.WalletMember {
	t.Helper()

	member := &models.WalletMember{
		WalletID: walletID,
		UserID:   userID,
		Role:     models.MemberRoleMember,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test member: %v", err)
	}
	return member
}

// CreateTestCategory creates a user-owned category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
		UserID: &userID,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSystemCategory creates a system category of the given type.
func CreateTestSystemCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:     fmt.Sprintf("System Category %d", nextID()),
		Type:     categoryType,
		IsSystem: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create system category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a dated ledger entry of the given type
// and amount.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, walletID string, txType models.TransactionType, amount decimal.Decimal, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		WalletID:        walletID,
		UserID:          userID,
		Type:            txType,
		Amount:          amount,
		Currency:        "USD",
		TransactionDate: date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
