package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "moneytracker/internal/errors"
	"moneytracker/internal/models"
)

// accessService evaluates wallet access from ownership and membership.
type accessService struct {
	db *gorm.DB
}

// NewAccessService creates a new AccessServicer.
func NewAccessService(db *gorm.DB) AccessServicer {
	return &accessService{db: db}
}

// IsOwner reports whether userID is the wallet's recorded owner.
func (s *accessService) IsOwner(wallet *models.Wallet, userID string) bool {
	return wallet.OwnerID == userID
}

// CanRead reports whether userID may read the wallet: the owner, or any
// explicit member.
func (s *accessService) CanRead(wallet *models.Wallet, userID string) (bool, error) {
	if wallet.OwnerID == userID {
		return true, nil
	}

	var count int64
	if err := s.db.Model(&models.WalletMember{}).
		Where("wallet_id = ? AND user_id = ?", wallet.ID, userID).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// CanWrite reports whether userID may mutate the wallet's ledger: the
// owner, or a member whose role is OWNER or MEMBER. Today every explicit
// membership carries one of those roles; a future read-only role must
// not be accepted here.
func (s *accessService) CanWrite(wallet *models.Wallet, userID string) (bool, error) {
	if wallet.OwnerID == userID {
		return true, nil
	}

	var member models.WalletMember
	err := s.db.Where("wallet_id = ? AND user_id = ?", wallet.ID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return member.Role == models.MemberRoleOwner || member.Role == models.MemberRoleMember, nil
}

// accessibleWalletIDs returns the IDs of all wallets userID owns or is a
// member of.
func accessibleWalletIDs(db *gorm.DB, userID string) ([]string, error) {
	memberOf := db.Model(&models.WalletMember{}).Select("wallet_id").Where("user_id = ?", userID)

	var ids []string
	if err := db.Model(&models.Wallet{}).
		Where("owner_id = ? OR id IN (?)", userID, memberOf).
		Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}
