package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "moneytracker/internal/errors"
	"moneytracker/internal/models"
)

// defaultCurrency is stamped on wallets created without one.
const defaultCurrency = "USD"

// walletService manages wallet lifecycle: creation, metadata updates,
// favorites, deletion, and consolidation of one wallet into another.
type walletService struct {
	db      *gorm.DB
	access  AccessServicer
	balance BalanceServicer
}

// NewWalletService creates a new WalletServicer.
func NewWalletService(db *gorm.DB, access AccessServicer, balance BalanceServicer) WalletServicer {
	return &walletService{db: db, access: access, balance: balance}
}

func (s *walletService) getWallet(walletID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.db.Preload("Members").Where("id = ?", walletID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &wallet, nil
}

// toView decorates a wallet with its derived read-path fields.
func (s *walletService) toView(wallet *models.Wallet, userID string) (*WalletView, error) {
	balance, err := s.balance.Balance(wallet.ID)
	if err != nil {
		return nil, err
	}
	dailyChange, err := s.balance.DailyChange(wallet.ID)
	if err != nil {
		return nil, err
	}

	return &WalletView{
		Wallet:      *wallet,
		Balance:     balance,
		DailyChange: dailyChange,
		IsShared:    wallet.IsShared(),
		MemberCount: wallet.MemberCount(),
		IsOwner:     s.access.IsOwner(wallet, userID),
	}, nil
}

func (s *walletService) toViews(wallets []models.Wallet, userID string) ([]WalletView, error) {
	views := make([]WalletView, 0, len(wallets))
	for i := range wallets {
		view, err := s.toView(&wallets[i], userID)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// CreateWallet creates a non-favorite wallet owned by userID. The owner
// is additionally persisted as an explicit OWNER membership row so
// membership-based queries find their own wallets.
func (s *walletService) CreateWallet(userID string, input CreateWalletInput) (*WalletView, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "wallet name is required")
	}

	currency := input.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	wallet := &models.Wallet{
		OwnerID:     userID,
		Name:        input.Name,
		Type:        input.Type,
		Currency:    currency,
		Description: input.Description,
		Icon:        input.Icon,
		Color:       input.Color,
		IsFavorite:  false,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(wallet).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		member := &models.WalletMember{
			WalletID: wallet.ID,
			UserID:   userID,
			Role:     models.MemberRoleOwner,
		}
		if err := tx.Create(member).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetWalletByID(userID, wallet.ID)
}

// GetUserWallets lists every wallet userID owns or is a member of.
func (s *walletService) GetUserWallets(userID string) ([]WalletView, error) {
	memberOf := s.db.Model(&models.WalletMember{}).Select("wallet_id").Where("user_id = ?", userID)

	var wallets []models.Wallet
	if err := s.db.Preload("Members").
		Where("owner_id = ? OR id IN (?)", userID, memberOf).
		Order("created_at DESC").
		Find(&wallets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.toViews(wallets, userID)
}

// GetFavoriteWallets lists the user's owned favorite wallets in favorite
// order, unordered favorites last.
func (s *walletService) GetFavoriteWallets(userID string) ([]WalletView, error) {
	var wallets []models.Wallet
	if err := s.db.Preload("Members").
		Where("owner_id = ? AND is_favorite = ?", userID, true).
		Order("favorite_order IS NULL, favorite_order ASC").
		Find(&wallets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.toViews(wallets, userID)
}

// GetWalletByID returns one wallet view, gated on read access.
func (s *walletService) GetWalletByID(userID, walletID string) (*WalletView, error) {
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

	return s.toView(wallet, userID)
}

// UpdateWallet applies a partial patch to a wallet the user owns. Nil
// patch fields leave the stored values untouched.
func (s *walletService) UpdateWallet(userID, walletID string, input UpdateWalletInput) (*WalletView, error) {
	wallet, err := s.getWallet(walletID)
	if err != nil {
		return nil, err
	}

	if !s.access.IsOwner(wallet, userID) {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "Only the owner can update this wallet")
	}

	updates := make(map[string]interface{})
	if input.Name != nil && *input.Name != "" {
		updates["name"] = *input.Name
	}
	if input.Type != nil {
		updates["type"] = *input.Type
	}
	if input.Currency != nil && *input.Currency != "" {
		updates["currency"] = *input.Currency
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Icon != nil {
		updates["icon"] = *input.Icon
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}
	if input.IsFavorite != nil {
		updates["is_favorite"] = *input.IsFavorite
	}
	if input.FavoriteOrder != nil {
		updates["favorite_order"] = *input.FavoriteOrder
	}

	if len(updates) > 0 {
		if err := s.db.Model(wallet).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetWalletByID(userID, walletID)
}

// DeleteWallet removes a wallet the user owns together with its
// membership rows. Transactions are not relocated: what happens to them
// is the store's foreign-key policy (wallet-leg rows cascade, related
// back-references null out).
func (s *walletService) DeleteWallet(userID, walletID string) error {
	wallet, err := s.getWallet(walletID)
	if err != nil {
		return err
	}

	if !s.access.IsOwner(wallet, userID) {
		return apperrors.WithMessage(apperrors.ErrForbidden, "Only the owner can delete this wallet")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wallet_id = ?", walletID).Delete(&models.WalletMember{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(wallet).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// TransferWallet consolidates the source wallet into the target: every
// ledger entry and every transfer back-reference is re-pointed at the
// target, then the source is deleted. All of it happens in one database
// transaction. Amounts are relabeled, never converted — consolidating
// wallets of different currencies changes what the numbers mean.
func (s *walletService) TransferWallet(userID, sourceWalletID, targetWalletID string) (*WalletView, error) {
	if sourceWalletID == targetWalletID {
		return nil, apperrors.ErrSameWalletTransfer
	}

	source, err := s.getWallet(sourceWalletID)
	if err != nil {
		if errors.Is(err, apperrors.ErrWalletNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrWalletNotFound, "Source wallet not found")
		}
		return nil, err
	}
	target, err := s.getWallet(targetWalletID)
	if err != nil {
		if errors.Is(err, apperrors.ErrWalletNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrWalletNotFound, "Target wallet not found")
		}
		return nil, err
	}

	if !s.access.IsOwner(source, userID) {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "Only the owner can transfer this wallet")
	}
	if !s.access.IsOwner(target, userID) {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "You don't have access to the target wallet")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("wallet_id = ?", sourceWalletID).
			Update("wallet_id", targetWalletID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(&models.Transaction{}).
			Where("related_wallet_id = ?", sourceWalletID).
			Update("related_wallet_id", targetWalletID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Where("wallet_id = ?", sourceWalletID).Delete(&models.WalletMember{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(source).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetWalletByID(userID, targetWalletID)
}

// UpdateFavorites applies a batch of favorite flag/order writes. Both
// fields are written unconditionally per item, a nil order included.
// The batch is all-or-nothing: any item failing leaves every wallet
// exactly as it was.
func (s *walletService) UpdateFavorites(userID string, updates []FavoriteUpdate) ([]WalletView, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range updates {
			var wallet models.Wallet
			if err := tx.Where("id = ?", item.WalletID).First(&wallet).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.WithMessage(apperrors.ErrWalletNotFound, "Wallet not found: "+item.WalletID)
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			if !s.access.IsOwner(&wallet, userID) {
				return apperrors.WithMessage(apperrors.ErrForbidden, "Only the owner can update favorite status")
			}

			if err := tx.Model(&wallet).Updates(map[string]interface{}{
				"is_favorite":    item.IsFavorite,
				"favorite_order": item.FavoriteOrder,
			}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetFavoriteWallets(userID)
}
