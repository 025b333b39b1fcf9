package models

// WalletType represents the kind of money container a wallet is.
type WalletType string

const (
	WalletTypeBank       WalletType = "bank"
	WalletTypeInvestment WalletType = "investment"
	WalletTypeCrypto     WalletType = "crypto"
	WalletTypeOther      WalletType = "other"
)

// Wallet is a named money container with exactly one owner and optional
// co-members. The owner is an implicit OWNER member even when no explicit
// membership row exists for them.
type Wallet struct {
	Base
	OwnerID     string     `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name        string     `gorm:"not null;size:100" json:"name"`
	Type        WalletType `gorm:"not null;size:50" json:"type"`
	Currency    string     `gorm:"not null;size:10;default:'USD'" json:"currency"`
	Description string     `json:"description"`
	Icon        string     `gorm:"size:50" json:"icon"`
	Color       string     `gorm:"size:20" json:"color"`
	IsFavorite  bool       `gorm:"default:false" json:"is_favorite"`
	// FavoriteOrder is only meaningful while IsFavorite is true.
	FavoriteOrder *int `json:"favorite_order,omitempty"`

	Owner   User           `gorm:"foreignKey:OwnerID" json:"-"`
	Members []WalletMember `gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// IsShared reports whether the wallet has explicit members beyond the
// implicit owner.
func (w *Wallet) IsShared() bool {
	for i := range w.Members {
		if w.Members[i].UserID != w.OwnerID {
			return true
		}
	}
	return false
}

// MemberCount counts explicit non-owner members plus the implicit owner.
func (w *Wallet) MemberCount() int {
	count := 1
	for i := range w.Members {
		if w.Members[i].UserID != w.OwnerID {
			count++
		}
	}
	return count
}
