package models

import (
	"time"

	"gorm.io/gorm"
)

// MemberRole is the role a member holds in a shared wallet. Both roles
// currently grant write access; a read-only role would need to be
// excluded from the write check in the access evaluator.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "OWNER"
	MemberRoleMember MemberRole = "MEMBER"
)

// WalletMember grants a user membership in a wallet.
type WalletMember struct {
	Base
	WalletID string     `gorm:"type:uuid;not null;index" json:"wallet_id"`
	UserID   string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Role     MemberRole `gorm:"not null;size:20;default:'MEMBER'" json:"role"`
	JoinedAt time.Time  `json:"joined_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate stamps the join time.
func (m *WalletMember) BeforeCreate(tx *gorm.DB) error {
	if err := m.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return nil
}
