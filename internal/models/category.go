package models

// CategoryType represents the type of category.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "INCOME"
	CategoryTypeExpense CategoryType = "EXPENSE"
)

// Category labels transactions. System categories (IsSystem, nil UserID)
// are globally readable and immutable; user categories belong to exactly
// one user.
type Category struct {
	Base
	Name     string       `gorm:"not null;size:100" json:"name"`
	Type     CategoryType `gorm:"not null;size:20" json:"type"`
	Icon     string       `gorm:"size:50" json:"icon"`
	Color    string       `gorm:"size:20" json:"color"`
	IsSystem bool         `gorm:"default:false" json:"is_system"`
	UserID   *string      `gorm:"type:uuid;index" json:"user_id,omitempty"`
}
