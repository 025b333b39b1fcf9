package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "moneytracker/internal/errors"
	"moneytracker/internal/models"
)

// categoryService manages transaction categories. System categories are
// globally readable and immutable; user categories belong to their
// creator.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// GetUserCategories lists system categories plus the user's own.
func (s *categoryService) GetUserCategories(userID string) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.
		Where("is_system = ? OR user_id = ?", true, userID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoriesByType lists accessible categories of one type.
func (s *categoryService) GetCategoriesByType(userID string, categoryType models.CategoryType) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.
		Where("(is_system = ? OR user_id = ?) AND type = ?", true, userID, categoryType).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetSystemCategories lists the predefined categories.
func (s *categoryService) GetSystemCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("is_system = ?", true).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

func (s *categoryService) findCategory(categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// GetCategoryByID returns one category: any system category, or the
// user's own.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	category, err := s.findCategory(categoryID)
	if err != nil {
		return nil, err
	}

	if !category.IsSystem && (category.UserID == nil || *category.UserID != userID) {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "You don't have access to this category")
	}
	return category, nil
}

// CreateCategory creates a user-owned category.
func (s *categoryService) CreateCategory(userID string, input CreateCategoryInput) (*models.Category, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	category := &models.Category{
		Name:     input.Name,
		Type:     input.Type,
		Icon:     input.Icon,
		Color:    input.Color,
		IsSystem: false,
		UserID:   &userID,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// UpdateCategory applies a partial patch to a category the user owns.
func (s *categoryService) UpdateCategory(userID, categoryID string, input UpdateCategoryInput) (*models.Category, error) {
	category, err := s.findCategory(categoryID)
	if err != nil {
		return nil, err
	}

	if category.IsSystem {
		return nil, apperrors.ErrSystemCategoryImmutable
	}
	if category.UserID == nil || *category.UserID != userID {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "You can only modify your own categories")
	}

	updates := make(map[string]interface{})
	if input.Name != nil && *input.Name != "" {
		updates["name"] = *input.Name
	}
	if input.Type != nil {
		updates["type"] = *input.Type
	}
	if input.Icon != nil {
		updates["icon"] = *input.Icon
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return category, nil
}

// DeleteCategory removes a category the user owns. Ledger entries keep
// their category reference until the store nulls it; the dashboard
// reports such entries as orphaned.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.findCategory(categoryID)
	if err != nil {
		return err
	}

	if category.IsSystem {
		return apperrors.ErrSystemCategoryImmutable
	}
	if category.UserID == nil || *category.UserID != userID {
		return apperrors.WithMessage(apperrors.ErrForbidden, "You can only delete your own categories")
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
