package recipes

import (
	"context"
	"fmt"
	"strings"

	"github.com/hugh/recipe-api/internal/database/models"
	"gorm.io/gorm"
)

// LabelFilter narrows tag and ingredient listings.
type LabelFilter struct {
	// AssignedOnly keeps labels used by at least one recipe.
	AssignedOnly bool
}

func (s *Service) CreateTag(ctx context.Context, userID uint, name string) (*models.Tag, error) {
	name, err := labelName(name)
	if err != nil {
		return nil, err
	}
	tag := &models.Tag{Name: name, UserID: userID}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}
	return tag, nil
}

func (s *Service) ListTags(ctx context.Context, userID uint, filter LabelFilter) ([]models.Tag, error) {
	query := labelQuery(s.db.WithContext(ctx), userID, filter, "recipe_tags", "tag_id")

	var tags []models.Tag
	if err := query.Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

func (s *Service) CreateIngredient(ctx context.Context, userID uint, name string) (*models.Ingredient, error) {
	name, err := labelName(name)
	if err != nil {
		return nil, err
	}
	ingredient := &models.Ingredient{Name: name, UserID: userID}
	if err := s.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return nil, fmt.Errorf("creating ingredient: %w", err)
	}
	return ingredient, nil
}

func (s *Service) ListIngredients(ctx context.Context, userID uint, filter LabelFilter) ([]models.Ingredient, error) {
	query := labelQuery(s.db.WithContext(ctx), userID, filter, "recipe_ingredients", "ingredient_id")

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	return ingredients, nil
}

// labelQuery builds the shared tag/ingredient listing. The IN subquery keeps
// rows unique when a label is used by several recipes.
func labelQuery(db *gorm.DB, userID uint, filter LabelFilter, joinTable, column string) *gorm.DB {
	query := db.Where("user_id = ?", userID)
	if filter.AssignedOnly {
		query = query.Where("id IN (?)", db.Table(joinTable).Select(column))
	}
	return query.Order("name DESC")
}

func labelName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(name) > 255 {
		return "", fmt.Errorf("%w: at most 255 characters", ErrInvalidName)
	}
	return name, nil
}
