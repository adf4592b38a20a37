package recipes

import (
	"context"
	"io"

	"github.com/hugh/recipe-api/internal/database/models"
)

// LabelStore defines the interface for tag and ingredient operations.
type LabelStore interface {
	CreateTag(ctx context.Context, userID uint, name string) (*models.Tag, error)
	ListTags(ctx context.Context, userID uint, filter LabelFilter) ([]models.Tag, error)
	CreateIngredient(ctx context.Context, userID uint, name string) (*models.Ingredient, error)
	ListIngredients(ctx context.Context, userID uint, filter LabelFilter) ([]models.Ingredient, error)
}

// RecipeStore defines the interface for recipe operations.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, userID uint, input RecipeInput) (*models.Recipe, error)
	ListRecipes(ctx context.Context, userID uint, filter RecipeFilter) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error)
	PartialUpdateRecipe(ctx context.Context, userID, id uint, patch RecipePatch) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, userID, id uint, input RecipeInput) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, id uint) error
}

// ImageStore defines the interface for recipe image operations.
type ImageStore interface {
	AttachImage(ctx context.Context, userID, id uint, filename string, r io.Reader) (*models.Recipe, error)
	RemoveImage(ctx context.Context, userID, id uint) (*models.Recipe, error)
	ImageURL(recipe *models.Recipe) string
}

// Compile-time interface satisfaction checks
var (
	_ LabelStore  = (*Service)(nil)
	_ RecipeStore = (*Service)(nil)
	_ ImageStore  = (*Service)(nil)
)
