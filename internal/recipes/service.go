package recipes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hugh/recipe-api/internal/database/models"
	"github.com/hugh/recipe-api/internal/storage"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrInvalidLabel   = errors.New("unknown tag or ingredient")
	ErrInvalidImage   = errors.New("upload a valid image")
	ErrInvalidRecipe  = errors.New("invalid recipe")
	ErrInvalidName    = errors.New("invalid name")
)

// MaxPrice is the largest value a decimal(5,2) column holds.
var MaxPrice = decimal.RequireFromString("999.99")

// DefaultMaxImagePixels caps the declared size of uploaded images.
const DefaultMaxImagePixels int64 = 89478485

// Service manages recipes and the tags and ingredients attached to them.
// Every query is scoped to the owning user.
type Service struct {
	db     *gorm.DB
	store  storage.Storage
	logger *slog.Logger

	maxImagePixels int64
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithMaxImagePixels sets the largest width*height an uploaded image may
// declare. Zero or less keeps the default.
func WithMaxImagePixels(n int64) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxImagePixels = n
		}
	}
}

func NewService(db *gorm.DB, store storage.Storage, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{db: db, store: store, logger: logger, maxImagePixels: DefaultMaxImagePixels}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecipeInput is a complete recipe. Nil Link, TagIDs or IngredientIDs mean
// "not supplied": empty on create, unchanged on update.
type RecipeInput struct {
	Title         string
	TimeMinutes   int
	Price         decimal.Decimal
	Link          *string
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipePatch holds the fields of a partial update. Only non-nil fields change.
// A non-nil, empty id slice clears that association.
type RecipePatch struct {
	Title         *string
	TimeMinutes   *int
	Price         *decimal.Decimal
	Link          *string
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipeFilter narrows ListRecipes. A recipe matches when it has any of
// TagIDs and any of IngredientIDs; an empty list does not filter.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

func (s *Service) CreateRecipe(ctx context.Context, userID uint, input RecipeInput) (*models.Recipe, error) {
	if err := validateRecipe(input.Title, input.TimeMinutes, input.Price); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		UserID:      userID,
		Title:       input.Title,
		TimeMinutes: input.TimeMinutes,
		Price:       input.Price,
	}
	if input.Link != nil {
		recipe.Link = *input.Link
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, userID, input.TagIDs)
		if err != nil {
			return err
		}
		ingredients, err := resolveIngredients(tx, userID, input.IngredientIDs)
		if err != nil {
			return err
		}

		if err := tx.Omit("Tags", "Ingredients").Create(&recipe).Error; err != nil {
			return fmt.Errorf("creating recipe: %w", err)
		}
		if err := replaceAssociation(tx, &recipe, "Tags", tags); err != nil {
			return err
		}
		return replaceAssociation(tx, &recipe, "Ingredients", ingredients)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("created recipe", "id", recipe.ID, "user_id", userID)

	return s.GetRecipe(ctx, userID, recipe.ID)
}

func (s *Service) ListRecipes(ctx context.Context, userID uint, filter RecipeFilter) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).
		Preload("Tags").
		Preload("Ingredients").
		Where("user_id = ?", userID)

	if len(filter.TagIDs) > 0 {
		query = query.Where("id IN (?)",
			s.db.Table("recipe_tags").Select("recipe_id").Where("tag_id IN ?", filter.TagIDs))
	}
	if len(filter.IngredientIDs) > 0 {
		query = query.Where("id IN (?)",
			s.db.Table("recipe_ingredients").Select("recipe_id").Where("ingredient_id IN ?", filter.IngredientIDs))
	}

	var recipes []models.Recipe
	if err := query.Order("id DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	return recipes, nil
}

func (s *Service) GetRecipe(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	return getRecipe(s.db.WithContext(ctx), userID, id)
}

func (s *Service) PartialUpdateRecipe(ctx context.Context, userID, id uint, patch RecipePatch) (*models.Recipe, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := getRecipe(tx, userID, id)
		if err != nil {
			return err
		}

		title, minutes, price := recipe.Title, recipe.TimeMinutes, recipe.Price
		updates := map[string]interface{}{}
		if patch.Title != nil {
			title = *patch.Title
			updates["title"] = title
		}
		if patch.TimeMinutes != nil {
			minutes = *patch.TimeMinutes
			updates["time_minutes"] = minutes
		}
		if patch.Price != nil {
			price = *patch.Price
			updates["price"] = price
		}
		if patch.Link != nil {
			updates["link"] = *patch.Link
		}
		if err := validateRecipe(title, minutes, price); err != nil {
			return err
		}

		return s.applyUpdate(tx, recipe, updates, patch.TagIDs, patch.IngredientIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, userID, id)
}

// UpdateRecipe replaces title, time and price. Link and the associations are
// only replaced when supplied.
func (s *Service) UpdateRecipe(ctx context.Context, userID, id uint, input RecipeInput) (*models.Recipe, error) {
	if err := validateRecipe(input.Title, input.TimeMinutes, input.Price); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := getRecipe(tx, userID, id)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"title":        input.Title,
			"time_minutes": input.TimeMinutes,
			"price":        input.Price,
		}
		if input.Link != nil {
			updates["link"] = *input.Link
		}
		return s.applyUpdate(tx, recipe, updates, input.TagIDs, input.IngredientIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, userID, id)
}

func (s *Service) applyUpdate(tx *gorm.DB, recipe *models.Recipe, updates map[string]interface{}, tagIDs, ingredientIDs []uint) error {
	if tagIDs != nil {
		tags, err := resolveTags(tx, recipe.UserID, tagIDs)
		if err != nil {
			return err
		}
		if err := replaceAssociation(tx, recipe, "Tags", tags); err != nil {
			return err
		}
	}
	if ingredientIDs != nil {
		ingredients, err := resolveIngredients(tx, recipe.UserID, ingredientIDs)
		if err != nil {
			return err
		}
		if err := replaceAssociation(tx, recipe, "Ingredients", ingredients); err != nil {
			return err
		}
	}

	if len(updates) == 0 {
		return nil
	}
	if err := tx.Model(recipe).Omit("Tags", "Ingredients").Updates(updates).Error; err != nil {
		return fmt.Errorf("updating recipe: %w", err)
	}
	return nil
}

// DeleteRecipe removes the recipe, its associations and its image file.
func (s *Service) DeleteRecipe(ctx context.Context, userID, id uint) error {
	var image string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := getRecipe(tx, userID, id)
		if err != nil {
			return err
		}
		image = recipe.Image

		if err := tx.Select("Tags", "Ingredients").Delete(recipe).Error; err != nil {
			return fmt.Errorf("deleting recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.removeFile(ctx, image)
	s.logger.Info("deleted recipe", "id", id, "user_id", userID)
	return nil
}

func getRecipe(db *gorm.DB, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.
		Preload("Tags", orderByName).
		Preload("Ingredients", orderByName).
		Where("id = ? AND user_id = ?", id, userID).
		First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("loading recipe: %w", err)
	}
	return &recipe, nil
}

func orderByName(db *gorm.DB) *gorm.DB {
	return db.Order("name DESC")
}

func validateRecipe(title string, minutes int, price decimal.Decimal) error {
	switch {
	case title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidRecipe)
	case len(title) > 255:
		return fmt.Errorf("%w: title is too long", ErrInvalidRecipe)
	case minutes < 0:
		return fmt.Errorf("%w: time_minutes must not be negative", ErrInvalidRecipe)
	case price.IsNegative() || price.GreaterThan(MaxPrice):
		return fmt.Errorf("%w: price must be between 0 and %s", ErrInvalidRecipe, MaxPrice.StringFixed(2))
	case !price.Equal(price.Round(2)):
		return fmt.Errorf("%w: price has more than 2 decimal places", ErrInvalidRecipe)
	}
	return nil
}

func resolveTags(tx *gorm.DB, userID uint, ids []uint) ([]models.Tag, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := tx.Where("user_id = ? AND id IN ?", userID, ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("resolving tags: %w", err)
	}
	if len(tags) != len(ids) {
		return nil, fmt.Errorf("%w: tag", ErrInvalidLabel)
	}
	return tags, nil
}

func resolveIngredients(tx *gorm.DB, userID uint, ids []uint) ([]models.Ingredient, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var ingredients []models.Ingredient
	if err := tx.Where("user_id = ? AND id IN ?", userID, ids).Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("resolving ingredients: %w", err)
	}
	if len(ingredients) != len(ids) {
		return nil, fmt.Errorf("%w: ingredient", ErrInvalidLabel)
	}
	return ingredients, nil
}

// replaceAssociation sets the association to exactly values. T is a label model.
func replaceAssociation[T models.Tag | models.Ingredient](tx *gorm.DB, recipe *models.Recipe, name string, values []T) error {
	assoc := tx.Model(recipe).Association(name)
	var err error
	if len(values) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(values)
	}
	if err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
