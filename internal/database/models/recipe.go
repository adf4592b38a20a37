package models

import (
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeImageDir is the storage prefix for uploaded recipe images.
const RecipeImageDir = "uploads/recipe"

type Recipe struct {
	Base
	UserID      uint            `gorm:"index;not null" json:"-"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	TimeMinutes int             `gorm:"not null" json:"time_minutes"`
	Price       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"price"`
	Link        string          `gorm:"size:255" json:"link"`
	Image       string          `gorm:"size:255" json:"image"` // storage key, empty when unset

	User        *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Tags        []Tag        `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []Ingredient `gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE" json:"ingredients"`
}

func (Recipe) TableName() string {
	return "recipes"
}

func (r Recipe) String() string {
	return r.Title
}

// TagIDs returns the ids of the loaded tags.
func (r *Recipe) TagIDs() []uint {
	ids := make([]uint, len(r.Tags))
	for i, t := range r.Tags {
		ids[i] = t.ID
	}
	return ids
}

// IngredientIDs returns the ids of the loaded ingredients.
func (r *Recipe) IngredientIDs() []uint {
	ids := make([]uint, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ids[i] = ing.ID
	}
	return ids
}

// RecipeImagePath builds the storage key for an uploaded image from an identifier
// and the client's filename. Only the extension of filename is kept.
func RecipeImagePath(id, filename string) string {
	name := id
	if ext := imageExt(filename); ext != "" {
		name += "." + ext
	}
	return path.Join(RecipeImageDir, name)
}

// NewRecipeImagePath is RecipeImagePath with a freshly generated UUID.
func NewRecipeImagePath(filename string) string {
	return RecipeImagePath(uuid.NewString(), filename)
}

func imageExt(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}
