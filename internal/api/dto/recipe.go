package dto

import (
	"github.com/hugh/recipe-api/internal/api/validation"
	"github.com/hugh/recipe-api/internal/database/models"
	"github.com/hugh/recipe-api/internal/recipes"
	"github.com/shopspring/decimal"
)

type LabelRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (r LabelRequest) Validate() map[string]string {
	r.Name = validation.SanitizeString(r.Name)
	return validation.Struct(r)
}

type LabelResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func NewTagResponse(t models.Tag) LabelResponse {
	return LabelResponse{ID: t.ID, Name: t.Name}
}

func NewIngredientResponse(i models.Ingredient) LabelResponse {
	return LabelResponse{ID: i.ID, Name: i.Name}
}

// RecipeRequest is the body of recipe create, update and partial update.
// Price accepts a JSON number or string. A null or missing tags/ingredients
// list is "not supplied"; [] clears it.
type RecipeRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=255"`
	TimeMinutes *int             `json:"time_minutes" validate:"omitempty,gte=0"`
	Price       *decimal.Decimal `json:"price" validate:"-"`
	Link        *string          `json:"link" validate:"omitempty,max=255,link"`
	Tags        []uint           `json:"tags" validate:"omitempty,dive,gt=0"`
	Ingredients []uint           `json:"ingredients" validate:"omitempty,dive,gt=0"`
}

// Validate checks the supplied fields. With full set title, time_minutes
// and price are required.
func (r RecipeRequest) Validate(full bool) map[string]string {
	errors := validation.Struct(r)

	if r.Title != nil && *r.Title == "" {
		errors["title"] = "This field may not be blank"
	}
	if r.Price != nil {
		switch {
		case r.Price.IsNegative():
			errors["price"] = "Ensure this value is greater than or equal to 0"
		case r.Price.GreaterThan(recipes.MaxPrice):
			errors["price"] = "Ensure that there are no more than 5 digits in total"
		case !r.Price.Equal(r.Price.Round(2)):
			errors["price"] = "Ensure that there are no more than 2 decimal places"
		}
	}

	if full {
		if r.Title == nil {
			errors["title"] = "This field is required"
		}
		if r.TimeMinutes == nil {
			errors["time_minutes"] = "This field is required"
		}
		if r.Price == nil {
			errors["price"] = "This field is required"
		}
	}
	return errors
}

// Input converts a validated full request.
func (r RecipeRequest) Input() recipes.RecipeInput {
	input := recipes.RecipeInput{
		Link:          r.Link,
		TagIDs:        r.Tags,
		IngredientIDs: r.Ingredients,
	}
	if r.Title != nil {
		input.Title = validation.SanitizeString(*r.Title)
	}
	if r.TimeMinutes != nil {
		input.TimeMinutes = *r.TimeMinutes
	}
	if r.Price != nil {
		input.Price = *r.Price
	}
	return input
}

func (r RecipeRequest) Patch() recipes.RecipePatch {
	patch := recipes.RecipePatch{
		TimeMinutes:   r.TimeMinutes,
		Price:         r.Price,
		Link:          r.Link,
		TagIDs:        r.Tags,
		IngredientIDs: r.Ingredients,
	}
	if r.Title != nil {
		title := validation.SanitizeString(*r.Title)
		patch.Title = &title
	}
	return patch
}

// RecipeResponse is a recipe in list views. Tags and ingredients are ids.
type RecipeResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	TimeMinutes int    `json:"time_minutes"`
	Price       string `json:"price"`
	Link        string `json:"link"`
	Tags        []uint `json:"tags"`
	Ingredients []uint `json:"ingredients"`
}

func NewRecipeResponse(r *models.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Tags:        r.TagIDs(),
		Ingredients: r.IngredientIDs(),
	}
}

// RecipeDetailResponse nests tags and ingredients and carries the image URL.
type RecipeDetailResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       string          `json:"price"`
	Link        string          `json:"link"`
	Image       *string         `json:"image"`
	Tags        []LabelResponse `json:"tags"`
	Ingredients []LabelResponse `json:"ingredients"`
}

func NewRecipeDetailResponse(r *models.Recipe, imageURL string) RecipeDetailResponse {
	resp := RecipeDetailResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Tags:        make([]LabelResponse, len(r.Tags)),
		Ingredients: make([]LabelResponse, len(r.Ingredients)),
	}
	if imageURL != "" {
		resp.Image = &imageURL
	}
	for i, t := range r.Tags {
		resp.Tags[i] = NewTagResponse(t)
	}
	for i, ing := range r.Ingredients {
		resp.Ingredients[i] = NewIngredientResponse(ing)
	}
	return resp
}

type RecipeImageResponse struct {
	ID    uint   `json:"id"`
	Image string `json:"image"`
}
