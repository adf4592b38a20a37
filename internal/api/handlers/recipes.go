package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/recipe-api/internal/api/dto"
	"github.com/hugh/recipe-api/internal/api/middleware"
	"github.com/hugh/recipe-api/internal/database/models"
	"github.com/hugh/recipe-api/internal/recipes"
)

// RecipeService is what RecipeHandler needs from the recipes package.
type RecipeService interface {
	recipes.RecipeStore
	recipes.ImageStore
}

type RecipeHandler struct {
	service        RecipeService
	maxUploadBytes int64
}

func NewRecipeHandler(service RecipeService, maxUploadBytes int64) *RecipeHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &RecipeHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// List handles GET /api/recipe/recipes/
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	tagIDs, err := models.ParseIDList(r.URL.Query().Get("tags"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid tags filter"})
		return
	}
	ingredientIDs, err := models.ParseIDList(r.URL.Query().Get("ingredients"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid ingredients filter"})
		return
	}

	list, err := h.service.ListRecipes(r.Context(), middleware.GetUserID(r.Context()), recipes.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch recipes"})
		return
	}

	resp := make([]dto.RecipeResponse, len(list))
	for i := range list {
		resp[i] = dto.NewRecipeResponse(&list[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/recipe/recipes/
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRecipe(w, r, true)
	if !ok {
		return
	}

	recipe, err := h.service.CreateRecipe(r.Context(), middleware.GetUserID(r.Context()), req.Input())
	if err != nil {
		writeRecipeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.detail(recipe))
}

// Get handles GET /api/recipe/recipes/{id}/
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	recipe, err := h.service.GetRecipe(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		writeRecipeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.detail(recipe))
}

// Update handles PUT /api/recipe/recipes/{id}/
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}
	req, ok := decodeRecipe(w, r, true)
	if !ok {
		return
	}

	recipe, err := h.service.UpdateRecipe(r.Context(), middleware.GetUserID(r.Context()), id, req.Input())
	if err != nil {
		writeRecipeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.detail(recipe))
}

// PartialUpdate handles PATCH /api/recipe/recipes/{id}/
func (h *RecipeHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}
	req, ok := decodeRecipe(w, r, false)
	if !ok {
		return
	}

	recipe, err := h.service.PartialUpdateRecipe(r.Context(), middleware.GetUserID(r.Context()), id, req.Patch())
	if err != nil {
		writeRecipeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.detail(recipe))
}

// Delete handles DELETE /api/recipe/recipes/{id}/
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteRecipe(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		writeRecipeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /api/recipe/recipes/{id}/upload-image/ with a
// multipart "image" field.
func (h *RecipeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "Upload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid multipart form"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed",
			Details: map[string]string{"image": "No file was submitted"}})
		return
	}
	defer file.Close()

	recipe, err := h.service.AttachImage(r.Context(), middleware.GetUserID(r.Context()), id, header.Filename, file)
	if err != nil {
		writeRecipeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RecipeImageResponse{ID: recipe.ID, Image: h.service.ImageURL(recipe)})
}

// DeleteImage handles DELETE /api/recipe/recipes/{id}/upload-image/
func (h *RecipeHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}

	if _, err := h.service.RemoveImage(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		writeRecipeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecipeHandler) detail(recipe *models.Recipe) dto.RecipeDetailResponse {
	return dto.NewRecipeDetailResponse(recipe, h.service.ImageURL(recipe))
}

func recipeID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Recipe not found"})
		return 0, false
	}
	return uint(id), true
}

func decodeRecipe(w http.ResponseWriter, r *http.Request, full bool) (dto.RecipeRequest, bool) {
	var req dto.RecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return req, false
	}
	if errors := req.Validate(full); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return req, false
	}
	return req, true
}

func writeRecipeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recipes.ErrRecipeNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Recipe not found"})
	case errors.Is(err, recipes.ErrInvalidLabel):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid pk - object does not exist"})
	case errors.Is(err, recipes.ErrInvalidImage):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed",
			Details: map[string]string{"image": "Upload a valid image. The file you uploaded was either not an image or a corrupted image."}})
	case errors.Is(err, recipes.ErrInvalidRecipe):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
	}
}
