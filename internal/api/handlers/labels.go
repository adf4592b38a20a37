package handlers

import (
	"errors"
	"net/http"

	"github.com/hugh/recipe-api/internal/api/dto"
	"github.com/hugh/recipe-api/internal/api/middleware"
	"github.com/hugh/recipe-api/internal/recipes"
)

type LabelHandler struct {
	labels recipes.LabelStore
}

func NewLabelHandler(labels recipes.LabelStore) *LabelHandler {
	return &LabelHandler{labels: labels}
}

// ListTags handles GET /api/recipe/tags/
func (h *LabelHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.labels.ListTags(r.Context(), middleware.GetUserID(r.Context()), labelFilter(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch tags"})
		return
	}

	resp := make([]dto.LabelResponse, len(tags))
	for i, t := range tags {
		resp[i] = dto.NewTagResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateTag handles POST /api/recipe/tags/
func (h *LabelHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req dto.LabelRequest
	if !decodeLabel(w, r, &req) {
		return
	}

	tag, err := h.labels.CreateTag(r.Context(), middleware.GetUserID(r.Context()), req.Name)
	if err != nil {
		writeLabelError(w, err, "Failed to create tag")
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewTagResponse(*tag))
}

// ListIngredients handles GET /api/recipe/ingredients/
func (h *LabelHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.labels.ListIngredients(r.Context(), middleware.GetUserID(r.Context()), labelFilter(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch ingredients"})
		return
	}

	resp := make([]dto.LabelResponse, len(ingredients))
	for i, ing := range ingredients {
		resp[i] = dto.NewIngredientResponse(ing)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateIngredient handles POST /api/recipe/ingredients/
func (h *LabelHandler) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req dto.LabelRequest
	if !decodeLabel(w, r, &req) {
		return
	}

	ingredient, err := h.labels.CreateIngredient(r.Context(), middleware.GetUserID(r.Context()), req.Name)
	if err != nil {
		writeLabelError(w, err, "Failed to create ingredient")
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewIngredientResponse(*ingredient))
}

// labelFilter reads ?assigned_only=1. Any value other than 0, false or empty enables it.
func labelFilter(r *http.Request) recipes.LabelFilter {
	v := r.URL.Query().Get("assigned_only")
	return recipes.LabelFilter{AssignedOnly: v != "" && v != "0" && v != "false"}
}

func decodeLabel(w http.ResponseWriter, r *http.Request, req *dto.LabelRequest) bool {
	if err := decodeJSON(r, req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return false
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return false
	}
	return true
}

func writeLabelError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, recipes.ErrInvalidName) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed",
			Details: map[string]string{"name": err.Error()}})
		return
	}
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: msg})
}
