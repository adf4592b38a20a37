package recipes

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"

	"github.com/hugh/recipe-api/internal/database/models"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// AttachImage validates r as an image and stores it under a new key. The
// recipe's previous image, if any, is removed.
func (s *Service) AttachImage(ctx context.Context, userID, id uint, filename string, r io.Reader) (*models.Recipe, error) {
	recipe, err := s.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	format, err := detectImage(data, s.maxImagePixels)
	if err != nil {
		return nil, err
	}

	key := models.NewRecipeImagePath(imageFilename(filename, format))
	if err := s.store.Save(ctx, key, bytes.NewReader(data), "image/"+format); err != nil {
		return nil, fmt.Errorf("saving image: %w", err)
	}

	// Update writes key into recipe.Image
	previous := recipe.Image
	if err := s.db.WithContext(ctx).Model(recipe).Update("image", key).Error; err != nil {
		s.removeFile(ctx, key)
		return nil, fmt.Errorf("updating recipe image: %w", err)
	}

	recipe.Image = key
	if previous != "" && previous != key {
		s.removeFile(ctx, previous)
	}

	s.logger.Info("attached recipe image", "id", recipe.ID, "key", key, "format", format, "bytes", len(data))
	return recipe, nil
}

// RemoveImage clears the recipe's image and deletes the stored file.
func (s *Service) RemoveImage(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	recipe, err := s.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if recipe.Image == "" {
		return recipe, nil
	}

	previous := recipe.Image
	if err := s.db.WithContext(ctx).Model(recipe).Update("image", "").Error; err != nil {
		return nil, fmt.Errorf("clearing recipe image: %w", err)
	}
	recipe.Image = ""
	s.removeFile(ctx, previous)
	return recipe, nil
}

// ImageURL returns the public URL of the recipe's image, or "" when it has none.
func (s *Service) ImageURL(recipe *models.Recipe) string {
	if recipe.Image == "" {
		return ""
	}
	return s.store.URL(recipe.Image)
}

func (s *Service) removeFile(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove image", "key", key, "error", err)
	}
}

// detectImage fully decodes data and returns the registered format name.
// Images whose header declares more than maxPixels pixels are rejected
// before any pixel data is decoded.
func detectImage(data []byte, maxPixels int64) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidImage)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); maxPixels > 0 && pixels > maxPixels {
		return "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, maxPixels)
	}

	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return format, nil
}

// imageFilename falls back to the detected format when the client's filename
// has no extension.
func imageFilename(filename, format string) string {
	if ext := path.Ext(strings.ReplaceAll(filename, "\\", "/")); len(ext) > 1 {
		return filename
	}
	if format == "jpeg" {
		format = "jpg"
	}
	return "image." + format
}
