package recipes_test

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hugh/recipe-api/internal/recipes"
	"github.com/hugh/recipe-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachImage(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.TestContext(t)
	user := testutil.CreateTestUser(t, f.db)
	recipe := testutil.CreateTestRecipe(t, f.db, user.ID, "")

	updated, err := f.svc.AttachImage(ctx, user.ID, recipe.ID, "Photo.JPG", bytes.NewReader(testutil.JPEGBytes(t)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(updated.Image, "uploads/recipe/"))
	assert.True(t, strings.HasSuffix(updated.Image, ".jpg"))

	p, err := f.store.Path(updated.Image)
	require.NoError(t, err)
	_, err = os.Stat(p)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(f.store.Root(), "uploads", "recipe"), filepath.Dir(p))

	stored, err := f.svc.GetRecipe(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Image, stored.Image)
	assert.Equal(t, "/media/"+updated.Image, f.svc.ImageURL(stored))
}

func TestAttachImage_ReplacesPrevious(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.TestContext(t)
	user := testutil.CreateTestUser(t, f.db)
	recipe := testutil.CreateTestRecipe(t, f.db, user.ID, "")

	first, err := f.svc.AttachImage(ctx, user.ID, recipe.ID, "a.jpg", bytes.NewReader(testutil.JPEGBytes(t)))
	require.NoError(t, err)
	firstKey := first.Image

	second, err := f.svc.AttachImage(ctx, user.ID, recipe.ID, "b.jpg", bytes.NewReader(testutil.JPEGBytes(t)))
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, second.Image)

	exists, err := f.store.Exists(ctx, firstKey)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = f.store.Exists(ctx, second.Image)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAttachImage_RepeatedUploadsKeepOneFile(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.TestContext(t)
	user := testutil.CreateTestUser(t, f.db)
	recipe := testutil.CreateTestRecipe(t, f.db, user.ID, "")

	var last string
	for i := 0; i < 3; i++ {
		updated, err := f.svc.AttachImage(ctx, user.ID, recipe.ID, "photo.jpg", bytes.NewReader(testutil.JPEGBytes(t)))
		require.NoError(t, err)
		last = updated.Image
	}

	entries, err := os.ReadDir(filepath.Join(f.store.Root(), "uploads", "recipe"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(last), entries[0].Name())
}

func TestAttachImage_TooManyPixels(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.TestContext(t)
	user := testutil.CreateTestUser(t, f.db)
	recipe := testutil.CreateTestRecipe(t, f.db, user.ID, "")

	t.Run("default limit", func(t *testing.T) {
		huge := testutil.PNGHeader(t, 20000, 20000)
		_, err := f.svc.AttachImage(ctx, user.ID, recipe.ID, "bomb.png", bytes.NewReader(huge))
		assert.ErrorIs(t, err, recipes.ErrInvalidImage)
	})

	t.Run("configured limit", func(t *testing.T) {
		svc := recipes.NewService(f.db, f.store, testutil.DiscardLogger(), recipes.WithMaxImagePixels(50))

		// 10x10 is 100 pixels
		_, err := svc.AttachImage(ctx, user.ID, recipe.ID, "a.jpg", bytes.NewReader(testutil.JPEGBytes(t)))
		assert.ErrorIs(t, err, recipes.ErrInvalidImage)
	})

	stored, err := f.svc.GetRecipe(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Image)

	entries, err := os.ReadDir(f.store.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAttachImage_ExtensionFromFormat(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.TestContext(t)
	user := testutil.CreateTestUser(t, f.db)
	recipe := testutil.CreateTestRecipe(t, f.db, user.ID, "")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))

	updated, err := f.svc.AttachImage(ctx, user.ID, recipe.ID, "upload", &buf)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(updated.Image, ".png"))
}

func TestAttachImage_Invalid(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.TestContext(t)
	user := testutil.CreateTestUser(t, f.db)
	recipe := testutil.CreateTestRecipe(t, f.db, user.ID, "")

	_, err := f.svc.AttachImage(ctx, user.ID, recipe.ID, "notimage.jpg", strings.NewReader("notimage"))
	assert.ErrorIs(t, err, recipes.ErrInvalidImage)

	_, err = f.svc.AttachImage(ctx, user.ID, recipe.ID, "empty.jpg", strings.NewReader(""))
	assert.ErrorIs(t, err, recipes.ErrInvalidImage)

	stored, err := f.svc.GetRecipe(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Image)

	entries, err := os.ReadDir(f.store.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAttachImage_NotOwned(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.TestContext(t)
	owner := testutil.CreateTestUser(t, f.db)
	other := testutil.CreateTestUser(t, f.db)
	recipe := testutil.CreateTestRecipe(t, f.db, owner.ID, "")

	_, err := f.svc.AttachImage(ctx, other.ID, recipe.ID, "a.jpg", bytes.NewReader(testutil.JPEGBytes(t)))
	assert.ErrorIs(t, err, recipes.ErrRecipeNotFound)
}

func TestRemoveImage(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.TestContext(t)
	user := testutil.CreateTestUser(t, f.db)
	recipe := testutil.CreateTestRecipe(t, f.db, user.ID, "")

	withImage, err := f.svc.AttachImage(ctx, user.ID, recipe.ID, "a.jpg", bytes.NewReader(testutil.JPEGBytes(t)))
	require.NoError(t, err)
	key := withImage.Image

	cleared, err := f.svc.RemoveImage(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Image)
	assert.Empty(t, f.svc.ImageURL(cleared))

	exists, err := f.store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	// removing again is a no-op
	_, err = f.svc.RemoveImage(ctx, user.ID, recipe.ID)
	assert.NoError(t, err)
}
