package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hugh/recipe-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SaveExistsDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root, "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	key := "uploads/recipe/abc.jpg"
	require.NoError(t, store.Save(ctx, key, bytes.NewReader([]byte("data")), "image/jpeg"))

	content, err := os.ReadFile(filepath.Join(root, "uploads", "recipe", "abc.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	ok, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, key))
	ok, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	// second delete is a no-op
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocal_SaveOverwrites(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a.png", bytes.NewReader([]byte("one")), ""))
	require.NoError(t, store.Save(ctx, "a.png", bytes.NewReader([]byte("two")), ""))

	p, err := store.Path("a.png")
	require.NoError(t, err)
	content, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "two", string(content))
}

func TestLocal_RejectsTraversal(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)

	for _, key := range []string{"", "/", "../etc/passwd", "uploads/../../x"} {
		err := store.Save(context.Background(), key, bytes.NewReader(nil), "")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestLocal_URL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"/media/", "/media/uploads/recipe/x.jpg"},
		{"/media", "/media/uploads/recipe/x.jpg"},
		{"https://cdn.example.com/m/", "https://cdn.example.com/m/uploads/recipe/x.jpg"},
	}
	for _, tt := range tests {
		store, err := NewLocal(t.TempDir(), tt.base)
		require.NoError(t, err)
		assert.Equal(t, tt.want, store.URL("uploads/recipe/x.jpg"))
	}
}

func TestObjectURLs(t *testing.T) {
	assert.Equal(t,
		"https://media.s3.eu-west-1.amazonaws.com/uploads/recipe/x.jpg",
		s3ObjectURL(S3Options{Bucket: "media", Region: "eu-west-1"}, "uploads/recipe/x.jpg"))
	assert.Equal(t,
		"http://localhost:9000/media/uploads/recipe/x.jpg",
		s3ObjectURL(S3Options{Bucket: "media", Endpoint: "http://localhost:9000/"}, "uploads/recipe/x.jpg"))
	assert.Equal(t,
		"https://storage.googleapis.com/media/uploads/recipe/x.jpg",
		gcsObjectURL(GCSOptions{Bucket: "media"}, "uploads/recipe/x.jpg"))
	assert.Equal(t,
		"https://img.example.com/uploads/recipe/x.jpg",
		gcsObjectURL(GCSOptions{Bucket: "media", BaseURL: "https://img.example.com"}, "uploads/recipe/x.jpg"))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, &config.StorageConfig{Backend: "local", MediaRoot: t.TempDir(), MediaURL: "/media/"})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, store)

	_, err = New(ctx, &config.StorageConfig{Backend: "ftp"})
	assert.ErrorIs(t, err, ErrUnsupportedBackend)

	_, err = New(ctx, &config.StorageConfig{Backend: "s3"})
	assert.Error(t, err)

	_, err = New(ctx, &config.StorageConfig{Backend: "gcs"})
	assert.Error(t, err)
}
