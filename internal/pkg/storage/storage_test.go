package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildObjectKey(t *testing.T) {
	key := BuildObjectKey("banners", "My Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "banners/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	// keys never collide even for identical inputs
	assert.NotEqual(t, key, BuildObjectKey("banners", "My Photo.JPG"))

	bare := BuildObjectKey("", "a.png")
	assert.False(t, strings.Contains(bare, "/"))
}

func TestLocalStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocal(dir, "http://localhost:2333/")
	require.NoError(t, err)

	url, err := ls.Store(context.Background(), "banners/pic.png", []byte("data"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:2333/uploads/pic.png", url)

	content, err := os.ReadFile(filepath.Join(dir, "pic.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))
}

func TestStoreOrDefaultFallsBack(t *testing.T) {
	url := StoreOrDefault(context.Background(), nil, nil, "k", []byte("x"), "image/png", "https://cdn/default.png")
	assert.Equal(t, "https://cdn/default.png", url)

	// empty uploads never reach the backend
	dir := t.TempDir()
	ls, err := NewLocal(dir, "http://localhost")
	require.NoError(t, err)
	url = StoreOrDefault(context.Background(), ls, nil, "k.png", nil, "image/png", "https://cdn/default.png")
	assert.Equal(t, "https://cdn/default.png", url)
}

func TestS3PublicURL(t *testing.T) {
	s, err := NewS3(S3Options{Region: "us-east-1", Bucket: "media", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)
	assert.Equal(t, "https://media.s3.us-east-1.amazonaws.com/x/y.png", s.publicURL("x/y.png"))

	s, err = NewS3(S3Options{Bucket: "media", Endpoint: "https://minio.test", PathStyle: true})
	require.NoError(t, err)
	assert.Equal(t, "https://minio.test/media/x.png", s.publicURL("x.png"))

	s, err = NewS3(S3Options{Bucket: "media", Region: "r", CustomDomain: "https://cdn.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x.png", s.publicURL("x.png"))

	_, err = NewS3(S3Options{})
	assert.Error(t, err)
}
