// Package storage abstracts where uploaded files end up. Production uses an
// S3-compatible bucket; development can fall back to the local filesystem.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStorage stores an object under a key and returns its public URL.
type ObjectStorage interface {
	Store(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// BuildObjectKey derives a collision-free object key from the original
// filename, keeping the extension so browsers infer content types.
func BuildObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}

// StoreOrDefault uploads data and returns its URL, falling back to defaultURL
// when the upload fails. Uploads never fail a post save.
func StoreOrDefault(ctx context.Context, s ObjectStorage, logger *zap.Logger, key string, data []byte, contentType, defaultURL string) string {
	if s == nil || len(data) == 0 {
		return defaultURL
	}
	url, err := s.Store(ctx, key, data, contentType)
	if err != nil {
		if logger != nil {
			logger.Warn("object upload failed, using default URL",
				zap.String("key", key),
				zap.Error(err))
		}
		return defaultURL
	}
	return url
}
