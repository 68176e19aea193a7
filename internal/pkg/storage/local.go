package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes objects under a static directory served by the app.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir, baseURL string) (*LocalStorage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Store writes the object to disk and returns the URL it will be served at.
func (l *LocalStorage) Store(_ context.Context, key string, data []byte, _ string) (string, error) {
	// Keys may carry a prefix; flatten it so nothing escapes the directory.
	name := filepath.Base(key)
	dst := filepath.Join(l.dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("local storage write %s: %w", name, err)
	}
	return l.baseURL + "/uploads/" + name, nil
}
