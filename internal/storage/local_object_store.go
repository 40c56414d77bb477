package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type LocalObjectStore struct {
	baseDir string
}

var _ ObjectStore = (*LocalObjectStore)(nil)

func NewLocalObjectStore(dir string) (*LocalObjectStore, error) {
	baseDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", dir, err)
	}

	return &LocalObjectStore{baseDir: baseDir}, nil
}

func (s *LocalObjectStore) Fetch(ctx context.Context, key string) (string, func(), error) {
	path := localStorageFullpath(s.baseDir, key)

	info, err := os.Stat(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("failed to open %s: path is a directory", path)
	}

	return path, func() {}, nil
}

func localStorageFullpath(baseDir, key string) string {
	if filepath.IsAbs(key) {
		return filepath.Clean(key)
	}
	return filepath.Join(baseDir, key)
}
