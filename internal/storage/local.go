package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects under a root directory on disk and serves them
// from a static route mounted at publicBase.
type LocalStore struct {
	root       string
	publicBase string
}

// NewLocalStore returns a LocalStore rooted at dir. publicBase is the URL
// prefix the objects are served from, e.g. "/media".
func NewLocalStore(dir, publicBase string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStore{
		root:       dir,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Root returns the directory objects are written under.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Put(_ context.Context, key string, data []byte) (string, error) {
	path, err := s.abs(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *LocalStore) Remove(_ context.Context, key string) error {
	path, err := s.abs(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStore) URL(key string) string {
	return s.publicBase + "/" + strings.TrimLeft(key, "/")
}

// abs resolves key under the root and rejects traversal outside it.
func (s *LocalStore) abs(key string) (string, error) {
	cleaned := filepath.Clean("/" + key)
	path := filepath.Join(s.root, cleaned)
	if !strings.HasPrefix(path, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return path, nil
}
