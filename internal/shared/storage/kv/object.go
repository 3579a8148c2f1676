package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"career-backend/internal/shared/storage/object"
)

// ObjectBackedStore persists each key as a JSON object in an object store
// (local directory or S3 bucket).
type ObjectBackedStore struct {
	Objects object.ObjectStore
	Prefix  string
}

// NewObjectBackedStore wraps an object store; keys land under prefix.
func NewObjectBackedStore(objects object.ObjectStore, prefix string) *ObjectBackedStore {
	return &ObjectBackedStore{Objects: objects, Prefix: strings.Trim(prefix, "/")}
}

func (s *ObjectBackedStore) objectKey(key string) string {
	return path.Join(s.Prefix, key+".json")
}

func (s *ObjectBackedStore) Get(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Objects.Open(ctx, s.objectKey(key))
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kv object get %s: %w", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("kv object read %s: %w", key, err)
	}
	return data, nil
}

func (s *ObjectBackedStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.Objects.SaveWithKey(ctx, s.objectKey(key), "application/json", bytes.NewReader(value)); err != nil {
		return fmt.Errorf("kv object set %s: %w", key, err)
	}
	return nil
}

func (s *ObjectBackedStore) Delete(ctx context.Context, key string) error {
	if err := s.Objects.Delete(ctx, s.objectKey(key)); err != nil {
		return fmt.Errorf("kv object delete %s: %w", key, err)
	}
	return nil
}

var _ Store = (*ObjectBackedStore)(nil)
