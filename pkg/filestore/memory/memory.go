// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/leseb/docprep/pkg/filestore"
)

func init() {
	filestore.Providers.Register("memory", func(_ context.Context, _ map[string]string) (filestore.Store, error) {
		return New(), nil
	})
}

// compile-time check
var _ filestore.Store = (*Store)(nil)

type object struct {
	content      []byte
	contentType  string
	lastModified time.Time
}

// Store is an in-memory object store. Buckets are created on first write.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]map[string]*object
}

// New creates a new in-memory object store.
func New() *Store {
	return &Store{
		buckets: make(map[string]map[string]*object),
	}
}

// PutObject stores a copy of content, replacing any existing object.
func (s *Store) PutObject(_ context.Context, bucket, key string, content []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("put %s/%q: %w", bucket, key, filestore.ErrInvalidKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[bucket]
	if !ok {
		b = make(map[string]*object)
		s.buckets[bucket] = b
	}
	b[key] = &object{
		content:      append([]byte(nil), content...),
		contentType:  contentType,
		lastModified: time.Now(),
	}
	return nil
}

// GetObject returns a copy of the stored bytes.
func (s *Store) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.buckets[bucket][key]
	if !ok {
		return nil, fmt.Errorf("object %s/%s: %w", bucket, key, filestore.ErrObjectNotFound)
	}
	return append([]byte(nil), obj.content...), nil
}

// ListObjects returns objects under prefix sorted by key.
func (s *Store) ListObjects(_ context.Context, bucket, prefix string, limit int) ([]filestore.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []filestore.Object
	for key, obj := range s.buckets[bucket] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, filestore.Object{
			Bucket:       bucket,
			Key:          key,
			Size:         int64(len(obj.content)),
			LastModified: obj.lastModified,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close(_ context.Context) error {
	return nil
}
