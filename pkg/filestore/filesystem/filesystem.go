// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leseb/docprep/pkg/filestore"
)

func init() {
	filestore.Providers.Register("filesystem", func(_ context.Context, params map[string]string) (filestore.Store, error) {
		return New(params["base_dir"])
	})
}

// compile-time check
var _ filestore.Store = (*Store)(nil)

// Store implements filestore.Store on a local directory tree.
//
// Layout:
//
//	<baseDir>/<bucket>/<key>
//
// An empty bucket maps objects directly under baseDir, which is how a plain
// local file is addressed.
type Store struct {
	baseDir string
}

// New creates a filesystem-backed Store, creating baseDir if it does not exist.
func New(baseDir string) (*Store, error) {
	if baseDir == "" {
		baseDir = "."
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir %s: %w", baseDir, err)
	}
	return &Store{baseDir: baseDir}, nil
}

// objectPath resolves bucket/key under baseDir, rejecting keys that would
// escape the bucket directory.
func (s *Store) objectPath(bucket, key string) (string, error) {
	if key == "" || filepath.IsAbs(key) || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("key %q: %w", key, filestore.ErrInvalidKey)
	}
	if bucket != "" && !filepath.IsLocal(bucket) {
		return "", fmt.Errorf("bucket %q: %w", bucket, filestore.ErrInvalidKey)
	}
	return filepath.Join(s.baseDir, bucket, filepath.FromSlash(key)), nil
}

// GetObject reads the object from disk.
func (s *Store) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	p, err := s.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("object %s/%s: %w", bucket, key, filestore.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// PutObject writes the object atomically (temp file + rename).
func (s *Store) PutObject(_ context.Context, bucket, key string, content []byte, _ string) error {
	p, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("rename object: %w", err)
	}
	return nil
}

// ListObjects walks the bucket directory and returns regular files whose
// slash-separated key starts with prefix.
func (s *Store) ListObjects(ctx context.Context, bucket, prefix string, limit int) ([]filestore.Object, error) {
	if bucket != "" && !filepath.IsLocal(bucket) {
		return nil, fmt.Errorf("bucket %q: %w", bucket, filestore.ErrInvalidKey)
	}
	root := filepath.Join(s.baseDir, bucket)

	var out []filestore.Object
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == root {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() || strings.HasSuffix(p, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, filestore.Object{
			Bucket:       bucket,
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the filesystem store.
func (s *Store) Close(_ context.Context) error {
	return nil
}
