// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leseb/docprep/pkg/core/services"
	"github.com/leseb/docprep/pkg/filestore"
	"github.com/leseb/docprep/pkg/filestore/filesystem"
)

// source is the store, bucket and key an argument resolves to.
type source struct {
	store  filestore.Store
	bucket string
	key    string
	owned  bool // store was opened for this argument and must be closed
}

func (s *source) Close(ctx context.Context) {
	if s.owned {
		s.store.Close(ctx)
	}
}

// resolveSource maps "s3://bucket/key" onto the configured store when it is
// S3 (or a fresh S3 store otherwise), and a local path onto a filesystem
// store rooted at the file's directory.
func resolveSource(ctx context.Context, svc *services.Services, arg string) (*source, error) {
	if bucket, key, ok := filestore.SplitURI(arg); ok {
		if cfg.Storage.Provider == "s3" {
			return &source{store: svc.Store, bucket: bucket, key: key}, nil
		}
		store, err := filestore.Providers.New(ctx, "s3", cfg.Storage.Params())
		if err != nil {
			return nil, err
		}
		return &source{store: store, bucket: bucket, key: key, owned: true}, nil
	}

	abs, err := filepath.Abs(arg)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", arg)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", arg)
	}
	store, err := filesystem.New(filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	return &source{store: store, key: filepath.Base(abs), owned: true}, nil
}
