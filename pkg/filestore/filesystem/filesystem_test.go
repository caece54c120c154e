// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package filesystem_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/leseb/docprep/pkg/filestore"
	"github.com/leseb/docprep/pkg/filestore/filestoretest"
	"github.com/leseb/docprep/pkg/filestore/filesystem"
)

func TestFilesystemConformance(t *testing.T) {
	filestoretest.RunConformanceTests(t, "docs", func(t *testing.T) filestore.Store {
		store, err := filesystem.New(t.TempDir())
		if err != nil {
			t.Fatalf("filesystem.New: %v", err)
		}
		return store
	})
}

func TestFilesystem_EmptyBucketIsBaseDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("local"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := filesystem.New(dir)
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.GetObject(context.Background(), "", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "local" {
		t.Errorf("GetObject() = %q", got)
	}
}

func TestFilesystem_RejectsTraversal(t *testing.T) {
	store, err := filesystem.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, key := range []string{"../escape.txt", "/etc/passwd", "a/../../b"} {
		if _, err := store.GetObject(ctx, "docs", key); !errors.Is(err, filestore.ErrInvalidKey) {
			t.Errorf("GetObject(%q) error = %v, want ErrInvalidKey", key, err)
		}
		if err := store.PutObject(ctx, "docs", key, []byte("x"), ""); !errors.Is(err, filestore.ErrInvalidKey) {
			t.Errorf("PutObject(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
	if _, err := store.ListObjects(ctx, "../up", "", 0); !errors.Is(err, filestore.ErrInvalidKey) {
		t.Errorf("ListObjects with bad bucket error = %v", err)
	}
}
