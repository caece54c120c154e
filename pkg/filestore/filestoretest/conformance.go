// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package filestoretest provides a shared conformance test suite for
// filestore.Store implementations. Each backend should call
// RunConformanceTests from its own _test.go file.
package filestoretest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/leseb/docprep/pkg/filestore"
)

// RunConformanceTests exercises a Store implementation against the shared
// contract. The newStore function is called once per sub-test to provide an
// isolated store instance; bucket is the bucket every sub-test writes to.
func RunConformanceTests(t *testing.T, bucket string, newStore func(t *testing.T) filestore.Store) {
	t.Helper()

	t.Run("PutAndGet", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		content := []byte("<html><body>hello</body></html>")
		if err := store.PutObject(ctx, bucket, "directives/a.html", content, "text/html"); err != nil {
			t.Fatalf("PutObject: %v", err)
		}

		got, err := store.GetObject(ctx, bucket, "directives/a.html")
		if err != nil {
			t.Fatalf("GetObject: %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("content mismatch: got %q, want %q", got, content)
		}
	})

	t.Run("BinaryContent", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		content := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff, 0xfe, 0x0a}
		if err := store.PutObject(ctx, bucket, "bin/scan.pdf", content, "application/pdf"); err != nil {
			t.Fatalf("PutObject: %v", err)
		}
		got, err := store.GetObject(ctx, bucket, "bin/scan.pdf")
		if err != nil {
			t.Fatalf("GetObject: %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("binary content mismatch: got %v, want %v", got, content)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		if err := store.PutObject(ctx, bucket, "out/report.md", []byte("v1"), "text/markdown"); err != nil {
			t.Fatalf("first PutObject: %v", err)
		}
		if err := store.PutObject(ctx, bucket, "out/report.md", []byte("v2"), "text/markdown"); err != nil {
			t.Fatalf("second PutObject: %v", err)
		}
		got, err := store.GetObject(ctx, bucket, "out/report.md")
		if err != nil {
			t.Fatalf("GetObject: %v", err)
		}
		if string(got) != "v2" {
			t.Errorf("expected overwritten content v2, got %q", got)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		_, err := store.GetObject(ctx, bucket, "missing/nothing.pdf")
		if !errors.Is(err, filestore.ErrObjectNotFound) {
			t.Errorf("GetObject expected ErrObjectNotFound, got: %v", err)
		}
	})

	t.Run("ListPrefix", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		keys := []string{"directives/c.xml", "directives/a.html", "other/x.txt", "directives/b.pdf", "directives/sub/d.docx"}
		for _, k := range keys {
			if err := store.PutObject(ctx, bucket, k, []byte(k), ""); err != nil {
				t.Fatalf("PutObject(%s): %v", k, err)
			}
		}

		objs, err := store.ListObjects(ctx, bucket, "directives/", 0)
		if err != nil {
			t.Fatalf("ListObjects: %v", err)
		}
		want := []string{"directives/a.html", "directives/b.pdf", "directives/c.xml", "directives/sub/d.docx"}
		if len(objs) != len(want) {
			t.Fatalf("expected %d objects, got %d: %+v", len(want), len(objs), objs)
		}
		for i, o := range objs {
			if o.Key != want[i] {
				t.Errorf("object %d: got key %q, want %q", i, o.Key, want[i])
			}
			if o.Size != int64(len(o.Key)) {
				t.Errorf("object %s: size %d, want %d", o.Key, o.Size, len(o.Key))
			}
		}
	})

	t.Run("ListLimit", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			key := fmt.Sprintf("batch/doc%d.txt", i)
			if err := store.PutObject(ctx, bucket, key, []byte("x"), "text/plain"); err != nil {
				t.Fatalf("PutObject[%d]: %v", i, err)
			}
		}

		objs, err := store.ListObjects(ctx, bucket, "batch/", 3)
		if err != nil {
			t.Fatalf("ListObjects: %v", err)
		}
		if len(objs) != 3 {
			t.Errorf("expected 3 objects with limit=3, got %d", len(objs))
		}
	})

	t.Run("ListEmpty", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())

		objs, err := store.ListObjects(context.Background(), bucket, "nothing-here/", 0)
		if err != nil {
			t.Fatalf("ListObjects: %v", err)
		}
		if len(objs) != 0 {
			t.Errorf("expected no objects, got %+v", objs)
		}
	})

	t.Run("EmptyKeyRejected", func(t *testing.T) {
		store := newStore(t)
		defer store.Close(context.Background())

		if err := store.PutObject(context.Background(), bucket, "", []byte("x"), ""); err == nil {
			t.Error("PutObject with empty key should fail")
		}
	})
}
