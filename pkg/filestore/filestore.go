// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package filestore defines the object storage collaborator: fetch a
// document by bucket and key, list keys under a prefix, and write results
// back.
package filestore

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/leseb/docprep/pkg/provider"
)

// ErrObjectNotFound is returned when a bucket/key pair does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that are empty or escape the bucket.
var ErrInvalidKey = errors.New("invalid object key")

// Providers is the registry of object store backend implementations.
// Import implementation packages with blank imports to register them:
//
//	import _ "github.com/leseb/docprep/pkg/filestore/memory"
//	import _ "github.com/leseb/docprep/pkg/filestore/filesystem"
//	import _ "github.com/leseb/docprep/pkg/filestore/s3"
var Providers = provider.NewRegistry[Store]("file_store")

// Object describes a stored object returned by ListObjects.
type Object struct {
	Bucket       string
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is the interface for pluggable object storage backends. Errors from
// the underlying service are wrapped, not replaced.
type Store interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, content []byte, contentType string) error
	// ListObjects returns objects whose key starts with prefix, sorted by
	// key. A limit <= 0 means no limit.
	ListObjects(ctx context.Context, bucket, prefix string, limit int) ([]Object, error)
	Close(ctx context.Context) error
}

// Stem returns the key's base name without its extension:
// "directives/report.v2.pdf" becomes "report.v2".
func Stem(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}

// SplitURI parses "s3://bucket/key" into its parts. ok is false for any
// other form.
func SplitURI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
