// Package storage provides object storage abstractions for the data and
// index files the planner inspects.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	// Path is the object path relative to the store root.
	Path string

	// Size is the object length in bytes.
	Size int64
}

// ObjectStorage abstracts the object store holding table data files and
// index sidecars. Implementations include S3 and local filesystem.
type ObjectStorage interface {
	// Upload uploads a local file to object storage.
	Upload(ctx context.Context, localPath, objectPath string) error

	// Download downloads an object to a local file. Returns
	// ErrObjectNotFound when the object does not exist.
	Download(ctx context.Context, objectPath, localPath string) error

	// Delete removes an object from storage.
	Delete(ctx context.Context, objectPath string) error

	// Exists checks whether an object exists.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// ListObjects returns path and size for every object under the prefix.
	// Used by the storage-backed file lister.
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
