// Package storage reads and writes classifier artifacts through a small
// FileStore interface, so a model can live on local disk or in an
// S3-compatible object store without the loader caring which.
//
// Locations are given as plain filesystem paths or as s3://bucket/key URIs;
// [Resolve] turns either into a store plus the path inside it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidPath is returned for paths that escape the store root or
	// locations that cannot be parsed.
	ErrInvalidPath = errors.New("storage: invalid path")

	// ErrTooLarge is returned by [ReadFile] when the object exceeds the
	// size limit.
	ErrTooLarge = errors.New("storage: object too large")
)

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file for reading.
	// The caller must close the returned ReadCloser when done.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing, truncating any existing file.
	// The caller must close the returned WriteCloser to flush data.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// ReadFile reads the whole named file. If limit > 0 and the file is larger
// than limit bytes, ErrTooLarge is returned.
func ReadFile(ctx context.Context, fs FileStore, name string, limit int64) ([]byte, error) {
	rc, err := fs.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, limit)
	}
	return data, nil
}

// WriteFile writes data to the named file.
func WriteFile(ctx context.Context, fs FileStore, name string, data []byte) error {
	w, err := fs.Write(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	return w.Close()
}

// Scheme identifies the backend of a [Location].
type Scheme string

const (
	SchemeFile Scheme = "file"
	SchemeS3   Scheme = "s3"
)

// Location is a parsed artifact location.
type Location struct {
	Scheme Scheme
	// Bucket is set for s3 locations.
	Bucket string
	// Key is the object key for s3 locations and the filesystem path for
	// file locations.
	Key string
}

func (l Location) String() string {
	if l.Scheme == SchemeS3 {
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return l.Key
}

// Ext returns the lower-case extension of the location's key.
func (l Location) Ext() string {
	return strings.ToLower(path.Ext(l.Key))
}

// ParseLocation parses s3://bucket/key URIs and plain filesystem paths
// (optionally prefixed with file://).
func ParseLocation(s string) (Location, error) {
	switch {
	case strings.HasPrefix(s, "s3://"):
		rest := strings.TrimPrefix(s, "s3://")
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
			return Location{}, fmt.Errorf("%w: %q: want s3://bucket/key", ErrInvalidPath, s)
		}
		return Location{Scheme: SchemeS3, Bucket: bucket, Key: key}, nil
	case strings.Contains(s, "://") && !strings.HasPrefix(s, "file://"):
		scheme, _, _ := strings.Cut(s, "://")
		return Location{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidPath, scheme)
	}
	p := strings.TrimPrefix(s, "file://")
	if p == "" {
		return Location{}, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	return Location{Scheme: SchemeFile, Key: p}, nil
}

// Resolve opens a store for loc and returns it with the path of the
// artifact inside the store. newS3 is called for s3 locations and may be
// nil when only local paths are expected.
func Resolve(loc Location, newS3 func(bucket string) (S3Client, error)) (FileStore, string, error) {
	switch loc.Scheme {
	case SchemeS3:
		if newS3 == nil {
			return nil, "", fmt.Errorf("%w: s3 location %s without an s3 client", ErrInvalidPath, loc)
		}
		client, err := newS3(loc.Bucket)
		if err != nil {
			return nil, "", err
		}
		return NewS3(client, loc.Bucket, ""), loc.Key, nil
	case SchemeFile:
		abs, err := filepath.Abs(loc.Key)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrInvalidPath, err)
		}
		return NewLocal(filepath.Dir(abs)), filepath.Base(abs), nil
	}
	return nil, "", fmt.Errorf("%w: unknown scheme %q", ErrInvalidPath, loc.Scheme)
}
