package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes blobs to a directory on the local filesystem. Files are
// served back by the API under baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a LocalStore rooted at dir. baseURL is the public
// path prefix under which stored files are reachable, e.g. "/uploads".
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Dir returns the storage directory, for wiring the static file server.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Put stores the payload under filename and returns its public URL. The
// filename is expected to be sanitized already; Put rejects anything that
// would escape the storage directory as a second line of defense.
func (s *LocalStore) Put(ctx context.Context, filename, contentType string, data io.Reader) (string, error) {
	if filepath.Base(filename) != filename {
		return "", fmt.Errorf("invalid filename: %s", filename)
	}

	path := filepath.Join(s.dir, filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return "", fmt.Errorf("create blob file: %w", err)
	}

	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close blob: %w", err)
	}

	return s.baseURL + "/" + filename, nil
}
