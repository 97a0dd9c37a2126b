// Package blobstore stores uploaded feature images and serves their public
// URLs. The Store interface keeps the backend swappable; the local
// filesystem implementation is the default.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxUploadSize is the upload size cap in bytes.
const MaxUploadSize = 5 << 20 // 5 MiB

var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Validation errors surfaced to API callers.
var (
	ErrFileType  = errors.New("file type not allowed, must be an image (JPG, PNG, GIF, WEBP)")
	ErrExtension = errors.New("file extension not allowed")
	ErrTooLarge  = fmt.Errorf("file too large, maximum is %dMB", MaxUploadSize/1024/1024)
)

// Store accepts an image payload and returns a publicly fetchable URL.
type Store interface {
	Put(ctx context.Context, filename, contentType string, data io.Reader) (string, error)
}

// ValidateUpload checks content type, extension, and size against the
// allow-lists before a payload is accepted.
func ValidateUpload(filename, contentType string, size int64) error {
	if !allowedMIMETypes[strings.ToLower(contentType)] {
		return ErrFileType
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return ErrExtension
	}
	if size > MaxUploadSize {
		return ErrTooLarge
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeFilename strips path separators, traversal sequences, and any
// character outside [a-zA-Z0-9.-].
func SanitizeFilename(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.ReplaceAll(name, "..", "_")
	if strings.HasPrefix(name, ".") {
		name = "_" + name[1:]
	}
	return name
}
