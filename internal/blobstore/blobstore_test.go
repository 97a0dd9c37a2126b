package blobstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"my photo.png", "my_photo.png"},
		{"../../etc/passwd", "____etc_passwd"},
		{".hidden", "_hidden"},
		{"a/b\\c.jpg", "a_b_c.jpg"},
		{"صورة.png", "____.png"},
		{"name..png", "name_png"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilenameNeverTraverses(t *testing.T) {
	for _, in := range []string{"..", "../x", "..\\x", "a/../../b", "....//secret"} {
		got := SanitizeFilename(in)
		if strings.Contains(got, "..") || strings.ContainsAny(got, `/\`) {
			t.Errorf("SanitizeFilename(%q) = %q still contains traversal characters", in, got)
		}
	}
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int64
		wantErr     error
	}{
		{"valid jpeg", "a.jpg", "image/jpeg", 1024, nil},
		{"valid png uppercase ext", "a.PNG", "image/png", 1024, nil},
		{"valid webp", "a.webp", "image/webp", MaxUploadSize, nil},
		{"pdf rejected", "a.pdf", "application/pdf", 1024, ErrFileType},
		{"svg rejected", "a.svg", "image/svg+xml", 1024, ErrFileType},
		{"mime ok but extension wrong", "a.exe", "image/png", 1024, ErrExtension},
		{"no extension", "a", "image/png", 1024, ErrExtension},
		{"too large", "a.png", "image/png", MaxUploadSize + 1, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.contentType, tt.size)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateUpload() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLocalStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	url, err := store.Put(context.Background(), "photo.png", "image/png", strings.NewReader("fake-png"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "/uploads/photo.png" {
		t.Errorf("url = %q, want /uploads/photo.png", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "photo.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "fake-png" {
		t.Errorf("stored content = %q", data)
	}
}

func TestLocalStorePutRejectsPathEscape(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Put(context.Background(), "../escape.png", "image/png", strings.NewReader("x")); err == nil {
		t.Error("path escape accepted, want error")
	}
}

func TestLocalStorePutDuplicateName(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx := context.Background()
	if _, err := store.Put(ctx, "a.png", "image/png", strings.NewReader("one")); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(ctx, "a.png", "image/png", strings.NewReader("two")); err == nil {
		t.Error("overwrite of existing blob accepted, want error")
	}
}
