// internal/app/system/uploads/uploads.go
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// MaxImageSize caps uploaded images.
const MaxImageSize = 5 << 20

// ErrNotImage is returned for uploads whose content type is not image/*.
var ErrNotImage = errors.New("uploaded file is not an image")

// ObjectStore is the part of storage.Store that uploads need.
type ObjectStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Delete(ctx context.Context, path string) error
}

// Info describes a stored upload.
type Info struct {
	Path        string
	FileName    string
	Size        int64
	ContentType string
}

// ObjectPath builds the storage path for an upload:
// <prefix>/YYYY/MM/<8 hex chars>-<sanitized name>.
func ObjectPath(prefix, filename string, now time.Time) string {
	now = now.UTC()
	return path.Join(
		prefix,
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		uuid.New().String()[:8]+"-"+SanitizeFilename(filename),
	)
}

// SaveImage stores an image under prefix and returns where it went.
func SaveImage(ctx context.Context, store ObjectStore, prefix, filename string, r io.Reader, size int64, contentType string) (Info, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return Info{}, ErrNotImage
	}
	if size > MaxImageSize {
		return Info{}, fmt.Errorf("image is larger than %d MB", MaxImageSize>>20)
	}
	p := ObjectPath(prefix, filename, time.Now())
	if err := store.Put(ctx, p, r, &storage.PutOptions{ContentType: contentType}); err != nil {
		return Info{}, fmt.Errorf("failed to upload file: %w", err)
	}
	return Info{Path: p, FileName: filename, Size: size, ContentType: contentType}, nil
}

// Remove deletes a stored object. An empty path is a no-op.
func Remove(ctx context.Context, store ObjectStore, p string) error {
	if p == "" {
		return nil
	}
	return store.Delete(ctx, p)
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with '_'. Long names are cut to 100 bytes, keeping a
// short extension.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "." || filename == "/" {
		filename = ""
	}

	b := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
			b = append(b, c)
		default:
			b = append(b, '_')
		}
	}
	if len(b) == 0 {
		return "file"
	}
	if len(b) > 100 {
		ext := filepath.Ext(string(b))
		if len(ext) > 0 && len(ext) < 10 {
			b = append(b[:100-len(ext)], ext...)
		} else {
			b = b[:100]
		}
	}
	return string(b)
}
