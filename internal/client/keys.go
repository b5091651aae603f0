package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

// imageExts is the set of stored image formats. SVG is left out since it can
// carry script.
var imageExts = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageExt returns the extension stored for contentType.
func ImageExt(contentType string) (string, bool) {
	ext, ok := imageExts[contentType]
	return ext, ok
}

// ImageKey builds a unique object key: posts/{year}/{month}/{uuid}{ext}. The
// extension follows contentType only.
func ImageKey(contentType string, now time.Time) (string, error) {
	ext, ok := ImageExt(contentType)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, contentType)
	}
	return fmt.Sprintf("posts/%s/%s%s", now.UTC().Format("2006/01"), uuid.NewString(), ext), nil
}
