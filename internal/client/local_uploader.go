package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalUploader writes images under Dir and returns URLs below PublicPrefix,
// which the server serves statically.
type LocalUploader struct {
	Dir          string
	PublicPrefix string
	now          func() time.Time
}

func NewLocalUploader(dir, publicPrefix string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{
		Dir:          dir,
		PublicPrefix: "/" + strings.Trim(publicPrefix, "/"),
		now:          time.Now,
	}, nil
}

func (u *LocalUploader) UploadImage(ctx context.Context, contentType string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := ImageKey(contentType, u.now())
	if err != nil {
		return "", err
	}
	dst := filepath.Join(u.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}
	return u.PublicPrefix + "/" + key, nil
}
