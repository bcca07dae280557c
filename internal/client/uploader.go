package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotAnImage is returned for files that are not images; nothing is uploaded
var ErrNotAnImage = errors.New("not an image file")

// ImageAPI sends image bytes to the alert API
type ImageAPI interface {
	UploadImage(ctx context.Context, fileName, contentType string, r io.Reader) (string, error)
}

// Uploader checks and uploads alert photos
type Uploader struct {
	api ImageAPI
}

func NewUploader(api ImageAPI) *Uploader {
	return &Uploader{api: api}
}

// Upload sends the image at path and returns its public URL.
// Non-image files fail with ErrNotAnImage before any network call.
func (u *Uploader) Upload(ctx context.Context, path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrNotAnImage, filepath.Base(path), mtype.String())
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	defer f.Close()

	return u.api.UploadImage(ctx, filepath.Base(path), mtype.String(), f)
}
