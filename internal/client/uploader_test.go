package client

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

type recordingImageAPI struct {
	fileName    string
	contentType string
	body        []byte
	url         string
}

func (r *recordingImageAPI) UploadImage(_ context.Context, fileName, contentType string, body io.Reader) (string, error) {
	r.fileName = fileName
	r.contentType = contentType
	data, err := io.ReadAll(body)
	r.body = data
	return r.url, err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestUploader_Upload(t *testing.T) {
	api := &recordingImageAPI{url: "http://localhost:9000/alert-images/1.png"}
	path := writeFile(t, "field.png", pngBytes)

	url, err := NewUploader(api).Upload(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, api.url, url)
	assert.Equal(t, "field.png", api.fileName)
	assert.Equal(t, "image/png", api.contentType)
	assert.Equal(t, pngBytes, api.body)
}

func TestUploader_RejectsNonImage(t *testing.T) {
	api := &recordingImageAPI{}
	path := writeFile(t, "notes.png", []byte("just some text"))

	_, err := NewUploader(api).Upload(t.Context(), path)
	assert.ErrorIs(t, err, ErrNotAnImage)
	assert.Empty(t, api.fileName, "nothing is uploaded")
}

func TestUploader_MissingFile(t *testing.T) {
	_, err := NewUploader(&recordingImageAPI{}).Upload(t.Context(), filepath.Join(t.TempDir(), "gone.png"))
	assert.Error(t, err)
}
