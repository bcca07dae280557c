package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type fakeImageStore struct {
	keys    map[string]bool
	err     error
	gotType string
	gotData []byte
}

func (s *fakeImageStore) UploadImage(_ context.Context, r io.Reader, size int64, fileName, contentType string) (*storage.UploadResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	key := "1748779200000.png"
	if s.keys[key] {
		return nil, fmt.Errorf("%w: %s", storage.ErrObjectExists, key)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.keys[key] = true
	s.gotType = contentType
	s.gotData = data
	return &storage.UploadResult{
		URL: "http://minio/alerts/" + key, Key: key, FileName: fileName, FileSize: size, MimeType: contentType,
	}, nil
}

func (s *fakeImageStore) Delete(context.Context, string) error { return nil }

func (s *fakeImageStore) GetPublicURL(key string) string { return "http://minio/alerts/" + key }

func uploadRequest(t *testing.T, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func uploadRouter(store storage.ImageStore) *gin.Engine {
	r := gin.New()
	r.POST("/upload", NewUploadHandler(store, nil).UploadImage)
	return r
}

func TestUploadImage(t *testing.T) {
	store := &fakeImageStore{keys: map[string]bool{}}
	r := uploadRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "hail.png", "image/png", pngBytes))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[model.UploadResponse](t, w)
	assert.Equal(t, "http://minio/alerts/1748779200000.png", resp.URL)
	assert.Equal(t, "hail.png", resp.FileName)
	assert.Equal(t, "image/png", store.gotType)
	assert.Equal(t, pngBytes, store.gotData, "the sniffed file must be rewound before upload")

	// Same key again is refused instead of overwritten.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "hail.png", "image/png", pngBytes))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUploadImage_RejectsNonImages(t *testing.T) {
	r := uploadRouter(&fakeImageStore{keys: map[string]bool{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "notes.pdf", "application/pdf", []byte("%PDF-1.4")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Declared as an image but the content is text.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "fake.png", "image/png", []byte("just some text")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadImage_Errors(t *testing.T) {
	w := httptest.NewRecorder()
	uploadRouter(&fakeImageStore{keys: map[string]bool{}, err: errors.New("bucket offline")}).
		ServeHTTP(w, uploadRequest(t, "a.png", "image/png", pngBytes))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "bucket offline")

	w = httptest.NewRecorder()
	uploadRouter(nil).ServeHTTP(w, uploadRequest(t, "a.png", "image/png", pngBytes))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	big := append(append([]byte{}, pngBytes...), make([]byte, maxUploadSize+1)...)
	uploadRouter(&fakeImageStore{keys: map[string]bool{}}).ServeHTTP(w, uploadRequest(t, "big.png", "image/png", big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
