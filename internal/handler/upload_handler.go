package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/internal/observability"
	"github.com/quocanhngo/agrosynth/pkg/storage"
)

// Max upload size: 10MB
const maxUploadSize = 10 << 20

// UploadHandler handles alert photo uploads
type UploadHandler struct {
	store   storage.ImageStore
	metrics *observability.Metrics
}

// NewUploadHandler creates a new upload handler. A nil store disables uploads.
func NewUploadHandler(store storage.ImageStore, metrics *observability.Metrics) *UploadHandler {
	return &UploadHandler{store: store, metrics: metrics}
}

// UploadImage godoc
// @Summary Upload an alert photo
// @Description Stores an image under a timestamp key and returns its public URL. Existing objects are never overwritten.
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image to upload"
// @Success 201 {object} model.UploadResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 413 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /upload [post]
func (h *UploadHandler) UploadImage(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "Image upload is not available"})
		return
	}

	// Limit request body size, leaving room for the multipart envelope
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize+64<<10)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.metrics.Upload("rejected")
			c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{Error: "File too large (max 10MB)"})
			return
		}
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "File is required", Message: err.Error()})
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		h.metrics.Upload("rejected")
		c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{Error: "File too large (max 10MB)"})
		return
	}

	contentType, err := imageContentType(file, header)
	if err != nil {
		h.metrics.Upload("rejected")
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Unsupported file type", Message: err.Error()})
		return
	}

	result, err := h.store.UploadImage(c.Request.Context(), file, header.Size, header.Filename, contentType)
	if err != nil {
		h.metrics.Upload("error")
		if errors.Is(err, storage.ErrObjectExists) {
			c.JSON(http.StatusConflict, model.ErrorResponse{Error: "Image already exists", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to upload file", Message: err.Error()})
		return
	}

	h.metrics.Upload("success")
	c.JSON(http.StatusCreated, model.UploadResponse{
		URL:      result.URL,
		Key:      result.Key,
		FileName: result.FileName,
		FileSize: result.FileSize,
		MimeType: result.MimeType,
	})
}

// imageContentType checks both the declared and the sniffed type are images,
// then rewinds the file. The sniffed type is returned.
func imageContentType(file multipart.File, header *multipart.FileHeader) (string, error) {
	declared := strings.ToLower(header.Header.Get("Content-Type"))
	if declared != "" && !strings.HasPrefix(declared, "image/") {
		return "", errors.New("only images are accepted, got " + declared)
	}

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", errors.New("file content is " + detected.String() + ", not an image")
	}
	return detected.String(), nil
}
