package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"bike-parking-api-server/internal/api/respond"
	"bike-parking-api-server/internal/apperr"

	"github.com/gin-gonic/gin"
)

// PhotoUploader stores an image and returns the URL to save as a photo reference.
type PhotoUploader interface {
	UploadPhoto(ctx context.Context, file io.Reader, contentType, ext string) (string, error)
}

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UploadHandler struct {
	Uploader PhotoUploader
	MaxBytes int64
}

// multipartOverhead leaves room for the form boundary and part headers around the file.
const multipartOverhead = 64 << 10

// UploadPhoto accepts a multipart "photo" field and returns {url}.
func (h *UploadHandler) UploadPhoto(c *gin.Context) {
	if h.Uploader == nil {
		respond.Error(c, apperr.Unavailable("photo uploads are not configured"))
		return
	}

	if h.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+multipartOverhead)
	}
	header, err := c.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, apperr.Validation("photo is too large", "photo"))
			return
		}
		respond.Error(c, apperr.Validation("a photo file is required", "photo"))
		return
	}
	if h.MaxBytes > 0 && header.Size > h.MaxBytes {
		respond.Error(c, apperr.Validation("photo is too large", "photo"))
		return
	}

	file, err := header.Open()
	if err != nil {
		respond.Error(c, err)
		return
	}
	defer file.Close()

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		respond.Error(c, err)
		return
	}
	contentType := http.DetectContentType(sniff[:n])
	ext, ok := photoExtensions[contentType]
	if !ok {
		respond.Error(c, apperr.Validation("unsupported image type "+contentType, "photo"))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		respond.Error(c, err)
		return
	}

	url, err := h.Uploader.UploadPhoto(c.Request.Context(), file, contentType, ext)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusCreated, gin.H{"url": url})
}
