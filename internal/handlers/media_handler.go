package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/tawasol-app/backend/internal/storage"
)

const (
	maxImageSize = 5 << 20  // 5 MB
	maxVideoSize = 50 << 20 // 50 MB
)

type MediaHandler struct {
	store storage.Store
}

func NewMediaHandler(store storage.Store) *MediaHandler {
	return &MediaHandler{store: store}
}

// RegisterMediaRoutes mounts the upload endpoint.
func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.POST("/media", h.Upload)
}

// Upload accepts a multipart image or video, sniffs its real content type
// and stores it under a random key. Images are capped at 5 MB, videos at
// 50 MB.
func (h *MediaHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file field")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to open uploaded file")
	}
	defer src.Close()

	// Sniff the first bytes rather than trusting the client's content type.
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read uploaded file")
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	var mediaType string
	var maxSize int64
	switch {
	case strings.HasPrefix(contentType, "image/"):
		mediaType = "image"
		maxSize = maxImageSize
	case strings.HasPrefix(contentType, "video/"):
		mediaType = "video"
		maxSize = maxVideoSize
	default:
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "Only image and video uploads are allowed")
	}

	if fileHeader.Size > maxSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("%s uploads are limited to %d MB", mediaType, maxSize>>20))
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := uuid.NewString() + ext

	body := io.MultiReader(bytes.NewReader(head), io.LimitReader(src, maxSize-int64(len(head))))
	url, err := h.store.Upload(c.Request().Context(), key, body)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store upload")
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"url":        url,
		"media_type": mediaType,
	})
}
