package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/eventface/pkg/dto"
)

const maxImageSize = 10 << 20

// Upload folders clients may write to.
const (
	FolderLogos    = "logos"
	FolderProfiles = "profiles"
	FolderEvents   = "events"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

var (
	errImageTooLarge    = errors.New("image exceeds 10MB")
	errUnsupportedImage = errors.New("unsupported image type")
)

type UploadHandler struct {
	blobs BlobStore
}

func NewUploadHandler(blobs BlobStore) *UploadHandler {
	return &UploadHandler{blobs: blobs}
}

// Upload stores a multipart "image" under <folder>/<random>.<ext> and returns its URL.
func (h *UploadHandler) Upload(c *gin.Context) {
	folder := c.DefaultPostForm("folder", FolderEvents)
	switch folder {
	case FolderLogos, FolderProfiles, FolderEvents:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder must be one of logos, profiles, events"})
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}

	key, err := storeImage(c.Request.Context(), h.blobs, folder, header)
	if err != nil {
		writeImageError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UploadResponse{Key: key, URL: h.blobs.URL(key)})
}

// storeImage sniffs the uploaded file, rejects non-images and writes it to the blob store.
func storeImage(ctx context.Context, blobs BlobStore, folder string, header *multipart.FileHeader) (string, error) {
	if header.Size > maxImageSize {
		return "", errImageTooLarge
	}
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxImageSize {
		return "", errImageTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", errUnsupportedImage, contentType)
	}

	key := folder + "/" + strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	if err := blobs.PutObject(ctx, key, data, contentType); err != nil {
		return "", err
	}
	return key, nil
}

func writeImageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errImageTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, errUnsupportedImage):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	default:
		slog.Error("store image", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store image failed"})
	}
}
