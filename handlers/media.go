package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"spotfinder/db"
	"spotfinder/imagehost"
	"spotfinder/middleware"
	"spotfinder/models"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MediaStore interface {
	Create(ctx context.Context, m models.Media) (models.Media, error)
	Get(ctx context.Context, id int64) (models.Media, error)
	ListBySpot(ctx context.Context, spotID int64) ([]models.Media, error)
	Delete(ctx context.Context, id int64) error
}

type ImageHost interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type MediaHandler struct {
	media    MediaStore
	host     ImageHost
	folder   string
	maxBytes int64
	log      *zap.Logger
}

func NewMediaHandler(media MediaStore, host ImageHost, folder string, maxBytes int64, log *zap.Logger) *MediaHandler {
	return &MediaHandler{media: media, host: host, folder: folder, maxBytes: maxBytes, log: log}
}

func (h *MediaHandler) Routes(r gin.IRouter, requireAuth, limit gin.HandlerFunc) {
	g := r.Group("/media")
	g.POST("/upload", requireAuth, limit, h.Upload)
	g.GET("/spot/:spotId", h.ListBySpot)
	g.DELETE("/delete/:id", requireAuth, h.Delete)
}

type uploadResponse struct {
	models.Media
	URL string `json:"url"`
}

// Upload stores the multipart "image" for the spot in "spotId". The file
// is sniffed and must be an image within the size limit.
func (h *MediaHandler) Upload(c *gin.Context) {
	// multipart framing gets a little headroom on top of the file limit
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload"})
		return
	}
	if header.Size > h.maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large"})
		return
	}

	spotID, err := strconv.ParseInt(c.PostForm("spotId"), 10, 64)
	if err != nil || spotID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "spotId is required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload"})
		return
	}
	if int64(len(data)) > h.maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large"})
		return
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is not an image"})
		return
	}

	id, _ := middleware.CurrentUser(c)
	ctx := c.Request.Context()
	key := imagehost.NewKey(h.folder, mtype.Extension())

	url, err := h.host.Upload(ctx, key, bytes.NewReader(data), mtype.String())
	if err != nil {
		h.log.Error("upload image", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	m, err := h.media.Create(ctx, models.Media{SpotID: spotID, ImageURL: url, StorageKey: key, UploadedBy: id.UserID})
	if err != nil {
		h.log.Error("save media", zap.Int64("spot_id", spotID), zap.Error(err))
		if delErr := h.host.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			h.log.Warn("orphaned image", zap.String("key", key), zap.Error(delErr))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save media"})
		return
	}

	c.JSON(http.StatusCreated, uploadResponse{Media: m, URL: m.ImageURL})
}

func (h *MediaHandler) ListBySpot(c *gin.Context) {
	spotID, ok := idParam(c, "spotId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spot id"})
		return
	}

	media, err := h.media.ListBySpot(c.Request.Context(), spotID)
	if err != nil {
		h.log.Error("list media", zap.Int64("spot_id", spotID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch media"})
		return
	}
	c.JSON(http.StatusOK, media)
}

// Delete removes the row first; removing the hosted image is best-effort.
func (h *MediaHandler) Delete(c *gin.Context) {
	mediaID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid media id"})
		return
	}
	id, _ := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	m, err := h.media.Get(ctx, mediaID)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Media not found"})
		return
	}
	if err != nil {
		h.log.Error("get media", zap.Int64("media_id", mediaID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete media"})
		return
	}
	if m.UploadedBy != id.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this media"})
		return
	}

	err = h.media.Delete(ctx, mediaID)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Media not found"})
		return
	}
	if err != nil {
		h.log.Error("delete media", zap.Int64("media_id", mediaID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete media"})
		return
	}

	if err := h.host.Delete(context.WithoutCancel(ctx), m.StorageKey); err != nil {
		h.log.Warn("remote image delete failed", zap.String("key", m.StorageKey), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Media deleted successfully"})
}
