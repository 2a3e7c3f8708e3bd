package handlers

import (
	"context"
	"errors"
	"net/http"
	"spotfinder/db"
	"spotfinder/middleware"
	"spotfinder/models"
	"spotfinder/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SpotStore interface {
	List(ctx context.Context) ([]models.SpotSummary, error)
	Get(ctx context.Context, id int64) (models.Spot, error)
	Create(ctx context.Context, sp models.Spot) (models.Spot, error)
	Update(ctx context.Context, id, ownerID int64, patch models.SpotPatch) (models.Spot, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

// PointsAwarder credits a user on the identity service.
type PointsAwarder interface {
	AddPoints(ctx context.Context, userID int64, amount int) error
}

type SpotsHandler struct {
	spots   SpotStore
	awarder PointsAwarder
	reward  int
	log     *zap.Logger
}

func NewSpotsHandler(spots SpotStore, awarder PointsAwarder, reward int, log *zap.Logger) *SpotsHandler {
	return &SpotsHandler{spots: spots, awarder: awarder, reward: reward, log: log}
}

func (h *SpotsHandler) Routes(r gin.IRouter, requireAuth gin.HandlerFunc) {
	g := r.Group("/spots")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", requireAuth, h.Create)
	g.PUT("/:id", requireAuth, h.Update)
	g.DELETE("/:id", requireAuth, h.Delete)
}

func (h *SpotsHandler) List(c *gin.Context) {
	spots, err := h.spots.List(c.Request.Context())
	if err != nil {
		h.log.Error("list spots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch spots"})
		return
	}
	c.JSON(http.StatusOK, spots)
}

func (h *SpotsHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spot id"})
		return
	}

	spot, err := h.spots.Get(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Spot not found"})
		return
	}
	if err != nil {
		h.log.Error("get spot", zap.Int64("spot_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch spot"})
		return
	}
	c.JSON(http.StatusOK, spot)
}

type CreateSpotInput struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Description string   `json:"description" binding:"required"`
	Latitude    *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	SpotType    string   `json:"spot_type" binding:"required,max=50"`
	Tips        *string  `json:"tips"`
	ImageURL    *string  `json:"image_url"`
}

// Create inserts the spot and then credits the creator. The credit is
// best-effort: its failure is logged and the spot is still returned.
func (h *SpotsHandler) Create(c *gin.Context) {
	var input CreateSpotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, _ := middleware.CurrentUser(c)

	spot := models.Spot{
		Name:        input.Name,
		Description: input.Description,
		Latitude:    *input.Latitude,
		Longitude:   *input.Longitude,
		SpotType:    input.SpotType,
		Tips:        input.Tips,
		ImageURL:    input.ImageURL,
		CreatedBy:   id.UserID,
	}
	if id.Username != "" {
		name := id.Username
		spot.CreatorName = &name
	}

	created, err := h.spots.Create(c.Request.Context(), spot)
	if err != nil {
		h.log.Error("create spot", zap.Int64("user_id", id.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create spot"})
		return
	}

	if err := h.awarder.AddPoints(c.Request.Context(), id.UserID, h.reward); err != nil {
		h.log.Warn("spot reward failed",
			zap.Int64("user_id", id.UserID),
			zap.Int64("spot_id", created.ID),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusCreated, created)
}

type UpdateSpotInput struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	SpotType    *string  `json:"spot_type" binding:"omitempty,min=1,max=50"`
	Tips        *string  `json:"tips"`
	ImageURL    *string  `json:"image_url"`
}

func (h *SpotsHandler) Update(c *gin.Context) {
	spotID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spot id"})
		return
	}
	var input UpdateSpotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, _ := middleware.CurrentUser(c)

	spot, err := h.spots.Update(c.Request.Context(), spotID, id.UserID, models.SpotPatch(input))
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Spot not found"})
		return
	case errors.Is(err, store.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to edit this spot"})
		return
	case err != nil:
		h.log.Error("update spot", zap.Int64("spot_id", spotID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update spot"})
		return
	}
	c.JSON(http.StatusOK, spot)
}

func (h *SpotsHandler) Delete(c *gin.Context) {
	spotID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spot id"})
		return
	}
	id, _ := middleware.CurrentUser(c)

	err := h.spots.Delete(c.Request.Context(), spotID, id.UserID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Spot not found"})
		return
	case errors.Is(err, store.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this spot"})
		return
	case err != nil:
		h.log.Error("delete spot", zap.Int64("spot_id", spotID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete spot"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Spot deleted successfully"})
}
