package handlers

import (
	"context"
	"errors"
	"net/http"
	"spotfinder/db"
	"spotfinder/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationStore interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id int64) error
}

type NotificationsHandler struct {
	notifications NotificationStore
	log           *zap.Logger
}

func NewNotificationsHandler(notifications NotificationStore, log *zap.Logger) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications, log: log}
}

func (h *NotificationsHandler) Routes(r gin.IRouter) {
	g := r.Group("/notifications")
	g.GET("/:id", h.List)
	g.GET("/:id/unread-count", h.UnreadCount)
	g.PUT("/:id/read", h.MarkRead)
}

// List returns a user's notifications; :id is the user id here.
func (h *NotificationsHandler) List(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	list, err := h.notifications.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("list notifications", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *NotificationsHandler) UnreadCount(c *gin.Context) {
	userID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	count, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("count notifications", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *NotificationsHandler) MarkRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}

	err := h.notifications.MarkRead(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if err != nil {
		h.log.Error("mark read", zap.Int64("notification_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
