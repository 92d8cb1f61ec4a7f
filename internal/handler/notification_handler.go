package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-health-api/internal/models"
	"github.com/noah-isme/sma-health-api/pkg/response"
)

type notificationService interface {
	ListForParent(ctx context.Context, parentID string, unreadOnly bool, limit int) ([]models.MedicalNotification, error)
	MarkRead(ctx context.Context, parentID, id string) error
}

// NotificationHandler serves the parent inbox.
type NotificationHandler struct {
	notifications notificationService
	actors        actorResolver
}

// NewNotificationHandler builds a new handler.
func NewNotificationHandler(notifications notificationService, actors actorResolver) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, actors: actors}
}

// List godoc
// @Summary List the parent's notifications
// @Tags Notifications
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Param limit query int false "Maximum items (default 50, max 200)"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	parent, err := currentParent(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}
	unread := c.Query("unread") == "true"
	items, err := h.notifications.ListForParent(c.Request.Context(), parent.ID, unread, queryInt(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	parent, err := currentParent(c, h.actors)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), parent.ID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
