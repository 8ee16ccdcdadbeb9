package handlers

import (
	"net/http"

	"campusbus/internal/http/middleware"
	"campusbus/internal/services"

	"github.com/gin-gonic/gin"
)

func notificationService(c *gin.Context) services.NotificationService {
	return services.NotificationService{RequestID: middleware.GetRequestID(c)}
}

// GET /api/notifications
func ListNotifications(c *gin.Context) {
	list, err := notificationService(c).List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]notificationJSON, 0, len(list))
	for _, n := range list {
		out = append(out, toNotification(n))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/notifications/unread-count
func UnreadNotificationCount(c *gin.Context) {
	n, err := notificationService(c).UnreadCount(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": n})
}

// PATCH /api/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	id, ok := idParam(c, "id", "notification")
	if !ok {
		return
	}
	if err := notificationService(c).MarkRead(c.Request.Context(), middleware.UserID(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

// PUT /api/notifications/mark-all-read
func MarkAllNotificationsRead(c *gin.Context) {
	n, err := notificationService(c).MarkAllRead(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked as read", "updated": n})
}

// DELETE /api/notifications/:id
func DeleteNotification(c *gin.Context) {
	id, ok := idParam(c, "id", "notification")
	if !ok {
		return
	}
	if err := notificationService(c).Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
