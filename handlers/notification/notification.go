package notification

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkruczek/course-system/services"
	"github.com/pkruczek/course-system/utils/middleware"
	"github.com/pkruczek/course-system/utils/response"
)

// NotificationHandler handles notification endpoints
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// ListMine returns the authenticated user's notifications, newest first
func (h *NotificationHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	notifications, err := h.service.ListForUser(c.Context(), principal)
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Success(c, notifications)
}
