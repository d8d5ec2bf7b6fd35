package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkruczek/course-system/utils/middleware"
	"github.com/pkruczek/course-system/utils/response"
)

// Profile returns the authenticated user's profile
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	return response.Success(c, user.Public())
}
