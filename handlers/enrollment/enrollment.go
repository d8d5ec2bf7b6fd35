package enrollment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkruczek/course-system/services"
	"github.com/pkruczek/course-system/utils/middleware"
	"github.com/pkruczek/course-system/utils/response"
)

// EnrollmentHandler handles enrollment endpoints
type EnrollmentHandler struct {
	service *services.EnrollmentService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(service *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// Request handles a student's enrollment request for a course
func (h *EnrollmentHandler) Request(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	enrollment, err := h.service.Request(c.Context(), principal, courseID)
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Created(c, enrollment)
}

// Approve handles enrollment approval by the course owner
func (h *EnrollmentHandler) Approve(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrollmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment ID")
	}

	enrollment, err := h.service.Approve(c.Context(), principal, enrollmentID)
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Success(c, enrollment)
}

// Reject handles enrollment rejection; the request row is removed so the
// student may apply again
func (h *EnrollmentHandler) Reject(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrollmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment ID")
	}

	if err := h.service.Reject(c.Context(), principal, enrollmentID); err != nil {
		return response.AppError(c, err)
	}

	return response.SuccessWithMessage(c, "Enrollment rejected", nil)
}

// ListForCourse returns all enrollments of a course for its owner
func (h *EnrollmentHandler) ListForCourse(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	enrollments, err := h.service.ListForCourse(c.Context(), principal, courseID)
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Success(c, enrollments)
}
