package assignment

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkruczek/course-system/services"
	"github.com/pkruczek/course-system/utils/middleware"
	"github.com/pkruczek/course-system/utils/response"
	"github.com/pkruczek/course-system/utils/validation"
)

// AssignmentHandler handles assignment endpoints
type AssignmentHandler struct {
	service   *services.AssignmentService
	validator *validation.Validator
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(service *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// AssignmentRequest represents an assignment create or update payload
type AssignmentRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	Deadline    time.Time `json:"deadline" validate:"required"`
}

// Create handles assignment creation in a course
func (h *AssignmentHandler) Create(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req AssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	assignment, err := h.service.Create(c.Context(), principal, courseID, services.AssignmentInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
	})
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Created(c, assignment)
}

// Update handles assignment updates; all three fields are replaced
func (h *AssignmentHandler) Update(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	assignmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	var req AssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	assignment, err := h.service.Update(c.Context(), principal, assignmentID, services.AssignmentInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
	})
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Success(c, assignment)
}

// Delete handles assignment deletion
func (h *AssignmentHandler) Delete(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	assignmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	if err := h.service.Delete(c.Context(), principal, assignmentID); err != nil {
		return response.AppError(c, err)
	}

	return response.SuccessWithMessage(c, "Assignment deleted", nil)
}

// ListForCourse returns a course's assignments ordered by deadline
func (h *AssignmentHandler) ListForCourse(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := uuid.Parse(c.Params("courseId"))
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	assignments, err := h.service.ListForCourse(c.Context(), principal, courseID)
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Success(c, assignments)
}
