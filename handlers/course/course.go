package course

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkruczek/course-system/model"
	"github.com/pkruczek/course-system/services"
	"github.com/pkruczek/course-system/utils/middleware"
	"github.com/pkruczek/course-system/utils/response"
	"github.com/pkruczek/course-system/utils/validation"
)

// CourseHandler handles course endpoints
type CourseHandler struct {
	service   *services.CourseService
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(service *services.CourseService) *CourseHandler {
	return &CourseHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// CreateCourseRequest represents a course creation request
type CreateCourseRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=2000"`
	AcademicYear int    `json:"academic_year" validate:"required"`
}

// UpdateCourseRequest represents a partial course update request
type UpdateCourseRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	AcademicYear *int    `json:"academic_year"`
	Status       *string `json:"status" validate:"omitempty,oneof=active archived"`
}

// CourseResponse is the single-course payload.
type CourseResponse struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	OwnerID      uuid.UUID          `json:"owner_id"`
	AcademicYear int                `json:"academic_year"`
	Status       model.CourseStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
}

func toCourseResponse(c *model.Course) CourseResponse {
	return CourseResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		OwnerID:      c.OwnerID,
		AcademicYear: c.AcademicYear,
		Status:       c.Status,
		CreatedAt:    c.CreatedAt,
	}
}

// Create handles course creation
func (h *CourseHandler) Create(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	course, err := h.service.Create(c.Context(), principal, services.CreateCourseInput{
		Name:         req.Name,
		Description:  req.Description,
		AcademicYear: req.AcademicYear,
	})
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Created(c, toCourseResponse(course))
}

// Update handles partial course updates
func (h *CourseHandler) Update(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	input := services.UpdateCourseInput{
		Name:         req.Name,
		Description:  req.Description,
		AcademicYear: req.AcademicYear,
	}
	if req.Status != nil {
		status := model.CourseStatus(*req.Status)
		input.Status = &status
	}

	course, err := h.service.Update(c.Context(), principal, courseID, input)
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Success(c, toCourseResponse(course))
}

// Delete handles course deletion
func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	if err := h.service.Delete(c.Context(), principal, courseID); err != nil {
		return response.AppError(c, err)
	}

	return response.SuccessWithMessage(c, "Course deleted", nil)
}

// List handles course listing with optional academic_year and status filters
func (h *CourseHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var filters services.CourseFilters
	if year := c.QueryInt("academic_year", 0); year != 0 {
		filters.AcademicYear = &year
	}
	if status := c.Query("status"); status != "" {
		s := model.CourseStatus(status)
		if !s.Valid() {
			return response.BadRequest(c, "Invalid course status filter")
		}
		filters.Status = &s
	}

	courses, err := h.service.List(c.Context(), principal, filters)
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Success(c, courses)
}

// Get handles single course detail retrieval
func (h *CourseHandler) Get(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	detail, err := h.service.GetDetail(c.Context(), principal, courseID)
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Success(c, detail)
}
