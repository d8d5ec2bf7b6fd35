package submission

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkruczek/course-system/services"
	"github.com/pkruczek/course-system/services/storage"
	"github.com/pkruczek/course-system/utils/middleware"
	"github.com/pkruczek/course-system/utils/response"
)

// MaxUploadSize caps submission artifacts at 20 MB.
const MaxUploadSize = 20 * 1024 * 1024

// SubmissionHandler handles submission endpoints
type SubmissionHandler struct {
	service *services.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(service *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// Create handles a student's artifact upload for an assignment. The file is
// sent as multipart form data under the "file" field.
func (h *SubmissionHandler) Create(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	assignmentID, err := uuid.Parse(c.Params("assignmentId"))
	if err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Submission file is required")
	}
	if fileHeader.Size > MaxUploadSize {
		return response.BadRequest(c, "Submission file exceeds the 20 MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to read submission file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return response.BadRequest(c, "Failed to read submission file")
	}

	submission, err := h.service.Create(c.Context(), principal, assignmentID, fileHeader.Filename, data)
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Created(c, submission)
}

// List returns submissions for the calling teacher's courses, optionally
// filtered by course_id or assignment_id
func (h *SubmissionHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var filters services.SubmissionFilters
	if raw := c.Query("course_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid course_id filter")
		}
		filters.CourseID = &id
	}
	if raw := c.Query("assignment_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid assignment_id filter")
		}
		filters.AssignmentID = &id
	}

	submissions, err := h.service.List(c.Context(), principal, filters)
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Success(c, submissions)
}

// Download streams a submission's artifact back to the caller
func (h *SubmissionHandler) Download(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	submissionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid submission ID")
	}

	filename, data, err := h.service.Download(c.Context(), principal, submissionID)
	if err != nil {
		return response.AppError(c, err)
	}

	c.Set(fiber.HeaderContentType, storage.ContentType(filename))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(data)
}

// GradeRequest represents a grading request
type GradeRequest struct {
	Grade float64 `json:"grade" validate:"required"`
}

// Grade sets or replaces a submission's grade
func (h *SubmissionHandler) Grade(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	submissionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid submission ID")
	}

	var req GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	submission, err := h.service.Grade(c.Context(), principal, submissionID, req.Grade)
	if err != nil {
		return response.AppError(c, err)
	}

	return response.Success(c, submission)
}
