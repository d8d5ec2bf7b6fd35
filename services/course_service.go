package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkruczek/course-system/apperr"
	"github.com/pkruczek/course-system/model"
	"gorm.io/gorm"
)

// CourseService implements the course lifecycle: create, update, delete,
// list and detail, with ownership checks re-evaluated against fresh state on
// every call.
type CourseService struct {
	db *gorm.DB
}

// NewCourseService creates a new course service
func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

// CreateCourseInput holds the fields for course creation.
type CreateCourseInput struct {
	Name         string
	Description  string
	AcademicYear int
}

// UpdateCourseInput holds the optional fields for a partial course update.
// Nil fields are left unchanged.
type UpdateCourseInput struct {
	Name         *string
	Description  *string
	AcademicYear *int
	Status       *model.CourseStatus
}

// CourseFilters narrows course listings. Filters are conjunctive.
type CourseFilters struct {
	AcademicYear *int
	Status       *model.CourseStatus
}

// CourseListItem is a course annotated with owner identity and child counts.
type CourseListItem struct {
	ID              uuid.UUID          `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	AcademicYear    int                `json:"academic_year"`
	Status          model.CourseStatus `json:"status"`
	Owner           model.PublicUser   `json:"owner"`
	EnrollmentCount int64              `json:"enrollment_count"`
	AssignmentCount int64              `json:"assignment_count"`
	CreatedAt       time.Time          `json:"created_at"`
}

// CourseDetail is the full course payload with assignments and enrollments.
type CourseDetail struct {
	ID           uuid.UUID                  `json:"id"`
	Name         string                     `json:"name"`
	Description  string                     `json:"description"`
	AcademicYear int                        `json:"academic_year"`
	Status       model.CourseStatus         `json:"status"`
	Owner        model.PublicUser           `json:"owner"`
	Assignments  []model.Assignment         `json:"assignments"`
	Enrollments  []model.EnrollmentResponse `json:"enrollments"`
	CreatedAt    time.Time                  `json:"created_at"`
}

func validateAcademicYear(year int) error {
	if year < model.MinAcademicYear || year > model.MaxAcademicYear {
		return apperr.New(apperr.InvalidArgument,
			fmt.Sprintf("Academic year must be between %d and %d", model.MinAcademicYear, model.MaxAcademicYear))
	}
	return nil
}

// Create creates an active course owned by the calling teacher.
func (s *CourseService) Create(ctx context.Context, p Principal, in CreateCourseInput) (*model.Course, error) {
	if !p.IsTeacher() {
		return nil, apperr.New(apperr.Forbidden, "Only teachers can create courses")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.InvalidArgument, "Course name is required")
	}
	if err := validateAcademicYear(in.AcademicYear); err != nil {
		return nil, err
	}

	course := model.Course{
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		OwnerID:      p.UserID,
		AcademicYear: in.AcademicYear,
		Status:       model.CourseStatusActive,
	}

	if err := s.db.WithContext(ctx).Create(&course).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to create course", err)
	}

	return &course, nil
}

// Update applies a partial update to a course. Only the owner or an admin
// may update; absent fields keep their current value and a blank name is
// ignored rather than applied.
func (s *CourseService) Update(ctx context.Context, p Principal, courseID uuid.UUID, in UpdateCourseInput) (*model.Course, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Course not found")
		}
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch course", err)
	}

	if course.OwnerID != p.UserID && !p.IsAdmin() {
		return nil, apperr.New(apperr.Forbidden, "Only the course owner or an administrator can edit this course")
	}

	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			course.Name = name
		}
	}
	if in.Description != nil {
		course.Description = strings.TrimSpace(*in.Description)
	}
	if in.AcademicYear != nil {
		if err := validateAcademicYear(*in.AcademicYear); err != nil {
			return nil, err
		}
		course.AcademicYear = *in.AcademicYear
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.New(apperr.InvalidArgument, "Invalid course status")
		}
		course.Status = *in.Status
	}

	if err := s.db.WithContext(ctx).Save(&course).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to update course", err)
	}

	return &course, nil
}

// Delete removes a course. A course with any assignments or enrollments
// cannot be deleted.
func (s *CourseService) Delete(ctx context.Context, p Principal, courseID uuid.UUID) error {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperr.New(apperr.NotFound, "Course not found")
		}
		return apperr.Wrap(apperr.Unexpected, "Failed to fetch course", err)
	}

	if course.OwnerID != p.UserID && !p.IsAdmin() {
		return apperr.New(apperr.Forbidden, "Only the course owner or an administrator can delete this course")
	}

	var assignmentCount, enrollmentCount int64
	if err := s.db.WithContext(ctx).Model(&model.Assignment{}).
		Where("course_id = ?", courseID).Count(&assignmentCount).Error; err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to check course dependencies", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("course_id = ?", courseID).Count(&enrollmentCount).Error; err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to check course dependencies", err)
	}

	if assignmentCount > 0 || enrollmentCount > 0 {
		return apperr.New(apperr.Conflict, "Cannot delete a course that has assignments or enrolled students")
	}

	if err := s.db.WithContext(ctx).Delete(&course).Error; err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to delete course", err)
	}

	return nil
}

// List returns the courses visible to the principal: students see courses
// they have an enrollment in (any status), teachers see owned courses,
// admins see everything.
func (s *CourseService) List(ctx context.Context, p Principal, filters CourseFilters) ([]CourseListItem, error) {
	query := s.db.WithContext(ctx).Model(&model.Course{}).Preload("Owner")

	switch p.Role {
	case model.RoleStudent:
		query = query.Where(
			"id IN (?)",
			s.db.Model(&model.Enrollment{}).Select("course_id").Where("student_id = ?", p.UserID),
		)
	case model.RoleTeacher:
		query = query.Where("owner_id = ?", p.UserID)
	case model.RoleAdmin:
		// Admins see all courses
	default:
		return nil, apperr.New(apperr.Forbidden, "Unknown user role")
	}

	if filters.AcademicYear != nil {
		query = query.Where("academic_year = ?", *filters.AcademicYear)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var courses []model.Course
	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch courses", err)
	}

	items := make([]CourseListItem, 0, len(courses))
	for _, course := range courses {
		var enrollmentCount, assignmentCount int64
		if err := s.db.WithContext(ctx).Model(&model.Enrollment{}).
			Where("course_id = ?", course.ID).Count(&enrollmentCount).Error; err != nil {
			return nil, apperr.Wrap(apperr.Unexpected, "Failed to count enrollments", err)
		}
		if err := s.db.WithContext(ctx).Model(&model.Assignment{}).
			Where("course_id = ?", course.ID).Count(&assignmentCount).Error; err != nil {
			return nil, apperr.Wrap(apperr.Unexpected, "Failed to count assignments", err)
		}

		items = append(items, CourseListItem{
			ID:              course.ID,
			Name:            course.Name,
			Description:     course.Description,
			AcademicYear:    course.AcademicYear,
			Status:          course.Status,
			Owner:           course.Owner.Public(),
			EnrollmentCount: enrollmentCount,
			AssignmentCount: assignmentCount,
			CreatedAt:       course.CreatedAt,
		})
	}

	return items, nil
}

// GetDetail returns a course with its assignments and enrollments. Access is
// granted to admins, the owner, and users holding an enrollment row in the
// course (any status).
func (s *CourseService) GetDetail(ctx context.Context, p Principal, courseID uuid.UUID) (*CourseDetail, error) {
	var course model.Course
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Preload("Assignments").
		Preload("Enrollments.Student").
		First(&course, "id = ?", courseID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Course not found")
		}
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch course", err)
	}

	hasAccess := p.IsAdmin() || course.OwnerID == p.UserID
	if !hasAccess {
		for _, e := range course.Enrollments {
			if e.StudentID == p.UserID {
				hasAccess = true
				break
			}
		}
	}
	if !hasAccess {
		return nil, apperr.New(apperr.Forbidden, "You do not have access to this course")
	}

	enrollments := make([]model.EnrollmentResponse, 0, len(course.Enrollments))
	for i := range course.Enrollments {
		enrollments = append(enrollments, course.Enrollments[i].ToResponse())
	}

	return &CourseDetail{
		ID:           course.ID,
		Name:         course.Name,
		Description:  course.Description,
		AcademicYear: course.AcademicYear,
		Status:       course.Status,
		Owner:        course.Owner.Public(),
		Assignments:  course.Assignments,
		Enrollments:  enrollments,
		CreatedAt:    course.CreatedAt,
	}, nil
}
