package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pkruczek/course-system/apperr"
	"github.com/pkruczek/course-system/model"
	"gorm.io/gorm"
)

// EnrollmentService implements the enrollment state machine. A request
// creates a Pending row, approval moves it to Enrolled, and rejection
// removes the row entirely so the student may request again later.
type EnrollmentService struct {
	db *gorm.DB
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{db: db}
}

// Request creates a pending enrollment for the calling student. The course
// must exist and be active. Duplicate requests are rejected by the unique
// (course, student) index, so concurrent requests resolve to one row.
func (s *EnrollmentService) Request(ctx context.Context, p Principal, courseID uuid.UUID) (*model.Enrollment, error) {
	if !p.IsStudent() {
		return nil, apperr.New(apperr.Forbidden, "Only students can request enrollment")
	}

	var course model.Course
	err := s.db.WithContext(ctx).
		First(&course, "id = ? AND status = ?", courseID, model.CourseStatusActive).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Course not found or not active")
		}
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch course", err)
	}

	enrollment := model.Enrollment{
		CourseID:  courseID,
		StudentID: p.UserID,
		Status:    model.EnrollmentStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.New(apperr.Conflict, "An enrollment for this course already exists")
		}
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to create enrollment", err)
	}

	return &enrollment, nil
}

// Approve moves a pending enrollment to Enrolled. Only the owner of the
// enrollment's course may approve, and only pending rows can transition.
func (s *EnrollmentService) Approve(ctx context.Context, p Principal, enrollmentID uuid.UUID) (*model.Enrollment, error) {
	enrollment, err := s.fetchForDecision(ctx, p, enrollmentID)
	if err != nil {
		return nil, err
	}

	enrollment.Status = model.EnrollmentStatusEnrolled
	if err := s.db.WithContext(ctx).Save(enrollment).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to approve enrollment", err)
	}

	return enrollment, nil
}

// Reject removes a pending enrollment row. The student can request the same
// course again afterwards.
func (s *EnrollmentService) Reject(ctx context.Context, p Principal, enrollmentID uuid.UUID) error {
	enrollment, err := s.fetchForDecision(ctx, p, enrollmentID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(enrollment).Error; err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to reject enrollment", err)
	}

	return nil
}

// fetchForDecision loads an enrollment and checks that the principal is a
// teacher owning the enrollment's course and that the row is still pending.
func (s *EnrollmentService) fetchForDecision(ctx context.Context, p Principal, enrollmentID uuid.UUID) (*model.Enrollment, error) {
	if !p.IsTeacher() {
		return nil, apperr.New(apperr.Forbidden, "Only teachers can decide enrollment requests")
	}

	var enrollment model.Enrollment
	err := s.db.WithContext(ctx).Preload("Course").First(&enrollment, "id = ?", enrollmentID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Enrollment not found")
		}
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch enrollment", err)
	}

	if enrollment.Course.OwnerID != p.UserID {
		return nil, apperr.New(apperr.Forbidden, "Only the course owner can decide enrollment requests")
	}

	if enrollment.Status != model.EnrollmentStatusPending {
		return nil, apperr.New(apperr.Conflict, "Enrollment has already been decided")
	}

	return &enrollment, nil
}

// ListForCourse returns all enrollments of a course, with student identity,
// for the course owner.
func (s *EnrollmentService) ListForCourse(ctx context.Context, p Principal, courseID uuid.UUID) ([]model.EnrollmentResponse, error) {
	if !p.IsTeacher() {
		return nil, apperr.New(apperr.Forbidden, "Only teachers can list course enrollments")
	}

	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Course not found")
		}
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch course", err)
	}
	if course.OwnerID != p.UserID {
		return nil, apperr.New(apperr.Forbidden, "Only the course owner can list enrollments")
	}

	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Student").
		Where("course_id = ?", courseID).
		Order("enrolled_at ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch enrollments", err)
	}

	responses := make([]model.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		responses = append(responses, enrollments[i].ToResponse())
	}

	return responses, nil
}
