package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkruczek/course-system/apperr"
	"github.com/pkruczek/course-system/model"
	"gorm.io/gorm"
)

// AssignmentService implements assignment management. Creation fans out
// notifications to enrolled students in the same transaction as the
// assignment insert.
type AssignmentService struct {
	db            *gorm.DB
	notifications *NotificationService
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(db *gorm.DB, notifications *NotificationService) *AssignmentService {
	return &AssignmentService{db: db, notifications: notifications}
}

// AssignmentInput holds the fields for assignment creation and update.
// Updates replace all three fields.
type AssignmentInput struct {
	Title       string
	Description string
	Deadline    time.Time
}

func (in *AssignmentInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.New(apperr.InvalidArgument, "Assignment title is required")
	}
	if in.Deadline.IsZero() {
		return apperr.New(apperr.InvalidArgument, "Assignment deadline is required")
	}
	return nil
}

// Create creates an assignment in a course owned by the calling teacher and
// notifies every enrolled student. The insert and the notification fan-out
// commit or roll back together.
func (s *AssignmentService) Create(ctx context.Context, p Principal, courseID uuid.UUID, in AssignmentInput) (*model.Assignment, error) {
	if !p.IsTeacher() {
		return nil, apperr.New(apperr.Forbidden, "Only teachers can create assignments")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Course not found")
		}
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch course", err)
	}
	if course.OwnerID != p.UserID {
		return nil, apperr.New(apperr.Forbidden, "Only the course owner can create assignments")
	}

	assignment := model.Assignment{
		CourseID:    courseID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Deadline:    in.Deadline,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		return s.notifications.FanOutAssignmentCreated(tx, &course, &assignment)
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to create assignment", err)
	}

	return &assignment, nil
}

// Update replaces an assignment's title, description and deadline. Only the
// owner of the assignment's course may update.
func (s *AssignmentService) Update(ctx context.Context, p Principal, assignmentID uuid.UUID, in AssignmentInput) (*model.Assignment, error) {
	if !p.IsTeacher() {
		return nil, apperr.New(apperr.Forbidden, "Only teachers can edit assignments")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	assignment, err := s.fetchOwned(ctx, p, assignmentID)
	if err != nil {
		return nil, err
	}

	assignment.Title = strings.TrimSpace(in.Title)
	assignment.Description = strings.TrimSpace(in.Description)
	assignment.Deadline = in.Deadline

	if err := s.db.WithContext(ctx).Save(assignment).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to update assignment", err)
	}

	return assignment, nil
}

// Delete removes an assignment along with its submissions and the
// notifications that announced it, in one transaction. Stored artifacts are
// left behind; orphan cleanup is an operator concern.
func (s *AssignmentService) Delete(ctx context.Context, p Principal, assignmentID uuid.UUID) error {
	if !p.IsTeacher() {
		return apperr.New(apperr.Forbidden, "Only teachers can delete assignments")
	}

	assignment, err := s.fetchOwned(ctx, p, assignmentID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", assignmentID).Delete(&model.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assignment_id = ?", assignmentID).Delete(&model.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(assignment).Error
	})
	if err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to delete assignment", err)
	}

	return nil
}

// fetchOwned loads an assignment with its course and verifies the principal
// owns that course.
func (s *AssignmentService) fetchOwned(ctx context.Context, p Principal, assignmentID uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	err := s.db.WithContext(ctx).Preload("Course").First(&assignment, "id = ?", assignmentID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Assignment not found")
		}
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch assignment", err)
	}

	if assignment.Course.OwnerID != p.UserID {
		return nil, apperr.New(apperr.Forbidden, "Only the course owner can manage this assignment")
	}

	return &assignment, nil
}

// ListForCourse returns a course's assignments ordered by deadline. Each
// item carries its submission count; for student callers it also says
// whether the student has already submitted. Access is limited to the
// course owner and students enrolled in the course.
func (s *AssignmentService) ListForCourse(ctx context.Context, p Principal, courseID uuid.UUID) ([]model.AssignmentListItem, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Course not found")
		}
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch course", err)
	}

	isOwner := p.IsTeacher() && course.OwnerID == p.UserID
	isEnrolled := false
	if p.IsStudent() {
		var count int64
		err := s.db.WithContext(ctx).Model(&model.Enrollment{}).
			Where("course_id = ? AND student_id = ? AND status = ?",
				courseID, p.UserID, model.EnrollmentStatusEnrolled).
			Count(&count).Error
		if err != nil {
			return nil, apperr.Wrap(apperr.Unexpected, "Failed to check enrollment", err)
		}
		isEnrolled = count > 0
	}
	if !isOwner && !isEnrolled {
		return nil, apperr.New(apperr.Forbidden, "You do not have access to this course's assignments")
	}

	var assignments []model.Assignment
	err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("deadline ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch assignments", err)
	}

	items := make([]model.AssignmentListItem, 0, len(assignments))
	for i := range assignments {
		item := model.AssignmentListItem{
			ID:          assignments[i].ID,
			Title:       assignments[i].Title,
			Description: assignments[i].Description,
			Deadline:    assignments[i].Deadline,
			CreatedAt:   assignments[i].CreatedAt,
		}

		if err := s.db.WithContext(ctx).Model(&model.Submission{}).
			Where("assignment_id = ?", assignments[i].ID).
			Count(&item.SubmissionsCount).Error; err != nil {
			return nil, apperr.Wrap(apperr.Unexpected, "Failed to count submissions", err)
		}

		if p.IsStudent() {
			var count int64
			err := s.db.WithContext(ctx).Model(&model.Submission{}).
				Where("assignment_id = ? AND student_id = ?", assignments[i].ID, p.UserID).
				Count(&count).Error
			if err != nil {
				return nil, apperr.Wrap(apperr.Unexpected, "Failed to check submission", err)
			}
			hasSubmitted := count > 0
			item.HasSubmitted = &hasSubmitted
		}

		items = append(items, item)
	}

	return items, nil
}
