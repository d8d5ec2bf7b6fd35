package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkruczek/course-system/apperr"
	"github.com/pkruczek/course-system/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationService creates and lists per-user notifications. Rows are
// immutable once written.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// FanOutAssignmentCreated writes one notification per enrolled student of
// the assignment's course. It runs on the caller's transaction handle so the
// fan-out commits or rolls back together with the assignment insert.
func (s *NotificationService) FanOutAssignmentCreated(tx *gorm.DB, course *model.Course, assignment *model.Assignment) error {
	var studentIDs []uuid.UUID
	err := tx.Model(&model.Enrollment{}).
		Where("course_id = ? AND status = ?", course.ID, model.EnrollmentStatusEnrolled).
		Pluck("student_id", &studentIDs).Error
	if err != nil {
		return fmt.Errorf("fetch enrolled students: %w", err)
	}

	if len(studentIDs) == 0 {
		return nil
	}

	metadata, err := json.Marshal(model.NotificationMetadata{
		CourseName:      course.Name,
		AssignmentTitle: assignment.Title,
		Deadline:        assignment.Deadline,
	})
	if err != nil {
		return fmt.Errorf("marshal notification metadata: %w", err)
	}

	content := fmt.Sprintf("New assignment '%s' has been added to course '%s'", assignment.Title, course.Name)

	notifications := make([]model.Notification, 0, len(studentIDs))
	for _, studentID := range studentIDs {
		notifications = append(notifications, model.Notification{
			RecipientID:  studentID,
			AssignmentID: &assignment.ID,
			CourseID:     &course.ID,
			Content:      content,
			Metadata:     datatypes.JSON(metadata),
		})
	}

	if err := tx.CreateInBatches(&notifications, 100).Error; err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}

	return nil
}

// ListForUser returns the principal's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, p Principal) ([]model.Notification, error) {
	var notifications []model.Notification
	err := s.db.WithContext(ctx).
		Where("recipient_id = ?", p.UserID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch notifications", err)
	}

	return notifications, nil
}
