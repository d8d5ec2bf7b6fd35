package services

import (
	"context"
	"errors"
	"log"
	"math"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/pkruczek/course-system/apperr"
	"github.com/pkruczek/course-system/model"
	"github.com/pkruczek/course-system/services/storage"
	"gorm.io/gorm"
)

// Grade bounds and step for the grading grid.
const (
	MinGrade  = 2.0
	MaxGrade  = 5.0
	GradeStep = 0.5
)

// ValidGrade reports whether g lies on the grading grid: between MinGrade
// and MaxGrade inclusive, in steps of GradeStep.
func ValidGrade(g float64) bool {
	if g < MinGrade || g > MaxGrade {
		return false
	}
	return math.Mod(g/GradeStep, 1) == 0
}

// SubmissionService implements artifact submission, retrieval and grading.
// Artifacts live in object storage; the database row is the system of record
// and is only written after the artifact upload succeeds.
type SubmissionService struct {
	db    *gorm.DB
	store storage.ArtifactStore
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(db *gorm.DB, store storage.ArtifactStore) *SubmissionService {
	return &SubmissionService{db: db, store: store}
}

// SubmissionFilters narrows teacher submission listings.
type SubmissionFilters struct {
	CourseID     *uuid.UUID
	AssignmentID *uuid.UUID
}

// Create stores a submission artifact and records the submission row. The
// calling student must be enrolled in the assignment's course, must not have
// submitted before, and the deadline must not have passed. The artifact is
// uploaded first; if the row insert then fails the upload is rolled back
// with a best-effort delete so no row ever points at a missing artifact.
func (s *SubmissionService) Create(ctx context.Context, p Principal, assignmentID uuid.UUID, filename string, data []byte) (*model.Submission, error) {
	if !p.IsStudent() {
		return nil, apperr.New(apperr.Forbidden, "Only students can submit assignments")
	}
	if len(data) == 0 {
		return nil, apperr.New(apperr.InvalidArgument, "Submission file is empty")
	}

	var assignment model.Assignment
	err := s.db.WithContext(ctx).
		Preload("Course.Owner").
		First(&assignment, "id = ?", assignmentID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Assignment not found")
		}
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch assignment", err)
	}

	var enrolled int64
	err = s.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id = ? AND status = ?",
			assignment.CourseID, p.UserID, model.EnrollmentStatusEnrolled).
		Count(&enrolled).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to check enrollment", err)
	}
	if enrolled == 0 {
		return nil, apperr.New(apperr.Forbidden, "You are not enrolled in this course")
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&model.Submission{}).
		Where("assignment_id = ? AND student_id = ?", assignmentID, p.UserID).
		Count(&existing).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to check existing submission", err)
	}
	if existing > 0 {
		return nil, apperr.New(apperr.Conflict, "You have already submitted this assignment")
	}

	now := time.Now()
	if now.After(assignment.Deadline) {
		return nil, apperr.New(apperr.Conflict, "Assignment deadline has passed")
	}

	var student model.User
	if err := s.db.WithContext(ctx).First(&student, "id = ?", p.UserID).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch student", err)
	}

	// Ordinal of this assignment within its course, by creation time.
	var assignmentNumber int64
	err = s.db.WithContext(ctx).Model(&model.Assignment{}).
		Where("course_id = ? AND created_at <= ?", assignment.CourseID, assignment.CreatedAt).
		Count(&assignmentNumber).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to number assignment", err)
	}

	key := artifactKey(&assignment.Course.Owner, &student, &assignment.Course,
		int(assignmentNumber), filename, now)

	if err := s.store.Put(ctx, key, data, storage.ContentType(filename)); err != nil {
		return nil, apperr.Wrap(apperr.StorageFailure, "Failed to store submission file", err)
	}

	submission := model.Submission{
		AssignmentID: assignmentID,
		StudentID:    p.UserID,
		FilePath:     key,
	}

	if err := s.db.WithContext(ctx).Create(&submission).Error; err != nil {
		s.rollbackArtifact(ctx, key)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.New(apperr.Conflict, "You have already submitted this assignment")
		}
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to record submission", err)
	}

	return &submission, nil
}

// rollbackArtifact removes an uploaded artifact after a failed row insert,
// unless a committed submission row references the same key. Keys carry
// second-granularity timestamps, so two concurrent uploads of the same file
// for the same (assignment, student) can build identical keys; the losing
// insert must not delete what the winning one stored.
func (s *SubmissionService) rollbackArtifact(ctx context.Context, key string) {
	var refs int64
	if err := s.db.WithContext(ctx).Model(&model.Submission{}).
		Where("file_path = ?", key).Count(&refs).Error; err != nil {
		log.Printf("WARN: failed to check references for artifact %s: %v", key, err)
		return
	}
	if refs > 0 {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		log.Printf("WARN: failed to delete orphaned artifact %s: %v", key, err)
	}
}

// List returns submissions for courses owned by the calling teacher, newest
// first, optionally filtered by course or assignment.
func (s *SubmissionService) List(ctx context.Context, p Principal, filters SubmissionFilters) ([]model.SubmissionResponse, error) {
	if !p.IsTeacher() {
		return nil, apperr.New(apperr.Forbidden, "Only teachers can list submissions")
	}

	query := s.db.WithContext(ctx).Model(&model.Submission{}).
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Joins("JOIN courses ON courses.id = assignments.course_id").
		Where("courses.owner_id = ?", p.UserID).
		Preload("Student").
		Preload("Assignment.Course")

	if filters.CourseID != nil {
		query = query.Where("assignments.course_id = ?", *filters.CourseID)
	}
	if filters.AssignmentID != nil {
		query = query.Where("submissions.assignment_id = ?", *filters.AssignmentID)
	}

	var submissions []model.Submission
	if err := query.Order("submissions.submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch submissions", err)
	}

	responses := make([]model.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		responses = append(responses, submissions[i].ToResponse())
	}

	return responses, nil
}

// Download returns a submission's artifact bytes and filename. Access is
// limited to the submitting student and the owner of the submission's
// course.
func (s *SubmissionService) Download(ctx context.Context, p Principal, submissionID uuid.UUID) (string, []byte, error) {
	submission, err := s.fetch(ctx, submissionID)
	if err != nil {
		return "", nil, err
	}

	isSubmitter := p.IsStudent() && submission.StudentID == p.UserID
	isOwner := p.IsTeacher() && submission.Assignment.Course.OwnerID == p.UserID
	if !isSubmitter && !isOwner {
		return "", nil, apperr.New(apperr.Forbidden, "You do not have access to this submission")
	}

	data, err := s.store.Get(ctx, submission.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", nil, apperr.New(apperr.NotFound, "Submission file not found in storage")
		}
		return "", nil, apperr.Wrap(apperr.StorageFailure, "Failed to fetch submission file", err)
	}

	return path.Base(submission.FilePath), data, nil
}

// Grade sets or replaces a submission's grade. Grading is idempotent: a
// repeated grade simply overwrites the previous value.
func (s *SubmissionService) Grade(ctx context.Context, p Principal, submissionID uuid.UUID, grade float64) (*model.Submission, error) {
	if !p.IsTeacher() {
		return nil, apperr.New(apperr.Forbidden, "Only teachers can grade submissions")
	}
	if !ValidGrade(grade) {
		return nil, apperr.New(apperr.InvalidArgument, "Grade must be between 2.0 and 5.0 in steps of 0.5")
	}

	submission, err := s.fetch(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if submission.Assignment.Course.OwnerID != p.UserID {
		return nil, apperr.New(apperr.Forbidden, "Only the course owner can grade this submission")
	}

	submission.Grade = &grade
	if err := s.db.WithContext(ctx).Model(submission).Update("grade", grade).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to save grade", err)
	}

	return submission, nil
}

func (s *SubmissionService) fetch(ctx context.Context, submissionID uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("Assignment.Course").
		First(&submission, "id = ?", submissionID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "Submission not found")
		}
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch submission", err)
	}
	return &submission, nil
}
