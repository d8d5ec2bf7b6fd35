package model

import (
	"time"

	"github.com/google/uuid"
)

// Submission is a student's submitted artifact for an assignment. The
// composite unique index guarantees at most one submission per
// (assignment, student) pair even under concurrent requests.
type Submission struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AssignmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_assignment_student" json:"assignment_id"`
	StudentID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_assignment_student" json:"student_id"`
	FilePath     string    `gorm:"type:varchar(500);not null" json:"file_path"`
	SubmittedAt  time.Time `gorm:"autoCreateTime" json:"submitted_at"`
	Grade        *float64  `json:"grade,omitempty"`

	// Relationships
	Assignment Assignment `gorm:"foreignKey:AssignmentID" json:"-"`
	Student    User       `gorm:"foreignKey:StudentID" json:"-"`
}

// SubmissionAssignmentInfo is the assignment summary embedded in submission
// listings.
type SubmissionAssignmentInfo struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Deadline time.Time `json:"deadline"`
}

// SubmissionCourseInfo is the course summary embedded in submission listings.
type SubmissionCourseInfo struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	AcademicYear int       `json:"academic_year"`
}

// SubmissionResponse is the teacher-facing submission payload. IsLate is a
// read-model flag kept for history: the create path rejects late submissions,
// so it is false for rows created through this API.
type SubmissionResponse struct {
	ID          uuid.UUID                `json:"id"`
	Student     PublicUser               `json:"student"`
	Assignment  SubmissionAssignmentInfo `json:"assignment"`
	Course      SubmissionCourseInfo     `json:"course"`
	FilePath    string                   `json:"file_path"`
	SubmittedAt time.Time                `json:"submitted_at"`
	Grade       *float64                 `json:"grade,omitempty"`
	IsLate      bool                     `json:"is_late"`
}

// ToResponse converts a Submission (with Student and Assignment.Course
// preloaded) to its API shape.
func (s *Submission) ToResponse() SubmissionResponse {
	return SubmissionResponse{
		ID:      s.ID,
		Student: s.Student.Public(),
		Assignment: SubmissionAssignmentInfo{
			ID:       s.Assignment.ID,
			Title:    s.Assignment.Title,
			Deadline: s.Assignment.Deadline,
		},
		Course: SubmissionCourseInfo{
			ID:           s.Assignment.Course.ID,
			Name:         s.Assignment.Course.Name,
			AcademicYear: s.Assignment.Course.AcademicYear,
		},
		FilePath:    s.FilePath,
		SubmittedAt: s.SubmittedAt,
		Grade:       s.Grade,
		IsLate:      s.SubmittedAt.After(s.Assignment.Deadline),
	}
}
