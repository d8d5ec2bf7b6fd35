package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus represents the lifecycle state of an enrollment.
// There is no "rejected" state: rejection deletes the row.
type EnrollmentStatus string

const (
	EnrollmentStatusPending  EnrollmentStatus = "pending"
	EnrollmentStatusEnrolled EnrollmentStatus = "enrolled"
)

// Enrollment links a student to a course. The composite unique index makes
// the database arbitrate concurrent enrollment requests for the same pair.
type Enrollment struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CourseID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_course_student" json:"course_id"`
	StudentID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_course_student" json:"student_id"`
	Status     EnrollmentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	EnrolledAt time.Time        `gorm:"autoCreateTime" json:"enrolled_at"`

	// Relationships
	Course  Course `gorm:"foreignKey:CourseID" json:"-"`
	Student User   `gorm:"foreignKey:StudentID" json:"-"`
}

// EnrollmentResponse embeds student identity for teacher-facing listings.
type EnrollmentResponse struct {
	ID         uuid.UUID        `json:"id"`
	Student    PublicUser       `json:"student"`
	Status     EnrollmentStatus `json:"status"`
	EnrolledAt time.Time        `json:"enrolled_at"`
}

// ToResponse converts an Enrollment (with Student preloaded) to its API shape.
func (e *Enrollment) ToResponse() EnrollmentResponse {
	return EnrollmentResponse{
		ID:         e.ID,
		Student:    e.Student.Public(),
		Status:     e.Status,
		EnrolledAt: e.EnrolledAt,
	}
}
