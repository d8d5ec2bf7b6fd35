package model

import (
	"time"

	"github.com/google/uuid"
)

// Assignment belongs to exactly one course and is removed with it.
type Assignment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Deadline    time.Time `gorm:"not null" json:"deadline"`

	// Relationships
	Course        Course         `gorm:"foreignKey:CourseID" json:"-"`
	Submissions   []Submission   `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"-"`
	Notifications []Notification `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"-"`
}

// AssignmentListItem is the per-assignment payload for course listings,
// annotated with submission stats.
type AssignmentListItem struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Deadline         time.Time `json:"deadline"`
	CreatedAt        time.Time `json:"created_at"`
	SubmissionsCount int64     `json:"submissions_count"`
	// Set for student callers only: whether this student has submitted.
	HasSubmitted *bool `json:"has_submitted,omitempty"`
}
