package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification is created as a side effect of assignment creation, one per
// student enrolled in the course at that moment. Rows are never updated.
type Notification struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	RecipientID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"recipient_id"`
	AssignmentID *uuid.UUID     `gorm:"type:uuid;index" json:"assignment_id,omitempty"`
	CourseID     *uuid.UUID     `gorm:"type:uuid;index" json:"course_id,omitempty"`
	Content      string         `gorm:"type:varchar(1000);not null" json:"content"`
	Metadata     datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"` // Additional context

	// Relationships
	Recipient  User        `gorm:"foreignKey:RecipientID" json:"-"`
	Assignment *Assignment `gorm:"foreignKey:AssignmentID" json:"-"`
	Course     *Course     `gorm:"foreignKey:CourseID" json:"-"`
}

// NotificationMetadata is the structure serialized into the Metadata column.
type NotificationMetadata struct {
	CourseName      string    `json:"course_name,omitempty"`
	AssignmentTitle string    `json:"assignment_title,omitempty"`
	Deadline        time.Time `json:"deadline,omitempty"`
}
