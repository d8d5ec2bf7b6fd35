package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseStatus represents the lifecycle state of a course
type CourseStatus string

const (
	CourseStatusActive   CourseStatus = "active"
	CourseStatusArchived CourseStatus = "archived"
)

// Valid reports whether s is a known course status.
func (s CourseStatus) Valid() bool {
	return s == CourseStatusActive || s == CourseStatusArchived
}

// Academic year bounds enforced on create/update.
const (
	MinAcademicYear = 2020
	MaxAcademicYear = 2030
)

// Course represents a course owned by a teacher
type Course struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"type:varchar(200);not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	OwnerID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	AcademicYear int            `gorm:"not null" json:"academic_year"`
	Status       CourseStatus   `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	// Relationships
	Owner       User         `gorm:"foreignKey:OwnerID" json:"-"`
	Assignments []Assignment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Enrollments []Enrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}
