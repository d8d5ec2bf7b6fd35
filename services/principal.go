package services

import (
	"github.com/google/uuid"
	"github.com/pkruczek/course-system/model"
)

// Principal is the authenticated actor performing an operation. It is
// resolved once per request by the transport layer and threaded explicitly
// into every service call; services never re-derive identity from ambient
// request state.
type Principal struct {
	UserID uuid.UUID
	Role   model.Role
}

// IsStudent reports whether the principal holds the student role.
func (p Principal) IsStudent() bool { return p.Role == model.RoleStudent }

// IsTeacher reports whether the principal holds the teacher role.
func (p Principal) IsTeacher() bool { return p.Role == model.RoleTeacher }

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }
