package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JWTTokenBlacklist stores revoked JWT token IDs until their natural expiry.
type JWTTokenBlacklist struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JTI       string         `gorm:"uniqueIndex;not null;type:varchar(100)" json:"jti"`
	UserID    uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	Reason    string         `gorm:"type:varchar(100)" json:"reason"` // logout, security, manual_revoke
	ExpiresAt time.Time      `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for JWTTokenBlacklist
func (JWTTokenBlacklist) TableName() string {
	return "jwt_token_blacklist"
}
