package domain

import "time"

const (
	UserStatusActive    = "ACTIVE"
	UserStatusInactive  = "INACTIVE"
	UserStatusSuspended = "SUSPENDED"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Phone        string    `gorm:"size:32" json:"phone,omitempty"`
	PasswordHash string    `gorm:"size:1024;not null" json:"-"`
	AvatarURL    string    `gorm:"size:1024" json:"avatar_url,omitempty"`
	Status       string    `gorm:"size:16;not null;default:ACTIVE;index:idx_users_status" json:"status"`
	RoleID       uint      `gorm:"not null;index" json:"role_id"`
	Role         Role      `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ValidUserStatus(s string) bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	default:
		return false
	}
}
