package domain

import "time"

// Role names are stored lowercased; uniqueness is enforced on the
// normalized form.
type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description string       `gorm:"size:255" json:"description"`
	IsDefault   bool         `gorm:"not null;default:false" json:"is_default"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Permission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Resource    string    `gorm:"size:64;not null;uniqueIndex:idx_permissions_resource_action" json:"resource"`
	Action      string    `gorm:"size:64;not null;uniqueIndex:idx_permissions_resource_action" json:"action"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// RolePermission is the explicit join table so a role's grant set can be
// replaced wholesale (delete-then-insert) inside one transaction.
type RolePermission struct {
	RoleID       uint `gorm:"primaryKey" json:"role_id"`
	PermissionID uint `gorm:"primaryKey" json:"permission_id"`
}
