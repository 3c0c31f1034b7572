package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/observability"

	"gorm.io/gorm"
)

var defaultPermissions = []domain.Permission{
	{Name: "users:read", Resource: "users", Action: "read", Description: "View user list and details"},
	{Name: "users:create", Resource: "users", Action: "create", Description: "Create new users"},
	{Name: "users:update", Resource: "users", Action: "update", Description: "Update user information"},
	{Name: "users:delete", Resource: "users", Action: "delete", Description: "Delete users"},
	{Name: "posts:read", Resource: "posts", Action: "read", Description: "View all posts"},
	{Name: "posts:create", Resource: "posts", Action: "create", Description: "Create new posts"},
	{Name: "posts:update", Resource: "posts", Action: "update", Description: "Update any post"},
	{Name: "posts:delete", Resource: "posts", Action: "delete", Description: "Delete any post"},
	{Name: "dashboard:access", Resource: "dashboard", Action: "access", Description: "Access dashboard"},
	{Name: "settings:manage", Resource: "settings", Action: "manage", Description: "Manage system settings"},
}

type roleSeed struct {
	name        string
	description string
	isDefault   bool
	// permissions by name; nil means every permission.
	permissions []string
}

var defaultRoles = []roleSeed{
	{name: "admin", description: "Full system access", permissions: nil},
	{name: "moderator", description: "Can manage users and posts but not system settings", permissions: []string{
		"users:read", "users:create", "users:update",
		"posts:read", "posts:create", "posts:update",
		"dashboard:access",
	}},
	{name: "user", description: "Standard user with basic access", isDefault: true, permissions: []string{
		"posts:create", "dashboard:access",
	}},
	{name: "guest", description: "Limited access for guests", permissions: []string{
		"posts:read",
	}},
}

type RBACSyncReport struct {
	CreatedPermissions int  `json:"created_permissions"`
	CreatedRoles       int  `json:"created_roles"`
	BoundPermissions   int  `json:"bound_permissions"`
	Noop               bool `json:"noop"`
}

func Seed(db *gorm.DB, bootstrapAdminEmail string) error {
	_, err := SeedSync(db, bootstrapAdminEmail)
	return err
}

// SeedSync is idempotent: permissions and roles are created only when
// missing, and role grants are replaced wholesale so re-running converges
// on the canonical grant set.
func SeedSync(db *gorm.DB, bootstrapAdminEmail string) (*RBACSyncReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "seed", time.Since(start))
	}()

	report := &RBACSyncReport{}

	byName := make(map[string]domain.Permission, len(defaultPermissions))
	for _, p := range defaultPermissions {
		res := db.Where("resource = ? AND action = ?", p.Resource, p.Action).FirstOrCreate(&p)
		if res.Error != nil {
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			report.CreatedPermissions++
		}
		byName[p.Name] = p
	}

	for _, rs := range defaultRoles {
		role := domain.Role{Name: rs.name, Description: rs.description, IsDefault: rs.isDefault}
		res := db.Where("name = ?", rs.name).FirstOrCreate(&role)
		if res.Error != nil {
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			report.CreatedRoles++
		}

		var grants []domain.Permission
		if rs.permissions == nil {
			for _, p := range byName {
				grants = append(grants, p)
			}
		} else {
			for _, name := range rs.permissions {
				p, ok := byName[name]
				if !ok {
					observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
					return nil, fmt.Errorf("unknown permission %q in role %q", name, rs.name)
				}
				grants = append(grants, p)
			}
		}

		var before domain.Role
		if err := db.Preload("Permissions").Where("id = ?", role.ID).First(&before).Error; err != nil {
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, err
		}
		beforeSet := make(map[uint]struct{}, len(before.Permissions))
		for _, p := range before.Permissions {
			beforeSet[p.ID] = struct{}{}
		}
		if err := db.Model(&role).Association("Permissions").Replace(&grants); err != nil {
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, err
		}
		for _, p := range grants {
			if _, ok := beforeSet[p.ID]; !ok {
				report.BoundPermissions++
			}
		}
	}

	email := strings.TrimSpace(strings.ToLower(bootstrapAdminEmail))
	if email != "" {
		var adminRole domain.Role
		if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, err
		}
		var u domain.User
		if err := db.Where("email = ?", email).First(&u).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
				return nil, err
			}
		} else if u.RoleID != adminRole.ID {
			if err := db.Model(&u).Update("role_id", adminRole.ID).Error; err != nil {
				observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
				return nil, fmt.Errorf("assign bootstrap admin role: %w", err)
			}
			report.BoundPermissions++
		}
	}

	report.Noop = report.CreatedPermissions == 0 && report.CreatedRoles == 0 && report.BoundPermissions == 0
	observability.RecordDatabaseStartupEvent(context.Background(), "seed", "success")
	return report, nil
}
