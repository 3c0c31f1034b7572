package service

import (
	"context"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/observability"
)

// adminRoleName is the single bypass: a user whose role carries this name
// is granted every permission check without consulting the grant table.
const adminRoleName = "admin"

func isAdminRole(role *domain.Role) bool {
	return role != nil && role.Name == adminRoleName
}

// AuthzService answers permission questions from a loaded user. It never
// touches the database; callers pass a user with Role.Permissions already
// resolved for this request.
type AuthzService struct{}

func NewAuthzService() *AuthzService { return &AuthzService{} }

func (s *AuthzService) HasPermission(ctx context.Context, user *domain.User, resource, action string) bool {
	if user == nil {
		observability.RecordPermissionCheck(ctx, resource, action, "deny")
		return false
	}
	if isAdminRole(&user.Role) {
		observability.RecordPermissionCheck(ctx, resource, action, "allow_admin")
		return true
	}
	for _, p := range user.Role.Permissions {
		if p.Resource == resource && p.Action == action {
			observability.RecordPermissionCheck(ctx, resource, action, "allow")
			return true
		}
	}
	observability.RecordPermissionCheck(ctx, resource, action, "deny")
	return false
}

func (s *AuthzService) HasAnyPermission(ctx context.Context, user *domain.User, pairs ...[2]string) bool {
	for _, pair := range pairs {
		if s.HasPermission(ctx, user, pair[0], pair[1]) {
			return true
		}
	}
	return false
}

func (s *AuthzService) HasAllPermissions(ctx context.Context, user *domain.User, pairs ...[2]string) bool {
	for _, pair := range pairs {
		if !s.HasPermission(ctx, user, pair[0], pair[1]) {
			return false
		}
	}
	return true
}

// CanModifyOwned allows the mutation when the user owns the resource or
// holds the blanket permission for it.
func (s *AuthzService) CanModifyOwned(ctx context.Context, user *domain.User, resource, action string, ownerID uint) bool {
	if user == nil {
		return false
	}
	if user.ID == ownerID {
		observability.RecordPermissionCheck(ctx, resource, action, "allow_owner")
		return true
	}
	return s.HasPermission(ctx, user, resource, action)
}
