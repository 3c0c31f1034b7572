package service

import (
	"context"
	"strings"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/observability"
	"go-blog-rbac-service/internal/repository"
)

// RoleService backs the settings screens. Everything here sits behind
// settings:manage.
type RoleService struct {
	roleRepo repository.RoleRepository
	permRepo repository.PermissionRepository
	userRepo repository.UserRepository
	authz    *AuthzService
}

func NewRoleService(roleRepo repository.RoleRepository, permRepo repository.PermissionRepository, userRepo repository.UserRepository, authz *AuthzService) *RoleService {
	return &RoleService{roleRepo: roleRepo, permRepo: permRepo, userRepo: userRepo, authz: authz}
}

type RoleWithUsage struct {
	domain.Role
	UserCount int64 `json:"user_count"`
}

func (s *RoleService) List(ctx context.Context, current *domain.User) ([]RoleWithUsage, error) {
	if !s.authz.HasPermission(ctx, current, "settings", "manage") {
		return nil, ErrPermissionDenied
	}
	roles, err := s.roleRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]RoleWithUsage, 0, len(roles))
	for _, r := range roles {
		count, err := s.userRepo.CountByRole(r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, RoleWithUsage{Role: r, UserCount: count})
	}
	return out, nil
}

func (s *RoleService) ListPermissions(ctx context.Context, current *domain.User) ([]domain.Permission, error) {
	if !s.authz.HasPermission(ctx, current, "settings", "manage") {
		return nil, ErrPermissionDenied
	}
	return s.permRepo.List()
}

func (s *RoleService) Create(ctx context.Context, current *domain.User, name, description string, permissionIDs []uint) (*domain.Role, error) {
	if !s.authz.HasPermission(ctx, current, "settings", "manage") {
		observability.RecordRBACMutation(ctx, "role", "create", "denied")
		return nil, ErrPermissionDenied
	}
	name = strings.TrimSpace(strings.ToLower(name))
	if len(name) < 2 || len(name) > 64 {
		return nil, &ValidationError{Fields: map[string]string{"name": "Role name must be between 2 and 64 characters."}}
	}
	role := &domain.Role{Name: name, Description: strings.TrimSpace(description)}
	if err := s.roleRepo.Create(role, permissionIDs); err != nil {
		observability.RecordRBACMutation(ctx, "role", "create", "error")
		return nil, err
	}
	observability.RecordRBACMutation(ctx, "role", "create", "success")
	return role, nil
}

func (s *RoleService) CreatePermission(ctx context.Context, current *domain.User, name, description, resource, action string) (*domain.Permission, error) {
	if !s.authz.HasPermission(ctx, current, "settings", "manage") {
		observability.RecordRBACMutation(ctx, "permission", "create", "denied")
		return nil, ErrPermissionDenied
	}
	resource = strings.TrimSpace(strings.ToLower(resource))
	action = strings.TrimSpace(strings.ToLower(action))
	name = strings.TrimSpace(name)
	fields := map[string]string{}
	if resource == "" {
		fields["resource"] = "Resource is required."
	}
	if action == "" {
		fields["action"] = "Action is required."
	}
	if name == "" {
		name = resource + ":" + action
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	perm := &domain.Permission{Name: name, Description: strings.TrimSpace(description), Resource: resource, Action: action}
	if err := s.permRepo.Create(perm); err != nil {
		observability.RecordRBACMutation(ctx, "permission", "create", "error")
		return nil, err
	}
	observability.RecordRBACMutation(ctx, "permission", "create", "success")
	return perm, nil
}

// ReplacePermissions swaps a role's entire grant set. The change takes
// effect for affected users on their next request; outstanding sessions
// are not revoked.
func (s *RoleService) ReplacePermissions(ctx context.Context, current *domain.User, roleID uint, permissionIDs []uint) (*domain.Role, error) {
	if !s.authz.HasPermission(ctx, current, "settings", "manage") {
		observability.RecordRBACMutation(ctx, "role", "replace_permissions", "denied")
		return nil, ErrPermissionDenied
	}
	if err := s.roleRepo.ReplacePermissions(roleID, permissionIDs); err != nil {
		observability.RecordRBACMutation(ctx, "role", "replace_permissions", "error")
		return nil, err
	}
	observability.RecordRBACMutation(ctx, "role", "replace_permissions", "success")
	return s.roleRepo.FindByID(roleID)
}
