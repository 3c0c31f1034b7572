package service

import (
	"context"
	"errors"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/observability"
	"go-blog-rbac-service/internal/repository"
)

var (
	ErrSelfDelete  = errors.New("cannot delete own account")
	ErrUnknownRole = errors.New("unknown role")
)

// UserAdminService covers the dashboard's user management screens. Every
// operation re-checks the caller's grants; the caller is never trusted
// from route placement alone.
type UserAdminService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	authz    *AuthzService
}

func NewUserAdminService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, authz *AuthzService) *UserAdminService {
	return &UserAdminService{userRepo: userRepo, roleRepo: roleRepo, authz: authz}
}

func (s *UserAdminService) List(ctx context.Context, current *domain.User, req repository.PageRequest) (repository.PageResult[domain.User], error) {
	if !s.authz.HasPermission(ctx, current, "users", "read") {
		return repository.PageResult[domain.User]{}, ErrPermissionDenied
	}
	return s.userRepo.ListPaged(req)
}

func (s *UserAdminService) Get(ctx context.Context, current *domain.User, id uint) (*domain.User, error) {
	if !s.authz.HasPermission(ctx, current, "users", "read") {
		return nil, ErrPermissionDenied
	}
	return s.userRepo.FindByID(id)
}

func (s *UserAdminService) UpdateStatus(ctx context.Context, current *domain.User, id uint, status string) error {
	if !s.authz.HasPermission(ctx, current, "users", "update") {
		observability.RecordRBACMutation(ctx, "user", "set_status", "denied")
		return ErrPermissionDenied
	}
	if !domain.ValidUserStatus(status) {
		return &ValidationError{Fields: map[string]string{"status": "Invalid status."}}
	}
	if err := s.userRepo.SetStatus(id, status); err != nil {
		observability.RecordRBACMutation(ctx, "user", "set_status", "error")
		return err
	}
	observability.RecordRBACMutation(ctx, "user", "set_status", "success")
	return nil
}

func (s *UserAdminService) UpdateRole(ctx context.Context, current *domain.User, id, roleID uint) error {
	if !s.authz.HasPermission(ctx, current, "users", "update") {
		observability.RecordRBACMutation(ctx, "user", "set_role", "denied")
		return ErrPermissionDenied
	}
	if _, err := s.roleRepo.FindByID(roleID); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return ErrUnknownRole
		}
		return err
	}
	if err := s.userRepo.SetRole(id, roleID); err != nil {
		observability.RecordRBACMutation(ctx, "user", "set_role", "error")
		return err
	}
	observability.RecordRBACMutation(ctx, "user", "set_role", "success")
	return nil
}

func (s *UserAdminService) Delete(ctx context.Context, current *domain.User, id uint) error {
	if !s.authz.HasPermission(ctx, current, "users", "delete") {
		observability.RecordRBACMutation(ctx, "user", "delete", "denied")
		return ErrPermissionDenied
	}
	if current.ID == id {
		return ErrSelfDelete
	}
	if err := s.userRepo.DeleteByID(id); err != nil {
		observability.RecordRBACMutation(ctx, "user", "delete", "error")
		return err
	}
	observability.RecordRBACMutation(ctx, "user", "delete", "success")
	return nil
}
