package service

import (
	"context"
	"io"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/repository"
	"go-blog-rbac-service/internal/security"
)

// Handler-facing views of the services. Handlers depend on these so tests
// can substitute stubs without a database.

type AuthServiceInterface interface {
	Signup(in SignupInput) (*domain.User, string, error)
	Login(email, password string) (*domain.User, string, error)
	CurrentUser(claims *security.SessionClaims) (*domain.User, error)
}

type PostServiceInterface interface {
	ListPublished(req repository.PageRequest) (repository.PageResult[domain.Post], error)
	GetPublished(id uint) (*domain.Post, error)
	List(ctx context.Context, current *domain.User, req repository.PageRequest) (repository.PageResult[domain.Post], error)
	Get(ctx context.Context, current *domain.User, id uint) (*domain.Post, error)
	Create(ctx context.Context, current *domain.User, in PostInput) (*domain.Post, error)
	Update(ctx context.Context, current *domain.User, id uint, in PostInput) (*domain.Post, error)
	SetStatus(ctx context.Context, current *domain.User, id uint, status string) (*domain.Post, error)
	Delete(ctx context.Context, current *domain.User, id uint) error
}

type UserAdminServiceInterface interface {
	List(ctx context.Context, current *domain.User, req repository.PageRequest) (repository.PageResult[domain.User], error)
	Get(ctx context.Context, current *domain.User, id uint) (*domain.User, error)
	UpdateStatus(ctx context.Context, current *domain.User, id uint, status string) error
	UpdateRole(ctx context.Context, current *domain.User, id, roleID uint) error
	Delete(ctx context.Context, current *domain.User, id uint) error
}

type RoleServiceInterface interface {
	List(ctx context.Context, current *domain.User) ([]RoleWithUsage, error)
	ListPermissions(ctx context.Context, current *domain.User) ([]domain.Permission, error)
	Create(ctx context.Context, current *domain.User, name, description string, permissionIDs []uint) (*domain.Role, error)
	CreatePermission(ctx context.Context, current *domain.User, name, description, resource, action string) (*domain.Permission, error)
	ReplacePermissions(ctx context.Context, current *domain.User, roleID uint, permissionIDs []uint) (*domain.Role, error)
}

type ProfileServiceInterface interface {
	Update(ctx context.Context, current *domain.User, in ProfileInput) (*domain.User, error)
	UpdateAvatar(ctx context.Context, current *domain.User, file io.Reader, fileSize int64) (*domain.User, error)
	AvatarURL(ctx context.Context, user *domain.User) (string, error)
}
