package service

import (
	"context"
	"errors"
	"testing"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/repository"
)

type userAdminFixture struct {
	svc   *UserAdminService
	users *userRepoState
	roles *roleRepoState
}

func newUserAdminFixture() *userAdminFixture {
	perms := newPermRepoState()
	roles := newRoleRepoState(perms)
	users := newUserRepoState(roles)
	return &userAdminFixture{
		svc:   NewUserAdminService(users, roles, NewAuthzService()),
		users: users,
		roles: roles,
	}
}

func (fx *userAdminFixture) seedManaged(email string) *domain.User {
	u := &domain.User{Name: "Managed", Email: email, Status: domain.UserStatusActive}
	if err := fx.users.Create(u); err != nil {
		panic(err)
	}
	return u
}

func manager() *domain.User {
	u := userWithGrants("moderator",
		[2]string{"users", "read"},
		[2]string{"users", "update"},
		[2]string{"users", "delete"},
	)
	u.ID = 100
	return u
}

func TestUserAdminServicePermissionGates(t *testing.T) {
	ctx := context.Background()
	fx := newUserAdminFixture()
	target := fx.seedManaged("target@example.com")
	nobody := userWithGrants("user", [2]string{"posts", "create"})

	if _, err := fx.svc.List(ctx, nobody, repository.PageRequest{}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("List: expected ErrPermissionDenied, got %v", err)
	}
	if _, err := fx.svc.Get(ctx, nobody, target.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Get: expected ErrPermissionDenied, got %v", err)
	}
	if err := fx.svc.UpdateStatus(ctx, nobody, target.ID, domain.UserStatusSuspended); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("UpdateStatus: expected ErrPermissionDenied, got %v", err)
	}
	if err := fx.svc.UpdateRole(ctx, nobody, target.ID, 1); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("UpdateRole: expected ErrPermissionDenied, got %v", err)
	}
	if err := fx.svc.Delete(ctx, nobody, target.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Delete: expected ErrPermissionDenied, got %v", err)
	}
}

func TestUserAdminServiceUpdateStatus(t *testing.T) {
	ctx := context.Background()
	fx := newUserAdminFixture()
	target := fx.seedManaged("target@example.com")

	if err := fx.svc.UpdateStatus(ctx, manager(), target.ID, domain.UserStatusSuspended); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	got, err := fx.users.FindByID(target.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != domain.UserStatusSuspended {
		t.Fatalf("status = %q", got.Status)
	}

	err = fx.svc.UpdateStatus(ctx, manager(), target.ID, "FROZEN")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for bogus status, got %v", err)
	}
}

func TestUserAdminServiceUpdateRole(t *testing.T) {
	ctx := context.Background()
	fx := newUserAdminFixture()
	target := fx.seedManaged("target@example.com")

	modRole := &domain.Role{Name: "moderator"}
	if err := fx.roles.Create(modRole, nil); err != nil {
		t.Fatalf("seed role: %v", err)
	}

	if err := fx.svc.UpdateRole(ctx, manager(), target.ID, modRole.ID); err != nil {
		t.Fatalf("update role: %v", err)
	}
	got, err := fx.users.FindByID(target.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.RoleID != modRole.ID {
		t.Fatalf("role id = %d, want %d", got.RoleID, modRole.ID)
	}

	if err := fx.svc.UpdateRole(ctx, manager(), target.ID, 999); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestUserAdminServiceDelete(t *testing.T) {
	ctx := context.Background()
	fx := newUserAdminFixture()
	target := fx.seedManaged("target@example.com")
	boss := manager()

	t.Run("self delete is refused even with the grant", func(t *testing.T) {
		self := fx.seedManaged("boss@example.com")
		bossAsSelf := manager()
		bossAsSelf.ID = self.ID
		if err := fx.svc.Delete(ctx, bossAsSelf, self.ID); !errors.Is(err, ErrSelfDelete) {
			t.Fatalf("expected ErrSelfDelete, got %v", err)
		}
		if _, err := fx.users.FindByID(self.ID); err != nil {
			t.Fatal("self must survive the refused delete")
		}
	})

	t.Run("foreign delete removes the row", func(t *testing.T) {
		if err := fx.svc.Delete(ctx, boss, target.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := fx.users.FindByID(target.ID); !errors.Is(err, repository.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("missing user surfaces not found", func(t *testing.T) {
		if err := fx.svc.Delete(ctx, boss, 9999); !errors.Is(err, repository.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}
