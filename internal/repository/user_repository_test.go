package repository

import (
	"errors"
	"fmt"
	"testing"

	"go-blog-rbac-service/internal/domain"
)

func migrateRBACForTest(t *testing.T, db interface {
	AutoMigrate(...any) error
}) {
	t.Helper()
	if err := db.AutoMigrate(&domain.User{}, &domain.Role{}, &domain.Permission{}, &domain.RolePermission{}); err != nil {
		t.Fatalf("migrate rbac tables: %v", err)
	}
}

func TestUserRepositoryCreateAndFind(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateRBACForTest(t, db)
	roles := NewRoleRepository(db)
	users := NewUserRepository(db)

	role := &domain.Role{Name: "user", IsDefault: true}
	if err := roles.Create(role, nil); err != nil {
		t.Fatalf("create role: %v", err)
	}

	u := &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Status: domain.UserStatusActive, RoleID: role.ID}
	if err := users.Create(u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	byEmail, err := users.FindByEmail("ada@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("id mismatch: got %d want %d", byEmail.ID, u.ID)
	}
	if byEmail.Role.Name != "user" {
		t.Fatalf("expected role preloaded, got %+v", byEmail.Role)
	}

	if _, err := users.FindByEmail("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepositoryFindPreloadsRolePermissions(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateRBACForTest(t, db)
	roles := NewRoleRepository(db)
	users := NewUserRepository(db)

	perm := domain.Permission{Name: "posts:create", Resource: "posts", Action: "create"}
	if err := db.Create(&perm).Error; err != nil {
		t.Fatalf("create permission: %v", err)
	}
	role := &domain.Role{Name: "author"}
	if err := roles.Create(role, []uint{perm.ID}); err != nil {
		t.Fatalf("create role: %v", err)
	}
	u := &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Status: domain.UserStatusActive, RoleID: role.ID}
	if err := users.Create(u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	loaded, err := users.FindByID(u.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if len(loaded.Role.Permissions) != 1 || loaded.Role.Permissions[0].Resource != "posts" {
		t.Fatalf("expected role permissions preloaded, got %+v", loaded.Role.Permissions)
	}
}

func TestUserRepositoryStatusRoleAndDelete(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateRBACForTest(t, db)
	roles := NewRoleRepository(db)
	users := NewUserRepository(db)

	userRole := &domain.Role{Name: "user", IsDefault: true}
	adminRole := &domain.Role{Name: "admin"}
	for _, r := range []*domain.Role{userRole, adminRole} {
		if err := roles.Create(r, nil); err != nil {
			t.Fatalf("create role %s: %v", r.Name, err)
		}
	}

	u := &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Status: domain.UserStatusActive, RoleID: userRole.ID}
	if err := users.Create(u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := users.SetStatus(u.ID, domain.UserStatusSuspended); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := users.SetRole(u.ID, adminRole.ID); err != nil {
		t.Fatalf("set role: %v", err)
	}
	loaded, err := users.FindByID(u.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if loaded.Status != domain.UserStatusSuspended || loaded.RoleID != adminRole.ID {
		t.Fatalf("unexpected user after updates: %+v", loaded)
	}

	count, err := users.CountByRole(adminRole.ID)
	if err != nil {
		t.Fatalf("count by role: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	if err := users.DeleteByID(u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := users.FindByID(u.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := users.DeleteByID(u.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected not found on double delete, got %v", err)
	}
}

func TestUserRepositoryListPaged(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateRBACForTest(t, db)
	roles := NewRoleRepository(db)
	users := NewUserRepository(db)

	role := &domain.Role{Name: "user", IsDefault: true}
	if err := roles.Create(role, nil); err != nil {
		t.Fatalf("create role: %v", err)
	}
	for i := 0; i < 5; i++ {
		u := &domain.User{
			Name:         fmt.Sprintf("User %d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: "x",
			Status:       domain.UserStatusActive,
			RoleID:       role.ID,
		}
		if err := users.Create(u); err != nil {
			t.Fatalf("create user %d: %v", i, err)
		}
	}

	page, err := users.ListPaged(PageRequest{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list paged: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 || len(page.Items) != 2 {
		t.Fatalf("unexpected page result: total=%d pages=%d items=%d", page.Total, page.TotalPages, len(page.Items))
	}
	if page.Items[0].Role.Name != "user" {
		t.Fatalf("expected role preloaded in list, got %+v", page.Items[0].Role)
	}
}
