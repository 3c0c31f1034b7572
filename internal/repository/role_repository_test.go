package repository

import (
	"errors"
	"testing"

	"go-blog-rbac-service/internal/domain"
)

func TestRoleRepositoryCreateWithGrants(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateRBACForTest(t, db)
	repo := NewRoleRepository(db)

	var perms []domain.Permission
	for _, p := range []domain.Permission{
		{Name: "posts:read", Resource: "posts", Action: "read"},
		{Name: "posts:create", Resource: "posts", Action: "create"},
	} {
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed permission: %v", err)
		}
		perms = append(perms, p)
	}

	role := &domain.Role{Name: "author", Description: "writes posts"}
	if err := repo.Create(role, []uint{perms[0].ID, perms[1].ID}); err != nil {
		t.Fatalf("create role: %v", err)
	}

	loaded, err := repo.FindByName("author")
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if len(loaded.Permissions) != 2 {
		t.Fatalf("expected 2 grants, got %d", len(loaded.Permissions))
	}

	if err := repo.Create(&domain.Role{Name: "author"}, nil); !errors.Is(err, ErrDuplicateRole) {
		t.Fatalf("expected ErrDuplicateRole, got %v", err)
	}
}

func TestRoleRepositoryReplacePermissionsIsWholesale(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateRBACForTest(t, db)
	repo := NewRoleRepository(db)

	var perms []domain.Permission
	for _, p := range []domain.Permission{
		{Name: "posts:read", Resource: "posts", Action: "read"},
		{Name: "posts:create", Resource: "posts", Action: "create"},
		{Name: "posts:delete", Resource: "posts", Action: "delete"},
	} {
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed permission: %v", err)
		}
		perms = append(perms, p)
	}

	role := &domain.Role{Name: "editor"}
	if err := repo.Create(role, []uint{perms[0].ID, perms[1].ID}); err != nil {
		t.Fatalf("create role: %v", err)
	}

	// Replace with a disjoint set; nothing from the old set may survive.
	if err := repo.ReplacePermissions(role.ID, []uint{perms[2].ID}); err != nil {
		t.Fatalf("replace permissions: %v", err)
	}
	loaded, err := repo.FindByID(role.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if len(loaded.Permissions) != 1 || loaded.Permissions[0].Action != "delete" {
		t.Fatalf("unexpected grants after replace: %+v", loaded.Permissions)
	}

	// Empty set clears every grant.
	if err := repo.ReplacePermissions(role.ID, nil); err != nil {
		t.Fatalf("replace with empty set: %v", err)
	}
	loaded, err = repo.FindByID(role.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if len(loaded.Permissions) != 0 {
		t.Fatalf("expected no grants, got %+v", loaded.Permissions)
	}
}

func TestRoleRepositoryReplacePermissionsRejectsUnknownIDs(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateRBACForTest(t, db)
	repo := NewRoleRepository(db)

	p := domain.Permission{Name: "posts:read", Resource: "posts", Action: "read"}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed permission: %v", err)
	}
	role := &domain.Role{Name: "editor"}
	if err := repo.Create(role, []uint{p.ID}); err != nil {
		t.Fatalf("create role: %v", err)
	}

	if err := repo.ReplacePermissions(role.ID, []uint{p.ID, 999}); !errors.Is(err, ErrUnknownGrantIDs) {
		t.Fatalf("expected ErrUnknownGrantIDs, got %v", err)
	}
	// Failed replace must leave the old grant set intact.
	loaded, err := repo.FindByID(role.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if len(loaded.Permissions) != 1 {
		t.Fatalf("expected grants untouched after failed replace, got %+v", loaded.Permissions)
	}

	if err := repo.ReplacePermissions(999, []uint{p.ID}); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestRoleRepositoryFindDefault(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateRBACForTest(t, db)
	repo := NewRoleRepository(db)

	if _, err := repo.FindDefault(); !errors.Is(err, ErrNoDefaultRole) {
		t.Fatalf("expected ErrNoDefaultRole, got %v", err)
	}

	if err := repo.Create(&domain.Role{Name: "guest"}, nil); err != nil {
		t.Fatalf("create guest: %v", err)
	}
	if err := repo.Create(&domain.Role{Name: "user", IsDefault: true}, nil); err != nil {
		t.Fatalf("create user: %v", err)
	}

	def, err := repo.FindDefault()
	if err != nil {
		t.Fatalf("find default: %v", err)
	}
	if def.Name != "user" {
		t.Fatalf("default role = %q, want user", def.Name)
	}
}
