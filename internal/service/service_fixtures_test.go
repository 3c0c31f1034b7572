package service

import (
	"sort"
	"strings"
	"time"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/repository"
)

// In-memory repository states shared by the service tests.

type roleRepoState struct {
	nextID uint
	byID   map[uint]*domain.Role
	perms  *permRepoState

	findDefaultErr error
}

func newRoleRepoState(perms *permRepoState) *roleRepoState {
	return &roleRepoState{nextID: 1, byID: map[uint]*domain.Role{}, perms: perms}
}

func (s *roleRepoState) FindByID(id uint) (*domain.Role, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrRoleNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *roleRepoState) FindByName(name string) (*domain.Role, error) {
	for _, r := range s.byID {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrRoleNotFound
}

func (s *roleRepoState) FindDefault() (*domain.Role, error) {
	if s.findDefaultErr != nil {
		return nil, s.findDefaultErr
	}
	for _, r := range s.byID {
		if r.IsDefault {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNoDefaultRole
}

func (s *roleRepoState) List() ([]domain.Role, error) {
	ids := make([]int, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	out := make([]domain.Role, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.byID[uint(id)])
	}
	return out, nil
}

func (s *roleRepoState) Create(role *domain.Role, permissionIDs []uint) error {
	for _, r := range s.byID {
		if r.Name == role.Name {
			return repository.ErrDuplicateRole
		}
	}
	role.ID = s.nextID
	s.nextID++
	s.byID[role.ID] = role
	return s.ReplacePermissions(role.ID, permissionIDs)
}

func (s *roleRepoState) ReplacePermissions(roleID uint, permissionIDs []uint) error {
	role, ok := s.byID[roleID]
	if !ok {
		return repository.ErrRoleNotFound
	}
	grants := make([]domain.Permission, 0, len(permissionIDs))
	for _, pid := range permissionIDs {
		p, ok := s.perms.byID[pid]
		if !ok {
			return repository.ErrUnknownGrantIDs
		}
		grants = append(grants, *p)
	}
	role.Permissions = grants
	return nil
}

type permRepoState struct {
	nextID uint
	byID   map[uint]*domain.Permission
}

func newPermRepoState() *permRepoState {
	return &permRepoState{nextID: 1, byID: map[uint]*domain.Permission{}}
}

func (s *permRepoState) add(resource, action string) domain.Permission {
	p := &domain.Permission{ID: s.nextID, Name: resource + ":" + action, Resource: resource, Action: action}
	s.nextID++
	s.byID[p.ID] = p
	return *p
}

func (s *permRepoState) List() ([]domain.Permission, error) {
	out := make([]domain.Permission, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Action < out[j].Action
	})
	return out, nil
}

func (s *permRepoState) FindByResourceAction(resource, action string) (*domain.Permission, error) {
	for _, p := range s.byID {
		if p.Resource == resource && p.Action == action {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrPermissionNotFound
}

func (s *permRepoState) Create(perm *domain.Permission) error {
	for _, p := range s.byID {
		if p.Resource == perm.Resource && p.Action == perm.Action {
			return repository.ErrDuplicatePermission
		}
	}
	perm.ID = s.nextID
	s.nextID++
	cp := *perm
	s.byID[perm.ID] = &cp
	return nil
}

type userRepoState struct {
	nextID uint
	byID   map[uint]*domain.User
	roles  *roleRepoState
}

func newUserRepoState(roles *roleRepoState) *userRepoState {
	return &userRepoState{nextID: 1, byID: map[uint]*domain.User{}, roles: roles}
}

func (s *userRepoState) materialize(u *domain.User) *domain.User {
	cp := *u
	if role, ok := s.roles.byID[cp.RoleID]; ok {
		cp.Role = *role
	}
	return &cp
}

func (s *userRepoState) FindByID(id uint) (*domain.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return s.materialize(u), nil
}

func (s *userRepoState) FindByEmail(email string) (*domain.User, error) {
	for _, u := range s.byID {
		if u.Email == strings.ToLower(email) {
			return s.materialize(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *userRepoState) Create(user *domain.User) error {
	user.ID = s.nextID
	s.nextID++
	cp := *user
	s.byID[user.ID] = &cp
	return nil
}

func (s *userRepoState) Update(id uint, updates map[string]any) error {
	u, ok := s.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	for k, v := range updates {
		switch k {
		case "name":
			u.Name = v.(string)
		case "phone":
			u.Phone = v.(string)
		case "avatar_url":
			u.AvatarURL = v.(string)
		case "status":
			u.Status = v.(string)
		case "role_id":
			u.RoleID = v.(uint)
		}
	}
	return nil
}

func (s *userRepoState) ListPaged(req repository.PageRequest) (repository.PageResult[domain.User], error) {
	ids := make([]int, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, int(id))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	items := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		items = append(items, *s.materialize(s.byID[uint(id)]))
	}
	return repository.PageResult[domain.User]{
		Items: items, Page: 1, PageSize: len(items), Total: int64(len(items)), TotalPages: 1,
	}, nil
}

func (s *userRepoState) SetRole(userID, roleID uint) error {
	return s.Update(userID, map[string]any{"role_id": roleID})
}

func (s *userRepoState) SetStatus(userID uint, status string) error {
	return s.Update(userID, map[string]any{"status": status})
}

func (s *userRepoState) DeleteByID(id uint) error {
	if _, ok := s.byID[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *userRepoState) CountByRole(roleID uint) (int64, error) {
	var count int64
	for _, u := range s.byID {
		if u.RoleID == roleID {
			count++
		}
	}
	return count, nil
}

type postRepoState struct {
	nextID uint
	byID   map[uint]*domain.Post
}

func newPostRepoState() *postRepoState {
	return &postRepoState{nextID: 1, byID: map[uint]*domain.Post{}}
}

func (s *postRepoState) Create(post *domain.Post) error {
	post.ID = s.nextID
	s.nextID++
	cp := *post
	s.byID[post.ID] = &cp
	return nil
}

func (s *postRepoState) FindByID(id uint) (*domain.Post, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *postRepoState) ListPaged(req repository.PageRequest, filter repository.PostFilter) (repository.PageResult[domain.Post], error) {
	ids := make([]int, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, int(id))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	items := make([]domain.Post, 0, len(ids))
	for _, id := range ids {
		p := s.byID[uint(id)]
		if filter.AuthorID != 0 && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		items = append(items, *p)
	}
	return repository.PageResult[domain.Post]{
		Items: items, Page: 1, PageSize: len(items), Total: int64(len(items)), TotalPages: 1,
	}, nil
}

func (s *postRepoState) ListPublished(req repository.PageRequest) (repository.PageResult[domain.Post], error) {
	return s.ListPaged(req, repository.PostFilter{Status: domain.PostStatusPublished})
}

func (s *postRepoState) Update(id uint, updates map[string]any) error {
	p, ok := s.byID[id]
	if !ok {
		return repository.ErrPostNotFound
	}
	for k, v := range updates {
		switch k {
		case "title":
			p.Title = v.(string)
		case "content":
			p.Content = v.(string)
		case "excerpt":
			p.Excerpt = v.(string)
		case "status":
			p.Status = v.(string)
		case "published_at":
			p.PublishedAt = v.(*time.Time)
		}
	}
	return nil
}

func (s *postRepoState) DeleteByID(id uint) error {
	if _, ok := s.byID[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(s.byID, id)
	return nil
}
