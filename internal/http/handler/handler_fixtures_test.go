package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/http/middleware"
	"go-blog-rbac-service/internal/repository"
	"go-blog-rbac-service/internal/security"
	"go-blog-rbac-service/internal/service"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

var errStubNotImplemented = errors.New("not implemented")

type stubAuthService struct {
	signupFn func(in service.SignupInput) (*domain.User, string, error)
	loginFn  func(email, password string) (*domain.User, string, error)
}

func (s *stubAuthService) Signup(in service.SignupInput) (*domain.User, string, error) {
	if s.signupFn != nil {
		return s.signupFn(in)
	}
	return nil, "", errStubNotImplemented
}

func (s *stubAuthService) Login(email, password string) (*domain.User, string, error) {
	if s.loginFn != nil {
		return s.loginFn(email, password)
	}
	return nil, "", errStubNotImplemented
}

func (s *stubAuthService) CurrentUser(_ *security.SessionClaims) (*domain.User, error) {
	return nil, nil
}

type stubPostService struct {
	listPublishedFn func(req repository.PageRequest) (repository.PageResult[domain.Post], error)
	getPublishedFn  func(id uint) (*domain.Post, error)
	listFn          func(ctx context.Context, current *domain.User, req repository.PageRequest) (repository.PageResult[domain.Post], error)
	getFn           func(ctx context.Context, current *domain.User, id uint) (*domain.Post, error)
	createFn        func(ctx context.Context, current *domain.User, in service.PostInput) (*domain.Post, error)
	updateFn        func(ctx context.Context, current *domain.User, id uint, in service.PostInput) (*domain.Post, error)
	setStatusFn     func(ctx context.Context, current *domain.User, id uint, status string) (*domain.Post, error)
	deleteFn        func(ctx context.Context, current *domain.User, id uint) error
}

func (s *stubPostService) ListPublished(req repository.PageRequest) (repository.PageResult[domain.Post], error) {
	if s.listPublishedFn != nil {
		return s.listPublishedFn(req)
	}
	return repository.PageResult[domain.Post]{}, errStubNotImplemented
}

func (s *stubPostService) GetPublished(id uint) (*domain.Post, error) {
	if s.getPublishedFn != nil {
		return s.getPublishedFn(id)
	}
	return nil, errStubNotImplemented
}

func (s *stubPostService) List(ctx context.Context, current *domain.User, req repository.PageRequest) (repository.PageResult[domain.Post], error) {
	if s.listFn != nil {
		return s.listFn(ctx, current, req)
	}
	return repository.PageResult[domain.Post]{}, errStubNotImplemented
}

func (s *stubPostService) Get(ctx context.Context, current *domain.User, id uint) (*domain.Post, error) {
	if s.getFn != nil {
		return s.getFn(ctx, current, id)
	}
	return nil, errStubNotImplemented
}

func (s *stubPostService) Create(ctx context.Context, current *domain.User, in service.PostInput) (*domain.Post, error) {
	if s.createFn != nil {
		return s.createFn(ctx, current, in)
	}
	return nil, errStubNotImplemented
}

func (s *stubPostService) Update(ctx context.Context, current *domain.User, id uint, in service.PostInput) (*domain.Post, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, current, id, in)
	}
	return nil, errStubNotImplemented
}

func (s *stubPostService) SetStatus(ctx context.Context, current *domain.User, id uint, status string) (*domain.Post, error) {
	if s.setStatusFn != nil {
		return s.setStatusFn(ctx, current, id, status)
	}
	return nil, errStubNotImplemented
}

func (s *stubPostService) Delete(ctx context.Context, current *domain.User, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, current, id)
	}
	return errStubNotImplemented
}

type stubUserAdminService struct {
	listFn         func(ctx context.Context, current *domain.User, req repository.PageRequest) (repository.PageResult[domain.User], error)
	getFn          func(ctx context.Context, current *domain.User, id uint) (*domain.User, error)
	updateStatusFn func(ctx context.Context, current *domain.User, id uint, status string) error
	updateRoleFn   func(ctx context.Context, current *domain.User, id, roleID uint) error
	deleteFn       func(ctx context.Context, current *domain.User, id uint) error
}

func (s *stubUserAdminService) List(ctx context.Context, current *domain.User, req repository.PageRequest) (repository.PageResult[domain.User], error) {
	if s.listFn != nil {
		return s.listFn(ctx, current, req)
	}
	return repository.PageResult[domain.User]{}, errStubNotImplemented
}

func (s *stubUserAdminService) Get(ctx context.Context, current *domain.User, id uint) (*domain.User, error) {
	if s.getFn != nil {
		return s.getFn(ctx, current, id)
	}
	return nil, errStubNotImplemented
}

func (s *stubUserAdminService) UpdateStatus(ctx context.Context, current *domain.User, id uint, status string) error {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, current, id, status)
	}
	return errStubNotImplemented
}

func (s *stubUserAdminService) UpdateRole(ctx context.Context, current *domain.User, id, roleID uint) error {
	if s.updateRoleFn != nil {
		return s.updateRoleFn(ctx, current, id, roleID)
	}
	return errStubNotImplemented
}

func (s *stubUserAdminService) Delete(ctx context.Context, current *domain.User, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, current, id)
	}
	return errStubNotImplemented
}

type stubRoleService struct {
	listFn         func(ctx context.Context, current *domain.User) ([]service.RoleWithUsage, error)
	listPermsFn    func(ctx context.Context, current *domain.User) ([]domain.Permission, error)
	createFn       func(ctx context.Context, current *domain.User, name, description string, permissionIDs []uint) (*domain.Role, error)
	createPermFn   func(ctx context.Context, current *domain.User, name, description, resource, action string) (*domain.Permission, error)
	replacePermsFn func(ctx context.Context, current *domain.User, roleID uint, permissionIDs []uint) (*domain.Role, error)
}

func (s *stubRoleService) List(ctx context.Context, current *domain.User) ([]service.RoleWithUsage, error) {
	if s.listFn != nil {
		return s.listFn(ctx, current)
	}
	return nil, errStubNotImplemented
}

func (s *stubRoleService) ListPermissions(ctx context.Context, current *domain.User) ([]domain.Permission, error) {
	if s.listPermsFn != nil {
		return s.listPermsFn(ctx, current)
	}
	return nil, errStubNotImplemented
}

func (s *stubRoleService) Create(ctx context.Context, current *domain.User, name, description string, permissionIDs []uint) (*domain.Role, error) {
	if s.createFn != nil {
		return s.createFn(ctx, current, name, description, permissionIDs)
	}
	return nil, errStubNotImplemented
}

func (s *stubRoleService) CreatePermission(ctx context.Context, current *domain.User, name, description, resource, action string) (*domain.Permission, error) {
	if s.createPermFn != nil {
		return s.createPermFn(ctx, current, name, description, resource, action)
	}
	return nil, errStubNotImplemented
}

func (s *stubRoleService) ReplacePermissions(ctx context.Context, current *domain.User, roleID uint, permissionIDs []uint) (*domain.Role, error) {
	if s.replacePermsFn != nil {
		return s.replacePermsFn(ctx, current, roleID, permissionIDs)
	}
	return nil, errStubNotImplemented
}

type stubProfileService struct {
	updateFn       func(ctx context.Context, current *domain.User, in service.ProfileInput) (*domain.User, error)
	updateAvatarFn func(ctx context.Context, current *domain.User, file io.Reader, fileSize int64) (*domain.User, error)
	avatarURLFn    func(ctx context.Context, user *domain.User) (string, error)
}

func (s *stubProfileService) Update(ctx context.Context, current *domain.User, in service.ProfileInput) (*domain.User, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, current, in)
	}
	return nil, errStubNotImplemented
}

func (s *stubProfileService) UpdateAvatar(ctx context.Context, current *domain.User, file io.Reader, fileSize int64) (*domain.User, error) {
	if s.updateAvatarFn != nil {
		return s.updateAvatarFn(ctx, current, file, fileSize)
	}
	return nil, errStubNotImplemented
}

func (s *stubProfileService) AvatarURL(ctx context.Context, user *domain.User) (string, error) {
	if s.avatarURLFn != nil {
		return s.avatarURLFn(ctx, user)
	}
	return "", nil
}

type staticResolver struct{ user *domain.User }

func (r staticResolver) CurrentUser(_ *security.SessionClaims) (*domain.User, error) {
	return r.user, nil
}

var testCodec = security.NewSessionCodec("0123456789abcdef0123456789abcdef", time.Hour)

// serveAs runs the handler through the identity middleware with the given
// session user. A nil user serves the request anonymously.
func serveAs(t *testing.T, user *domain.User, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		token, err := testCodec.Issue(user.ID, user.Role.Name)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	middleware.SessionIdentity(testCodec, staticResolver{user: user})(h).ServeHTTP(rr, req)
	return rr
}
