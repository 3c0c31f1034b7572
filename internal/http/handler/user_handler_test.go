package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"go-blog-rbac-service/internal/domain"
	"go-blog-rbac-service/internal/repository"
	"go-blog-rbac-service/internal/security"
	"go-blog-rbac-service/internal/service"
)

func userRouterForTest(h *UserHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/dashboard/users", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}/status", h.SetStatus)
		r.Patch("/{id}/role", h.SetRole)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func adminUser() *domain.User {
	return &domain.User{ID: 1, Status: domain.UserStatusActive, Role: domain.Role{ID: 1, Name: "admin"}}
}

func TestUserHandlerStaleSessionUnauthorized(t *testing.T) {
	router := userRouterForTest(NewUserHandler(&stubUserAdminService{}))

	token, err := testCodec.Issue(404, "admin")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/dashboard/users/", nil)
	req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: token})
	rr := serveAs(t, nil, router, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	if env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("error = %+v", env.Error)
	}
}

func TestUserHandlerList(t *testing.T) {
	stub := &stubUserAdminService{
		listFn: func(_ context.Context, current *domain.User, req repository.PageRequest) (repository.PageResult[domain.User], error) {
			return repository.PageResult[domain.User]{
				Items:      []domain.User{{ID: 2, Email: "ada@example.com"}},
				Page:       req.Page,
				PageSize:   req.PageSize,
				Total:      1,
				TotalPages: 1,
			}, nil
		},
	}
	router := userRouterForTest(NewUserHandler(stub))

	rr := serveAs(t, adminUser(), router, httptest.NewRequest(http.MethodGet, "/dashboard/users/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	if !bytes.Contains(env.Data, []byte(`"pagination"`)) {
		t.Fatalf("data = %s", env.Data)
	}
}

func TestUserHandlerListForbidden(t *testing.T) {
	stub := &stubUserAdminService{
		listFn: func(context.Context, *domain.User, repository.PageRequest) (repository.PageResult[domain.User], error) {
			return repository.PageResult[domain.User]{}, service.ErrPermissionDenied
		},
	}
	router := userRouterForTest(NewUserHandler(stub))

	rr := serveAs(t, adminUser(), router, httptest.NewRequest(http.MethodGet, "/dashboard/users/", nil))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestUserHandlerSetStatus(t *testing.T) {
	var gotID uint
	var gotStatus string
	stub := &stubUserAdminService{
		updateStatusFn: func(_ context.Context, _ *domain.User, id uint, status string) error {
			gotID, gotStatus = id, status
			return nil
		},
	}
	router := userRouterForTest(NewUserHandler(stub))

	req := httptest.NewRequest(http.MethodPatch, "/dashboard/users/5/status", bytes.NewBufferString(`{"status":"SUSPENDED"}`))
	rr := serveAs(t, adminUser(), router, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if gotID != 5 || gotStatus != domain.UserStatusSuspended {
		t.Fatalf("got id=%d status=%q", gotID, gotStatus)
	}
}

func TestUserHandlerSetRoleUnknownRole(t *testing.T) {
	stub := &stubUserAdminService{
		updateRoleFn: func(context.Context, *domain.User, uint, uint) error {
			return service.ErrUnknownRole
		},
	}
	router := userRouterForTest(NewUserHandler(stub))

	req := httptest.NewRequest(http.MethodPatch, "/dashboard/users/5/role", bytes.NewBufferString(`{"role_id":99}`))
	rr := serveAs(t, adminUser(), router, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestUserHandlerDelete(t *testing.T) {
	t.Run("self delete maps to 409", func(t *testing.T) {
		stub := &stubUserAdminService{
			deleteFn: func(context.Context, *domain.User, uint) error {
				return service.ErrSelfDelete
			},
		}
		router := userRouterForTest(NewUserHandler(stub))
		rr := serveAs(t, adminUser(), router, httptest.NewRequest(http.MethodDelete, "/dashboard/users/1", nil))
		if rr.Code != http.StatusConflict {
			t.Fatalf("status = %d", rr.Code)
		}
		env := decodeEnvelope(t, rr)
		if env.Error == nil || env.Error.Code != "SELF_DELETE" {
			t.Fatalf("error = %+v", env.Error)
		}
	})

	t.Run("missing user maps to 404", func(t *testing.T) {
		stub := &stubUserAdminService{
			deleteFn: func(context.Context, *domain.User, uint) error {
				return repository.ErrUserNotFound
			},
		}
		router := userRouterForTest(NewUserHandler(stub))
		rr := serveAs(t, adminUser(), router, httptest.NewRequest(http.MethodDelete, "/dashboard/users/99", nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rr.Code)
		}
	})
}
