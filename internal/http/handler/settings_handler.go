package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-blog-rbac-service/internal/http/response"
	"go-blog-rbac-service/internal/observability"
	"go-blog-rbac-service/internal/service"
)

// SettingsHandler exposes role and permission management. The service layer
// gates everything on settings:manage.
type SettingsHandler struct {
	roleSvc service.RoleServiceInterface
}

func NewSettingsHandler(roleSvc service.RoleServiceInterface) *SettingsHandler {
	return &SettingsHandler{roleSvc: roleSvc}
}

func (h *SettingsHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	roles, err := h.roleSvc.List(r.Context(), current)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"roles": roles})
}

func (h *SettingsHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	perms, err := h.roleSvc.ListPermissions(r.Context(), current)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"permissions": perms})
}

func (h *SettingsHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		Name          string `json:"name"`
		Description   string `json:"description"`
		PermissionIDs []uint `json:"permission_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	role, err := h.roleSvc.Create(r.Context(), current, body.Name, body.Description, body.PermissionIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "settings.role.create", "actor_id", current.ID, "role_id", role.ID, "name", role.Name)
	response.JSON(w, r, http.StatusCreated, role)
}

func (h *SettingsHandler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Resource    string `json:"resource"`
		Action      string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	perm, err := h.roleSvc.CreatePermission(r.Context(), current, body.Name, body.Description, body.Resource, body.Action)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "settings.permission.create", "actor_id", current.ID, "permission_id", perm.ID, "name", perm.Name)
	response.JSON(w, r, http.StatusCreated, perm)
}

// ReplaceRolePermissions is a full replace: the payload is the complete
// desired grant set, not a delta.
func (h *SettingsHandler) ReplaceRolePermissions(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	roleID, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid role id", nil)
		return
	}
	var body struct {
		PermissionIDs []uint `json:"permission_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	role, err := h.roleSvc.ReplacePermissions(r.Context(), current, roleID, body.PermissionIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "settings.role.permissions.replace", "actor_id", current.ID, "role_id", roleID, "grant_count", len(body.PermissionIDs))
	response.JSON(w, r, http.StatusOK, role)
}
