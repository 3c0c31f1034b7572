package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-blog-rbac-service/internal/http/response"
	"go-blog-rbac-service/internal/observability"
	"go-blog-rbac-service/internal/service"
)

// UserHandler covers the dashboard's user administration screens.
type UserHandler struct {
	userAdminSvc service.UserAdminServiceInterface
}

func NewUserHandler(userAdminSvc service.UserAdminServiceInterface) *UserHandler {
	return &UserHandler{userAdminSvc: userAdminSvc}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	res, err := h.userAdminSvc.List(r.Context(), current, pageReq)
	if err != nil {
		observability.RecordListRequestDuration(r.Context(), "dashboard_users", "failure", time.Since(start))
		writeServiceError(w, r, err)
		return
	}
	observability.RecordListRequestDuration(r.Context(), "dashboard_users", "success", time.Since(start))
	observability.RecordListPageSize(r.Context(), "dashboard_users", pageReq.PageSize)
	response.JSON(w, r, http.StatusOK, paginatedData(res))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
		return
	}
	user, err := h.userAdminSvc.Get(r.Context(), current, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.userAdminSvc.UpdateStatus(r.Context(), current, id, body.Status); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "user.status", "actor_id", current.ID, "user_id", id, "status", body.Status)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
		return
	}
	var body struct {
		RoleID uint `json:"role_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.userAdminSvc.UpdateRole(r.Context(), current, id, body.RoleID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "user.role", "actor_id", current.ID, "user_id", id, "role_id", body.RoleID)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
		return
	}
	if err := h.userAdminSvc.Delete(r.Context(), current, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "user.delete", "actor_id", current.ID, "user_id", id)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
