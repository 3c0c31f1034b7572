package handler

import (
	"encoding/json"
	"net/http"

	"go-blog-rbac-service/internal/http/response"
	"go-blog-rbac-service/internal/observability"
	"go-blog-rbac-service/internal/service"
)

// maxAvatarBody bounds the multipart form, slightly above the storage
// service's own per-file limit so oversize files fail with the service's
// error instead of a raw body-limit abort.
const maxAvatarBody = 6 << 20

type ProfileHandler struct {
	profileSvc service.ProfileServiceInterface
	authz      *service.AuthzService
}

func NewProfileHandler(profileSvc service.ProfileServiceInterface, authz *service.AuthzService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc, authz: authz}
}

// Dashboard is the landing page behind the gate. The gate guarantees a
// session; the dashboard:access grant is still checked here.
func (h *ProfileHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !h.authz.HasPermission(r.Context(), current, "dashboard", "access") {
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "permission denied", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"user": current})
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	avatarURL, err := h.profileSvc.AvatarURL(r.Context(), current)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"user": current, "avatar_url": avatarURL})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	updated, err := h.profileSvc.Update(r.Context(), current, service.ProfileInput{Name: body.Name, Phone: body.Phone})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "profile.update", "user_id", current.ID)
	response.JSON(w, r, http.StatusOK, updated)
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxAvatarBody); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart form", nil)
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "missing avatar file", nil)
		return
	}
	defer file.Close()

	updated, err := h.profileSvc.UpdateAvatar(r.Context(), current, file, header.Size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	avatarURL, err := h.profileSvc.AvatarURL(r.Context(), updated)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "profile.avatar.update", "user_id", current.ID)
	response.JSON(w, r, http.StatusOK, map[string]any{"user": updated, "avatar_url": avatarURL})
}
