package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go-blog-rbac-service/internal/http/response"
	"go-blog-rbac-service/internal/observability"
	"go-blog-rbac-service/internal/security"
	"go-blog-rbac-service/internal/service"
)

type AuthHandler struct {
	authSvc   service.AuthServiceInterface
	cookieMgr *security.CookieManager
	codec     *security.SessionCodec
}

func NewAuthHandler(authSvc service.AuthServiceInterface, cookieMgr *security.CookieManager, codec *security.SessionCodec) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, cookieMgr: cookieMgr, codec: codec}
}

// LoginPage and SignupPage are the gate's redirect targets. They only
// describe the form contract; rendering lives with the client.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]any{
		"page":        "login",
		"callbackUrl": safeCallback(r.URL.Query().Get("callbackUrl")),
	})
}

func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]string{"page": "signup"})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "signup", status, time.Since(start))
	}()

	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		observability.RecordAuthSignup(r.Context(), "failure")
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	user, token, err := h.authSvc.Signup(service.SignupInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Phone:    body.Phone,
	})
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.signup.failed", "email", strings.ToLower(strings.TrimSpace(body.Email)))
		observability.RecordAuthSignup(r.Context(), "failure")
		writeServiceError(w, r, err)
		return
	}

	h.cookieMgr.SetSessionCookie(w, token, h.codec.TTL())
	observability.Audit(r, "auth.signup.success", "user_id", user.ID)
	observability.RecordAuthSignup(r.Context(), "success")
	response.JSON(w, r, http.StatusCreated, map[string]any{"user": user, "redirect": "/dashboard"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		observability.RecordAuthLogin(r.Context(), "failure")
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	user, token, err := h.authSvc.Login(body.Email, body.Password)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.login.failed", "email", strings.ToLower(strings.TrimSpace(body.Email)))
		observability.RecordAuthLogin(r.Context(), "failure")
		writeServiceError(w, r, err)
		return
	}

	h.cookieMgr.SetSessionCookie(w, token, h.codec.TTL())
	observability.Audit(r, "auth.login.success", "user_id", user.ID)
	observability.RecordAuthLogin(r.Context(), "success")
	response.JSON(w, r, http.StatusOK, map[string]any{
		"user":     user,
		"redirect": safeCallback(r.URL.Query().Get("callbackUrl")),
	})
}

// Logout clears the cookie unconditionally. With stateless sessions there is
// nothing to revoke server-side; the token simply ages out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookieMgr.ClearSessionCookie(w)
	observability.Audit(r, "auth.logout")
	observability.RecordAuthLogout(r.Context(), "success")
	response.JSON(w, r, http.StatusOK, map[string]string{"redirect": "/"})
}

// safeCallback keeps post-login redirects on-site. Anything that is not a
// plain local path falls back to the dashboard.
func safeCallback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return "/dashboard"
	}
	return raw
}
