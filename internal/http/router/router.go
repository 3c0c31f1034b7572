package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"go-blog-rbac-service/internal/health"
	"go-blog-rbac-service/internal/http/handler"
	"go-blog-rbac-service/internal/http/middleware"
	"go-blog-rbac-service/internal/http/response"
	"go-blog-rbac-service/internal/security"
)

type Dependencies struct {
	AuthHandler     *handler.AuthHandler
	PostHandler     *handler.PostHandler
	UserHandler     *handler.UserHandler
	SettingsHandler *handler.SettingsHandler
	ProfileHandler  *handler.ProfileHandler

	SessionCodec     *security.SessionCodec
	IdentityResolver middleware.IdentityResolver

	AuthRateLimitPerMin int
	APIRateLimitPerMin  int
	Readiness           *health.ProbeRunner
	EnableOTelHTTP      bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.NewRateLimiter(dep.APIRateLimitPerMin, time.Minute, "api").Middleware())
	r.Use(middleware.SessionIdentity(dep.SessionCodec, dep.IdentityResolver))
	r.Use(middleware.RequestGate)

	authLimiter := middleware.NewRateLimiter(dep.AuthRateLimitPerMin, time.Minute, "auth").Middleware()

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	// Public surface.
	r.Get("/", dep.PostHandler.Home)
	r.Get("/posts/{id}", dep.PostHandler.GetPublished)
	r.Get("/login", dep.AuthHandler.LoginPage)
	r.Get("/signup", dep.AuthHandler.SignupPage)
	r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
	r.With(authLimiter).Post("/signup", dep.AuthHandler.Signup)
	r.Post("/logout", dep.AuthHandler.Logout)

	// Protected surface. The gate has already redirected anonymous
	// requests; handlers still re-check grants per operation.
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", dep.ProfileHandler.Dashboard)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", dep.ProfileHandler.Get)
			r.Put("/", dep.ProfileHandler.Update)
			// Avatar upload needs a higher body limit (6MB) than the
			// global default (1MB).
			r.With(middleware.BodyLimit(6 << 20)).Post("/avatar", dep.ProfileHandler.UploadAvatar)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", dep.PostHandler.List)
			r.Post("/", dep.PostHandler.Create)
			r.Get("/{id}", dep.PostHandler.Get)
			r.Put("/{id}", dep.PostHandler.Update)
			r.Patch("/{id}/status", dep.PostHandler.SetStatus)
			r.Delete("/{id}", dep.PostHandler.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", dep.UserHandler.List)
			r.Get("/{id}", dep.UserHandler.Get)
			r.Patch("/{id}/status", dep.UserHandler.SetStatus)
			r.Patch("/{id}/role", dep.UserHandler.SetRole)
			r.Delete("/{id}", dep.UserHandler.Delete)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/roles", dep.SettingsHandler.ListRoles)
			r.Post("/roles", dep.SettingsHandler.CreateRole)
			r.Put("/roles/{id}/permissions", dep.SettingsHandler.ReplaceRolePermissions)
			r.Get("/permissions", dep.SettingsHandler.ListPermissions)
			r.Post("/permissions", dep.SettingsHandler.CreatePermission)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
