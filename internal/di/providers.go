package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"gorm.io/gorm"

	"go-blog-rbac-service/internal/app"
	"go-blog-rbac-service/internal/config"
	"go-blog-rbac-service/internal/database"
	"go-blog-rbac-service/internal/health"
	"go-blog-rbac-service/internal/http/handler"
	"go-blog-rbac-service/internal/http/middleware"
	"go-blog-rbac-service/internal/http/router"
	"go-blog-rbac-service/internal/observability"
	"go-blog-rbac-service/internal/repository"
	"go-blog-rbac-service/internal/security"
	"go-blog-rbac-service/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewRoleRepository,
	repository.NewPermissionRepository,
	repository.NewPostRepository,
)

var SecuritySet = wire.NewSet(
	provideSessionCodec,
	provideCookieManager,
)

var ServiceSet = wire.NewSet(
	service.NewAuthzService,
	service.NewAuthService,
	service.NewPostService,
	service.NewUserAdminService,
	service.NewRoleService,
	provideStorageService,
	service.NewProfileService,
	wire.Bind(new(service.AuthServiceInterface), new(*service.AuthService)),
	wire.Bind(new(service.PostServiceInterface), new(*service.PostService)),
	wire.Bind(new(service.UserAdminServiceInterface), new(*service.UserAdminService)),
	wire.Bind(new(service.RoleServiceInterface), new(*service.RoleService)),
	wire.Bind(new(service.ProfileServiceInterface), new(*service.ProfileService)),
	wire.Bind(new(middleware.IdentityResolver), new(*service.AuthService)),
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewPostHandler,
	handler.NewUserHandler,
	handler.NewSettingsHandler,
	handler.NewProfileHandler,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

type MigrationRunner struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db}
}

func (m *MigrationRunner) Run() error {
	if err := database.Migrate(m.db); err != nil {
		return err
	}
	if err := database.Seed(m.db, m.cfg.BootstrapAdminEmail); err != nil {
		return err
	}
	fmt.Println("migration complete")
	return nil
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if err := database.Seed(db, cfg.BootstrapAdminEmail); err != nil {
		return nil, err
	}
	return db, nil
}

func provideSessionCodec(cfg *config.Config) *security.SessionCodec {
	return security.NewSessionCodec(cfg.SessionSecret, cfg.SessionTTL)
}

func provideCookieManager(cfg *config.Config) *security.CookieManager {
	return security.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure, cfg.CookieSameSite)
}

func provideStorageService(cfg *config.Config) (service.StorageService, error) {
	if !cfg.StorageEnabled {
		return service.NewDisabledStorageService(), nil
	}
	return service.NewMinIOStorageService(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StorageUseSSL,
	)
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	postHandler *handler.PostHandler,
	userHandler *handler.UserHandler,
	settingsHandler *handler.SettingsHandler,
	profileHandler *handler.ProfileHandler,
	codec *security.SessionCodec,
	resolver middleware.IdentityResolver,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:         authHandler,
		PostHandler:         postHandler,
		UserHandler:         userHandler,
		SettingsHandler:     settingsHandler,
		ProfileHandler:      profileHandler,
		SessionCodec:        codec,
		IdentityResolver:    resolver,
		AuthRateLimitPerMin: cfg.AuthRateLimitPerMin,
		APIRateLimitPerMin:  cfg.APIRateLimitPerMin,
		Readiness:           readiness,
		EnableOTelHTTP:      cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB) *health.ProbeRunner {
	checkers := make([]health.Checker, 0, 1)
	if c := health.NewDBChecker(db); c != nil {
		checkers = append(checkers, c)
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}
