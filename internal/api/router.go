package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/prevencar/inspection-system/internal/api/handler"
	"github.com/prevencar/inspection-system/internal/api/middleware"
	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

// Deps bundles everything the HTTP surface needs. Mongo and Redis may be nil
// (localstore mode, Redis disabled); they are only used by the readiness probe.
type Deps struct {
	Inspections ports.InspectionService
	Closures    ports.ClosureService
	Catalog     ports.CatalogService
	Auth        ports.AuthService
	Audit       ports.AuditRepository
	CEP         handler.CEPLookup

	JWTSecret string
	Mongo     *mongo.Database
	Redis     *redis.Client
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("prevencar"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	inspectionHandler := handler.NewInspectionHandler(d.Inspections, d.Audit)
	closureHandler := handler.NewClosureHandler(d.Closures, d.Audit)
	catalogHandler := handler.NewCatalogHandler(d.Catalog)
	cepHandler := handler.NewCEPHandler(d.CEP)

	authMiddleware := middleware.Auth(d.JWTSecret)
	finance := middleware.RequireRoles(domain.RoleAdmin, domain.RoleFinanceiro)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	// --- Auth routes (no token required) ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/password-reset", authHandler.RequestPasswordReset)
	e.POST("/auth/password-reset/confirm", authHandler.ConfirmPasswordReset)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Authenticated API ---
	v1 := e.Group("/v1", authMiddleware)

	v1.GET("/inspections", inspectionHandler.List)
	v1.POST("/inspections", inspectionHandler.Create)
	v1.GET("/inspections/:id", inspectionHandler.Get)
	v1.PUT("/inspections/:id", inspectionHandler.Update)
	v1.DELETE("/inspections/:id", inspectionHandler.Delete)
	v1.POST("/inspections/:id/send-to-cashier", inspectionHandler.SendToCashier)
	v1.POST("/inspections/:id/finalize", inspectionHandler.FinalizePayment)
	v1.GET("/inspections/:id/audit", inspectionHandler.AuditTrail, finance)
	v1.POST("/inspections/bulk/payment", inspectionHandler.BulkPayment, finance)
	v1.POST("/inspections/bulk/status", inspectionHandler.BulkStatus, finance)

	v1.GET("/services", catalogHandler.ListServices)
	v1.POST("/services", catalogHandler.CreateService, finance)
	v1.PUT("/services/:id", catalogHandler.UpdateService, finance)
	v1.DELETE("/services/:id", catalogHandler.DeleteService, finance)

	v1.GET("/indications", catalogHandler.ListIndications)
	v1.POST("/indications", catalogHandler.CreateIndication, finance)
	v1.PUT("/indications/:id", catalogHandler.UpdateIndication, finance)
	v1.DELETE("/indications/:id", catalogHandler.DeleteIndication, finance)

	v1.GET("/closures", closureHandler.List, finance)
	v1.POST("/closures", closureHandler.Create, finance)
	v1.POST("/closures/:mes/close", closureHandler.Close, finance)
	v1.POST("/closures/:mes/approve", closureHandler.Approve, finance)
	v1.POST("/closures/:mes/reject", closureHandler.Reject, finance)
	v1.POST("/closures/:mes/reopen", closureHandler.Reopen, finance)
	v1.GET("/closures/:mes/logs", closureHandler.Logs, finance)
	v1.GET("/closures/:mes/financial-logs", closureHandler.FinancialLogs, finance)

	v1.GET("/users", authHandler.ListUsers, adminOnly)
	v1.POST("/users", authHandler.CreateUser, adminOnly)
	v1.PUT("/users/:id", authHandler.UpdateUser, adminOnly)
	v1.DELETE("/users/:id", authHandler.DeleteUser, adminOnly)

	v1.GET("/cep/:cep", cepHandler.Lookup)

	return e
}
