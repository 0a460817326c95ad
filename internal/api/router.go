package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/marketingcrm/portal/docs"
	"github.com/marketingcrm/portal/internal/api/handler"
	"github.com/marketingcrm/portal/internal/api/middleware"
	"github.com/marketingcrm/portal/internal/core/domain"
	"github.com/marketingcrm/portal/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Sessions ports.SessionOpener
	Profiles ports.ProfileService
	Orders   ports.OrderService
	Requests ports.RequestService

	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handler.Check

	CookieName   string
	CookieSecure bool
	Log          zerolog.Logger

	// Metrics receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Metrics != nil {
		registerer, gatherer = d.Metrics, d.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: registerer,
	}))

	// --- Operational endpoints (no session) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Portal routes: every request resolves its browser session ---
	app := e.Group("", middleware.Session(middleware.SessionConfig{
		CookieName: d.CookieName,
		Secure:     d.CookieSecure,
		Opener:     d.Sessions,
	}))

	authHandler := handler.NewAuthHandler()
	app.GET(domain.LandingRoute, authHandler.Landing)
	app.POST("/login", authHandler.Login)
	app.POST("/register", authHandler.Register)
	app.POST("/logout", authHandler.Logout)
	app.POST("/session/refresh", authHandler.Refresh)

	withNav := middleware.Protected(true)
	bare := middleware.Protected(false)

	profileHandler := handler.NewProfileHandler(d.Profiles)
	app.GET(domain.DashboardRoute, profileHandler.Get, withNav)
	app.PUT(domain.DashboardRoute, profileHandler.Update, withNav)

	requestHandler := handler.NewRequestHandler(d.Requests)
	upload := echomiddleware.BodyLimit("12M")
	app.GET("/request", requestHandler.Catalog, bare)
	app.POST("/request", requestHandler.Submit, bare, upload)

	orderHandler := handler.NewOrderHandler(d.Orders)
	app.GET("/my-requests", orderHandler.MyRequests, withNav)

	admin := app.Group(domain.OrdersRoute, withNav, middleware.RBAC(domain.RoleAdmin))
	admin.GET("", orderHandler.List)
	admin.PUT("/:id/status", orderHandler.UpdateStatus)
	admin.GET("/:id/invoice", orderHandler.Invoice)
	admin.GET("/:id/payment-proof", orderHandler.PaymentProof)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
