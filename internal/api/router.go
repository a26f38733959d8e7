package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/pcp-logistica/tracking-portal/internal/api/handler"
	"github.com/pcp-logistica/tracking-portal/internal/api/middleware"
	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
	"github.com/pcp-logistica/tracking-portal/internal/infrastructure/http/handlers"
)

const bodyLimit = "20M"

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth     ports.AuthService
	Sessions ports.SessionService
	Records  ports.RecordService
	Reports  ports.ReportService
	Users    ports.UserService
	Chat     ports.ChatService
	Audit    ports.AuditRepository
}

// Options configures the transport.
type Options struct {
	JWTSecret        string
	CORSOrigins      []string
	ChatPollInterval time.Duration
	// Readiness lists the dependency probes behind /health/ready.
	Readiness map[string]handlers.Check
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
	Logger     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "portal",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	sessionHandler := handler.NewSessionHandler(svc.Sessions)
	recordHandler := handler.NewRecordHandler(svc.Records)
	uploadHandler := handler.NewUploadHandler(svc.Records)
	reportHandler := handler.NewReportHandler(svc.Reports)
	userHandler := handler.NewUserHandler(svc.Users)
	chatHandler := handler.NewChatHandler(svc.Chat)
	streamHandler := handler.NewChatStreamHandler(svc.Chat, opts.ChatPollInterval, opts.CORSOrigins, opts.Logger)
	auditHandler := handler.NewAuditHandler(svc.Audit)

	auth := middleware.Auth(opts.JWTSecret, svc.Sessions)

	// --- Public routes ---
	e.POST("/v1/auth/login", authHandler.Login)
	e.POST("/v1/auth/register", authHandler.Register)

	// --- Authenticated routes ---
	v1 := e.Group("/v1", auth)
	v1.POST("/auth/logout", authHandler.Logout)

	v1.GET("/session", sessionHandler.Current)
	v1.POST("/session/restore", sessionHandler.Restore)
	v1.PUT("/session/theme", sessionHandler.SetTheme)
	v1.PUT("/session/view-mode", sessionHandler.SetViewMode)

	canRead := middleware.RequireView(domain.ViewDashboard, domain.ViewFollowUp, domain.ViewFollowUpPre)
	canMutate := middleware.RequireMutation()
	records := v1.Group("/records/:kind")
	records.GET("", recordHandler.List, canRead)
	records.GET("/history", recordHandler.History, middleware.RequireView(domain.ViewHistory))
	records.GET("/:id", recordHandler.Get, canRead)
	records.GET("/:id/attachments", recordHandler.Attachments, middleware.RequireView(domain.ViewDashboard, domain.ViewFollowUp, domain.ViewFollowUpPre, domain.ViewHistory))
	records.POST("", recordHandler.Create, canMutate)
	records.PUT("/:id", recordHandler.Update, canMutate)
	records.DELETE("/:id", recordHandler.Delete, canMutate)

	v1.POST("/uploads", uploadHandler.Upload, middleware.RequireMutationOrView(domain.ViewChat))
	v1.GET("/reports", reportHandler.Build, middleware.RequireView(domain.ViewReports))

	manageUsers := middleware.RequireView(domain.ViewUsers, domain.ViewSettings)
	v1.GET("/users", userHandler.List, manageUsers)
	v1.POST("/users", userHandler.Create, manageUsers)
	v1.PUT("/users/:id", userHandler.Update, manageUsers)
	v1.DELETE("/users/:id", userHandler.Delete, manageUsers)
	v1.PUT("/profile", userHandler.UpdateProfile)

	chat := v1.Group("/chat", middleware.RequireView(domain.ViewChat))
	chat.GET("/channels", chatHandler.Channels)
	chat.GET("/channels/:sheet/messages", chatHandler.Messages)
	chat.POST("/channels/:sheet/messages", chatHandler.Send)
	chat.POST("/groups", chatHandler.CreateGroup)
	chat.GET("/dm/:userID", chatHandler.DirectChannel)
	chat.GET("/stream", streamHandler.Stream)

	v1.GET("/audit", auditHandler.List, middleware.RequireAdmin())

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(opts.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
