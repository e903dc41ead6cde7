package http

import (
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	authHandler AuthHandler,
	attendanceHandler AttendanceHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	authenticated := func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Get("/login/oauth/google", authHandler.LoginWithGoogle)
			r.Get("/oauth/callback/google", authHandler.OAuthCallbackGoogle)

			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Get("/sse-token", authHandler.SSEToken)
			})
		})

		r.Route("/attendance", func(r chi.Router) {
			// EventSource cannot send headers; authenticated by SSE token
			r.Get("/qr-token/stream", attendanceHandler.QRTokenStream)

			r.Group(func(r chi.Router) {
				authenticated(r)

				// Employee self service
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceScan))
					r.Use(middleware.RequireEmployee)
					r.Post("/check-in", attendanceHandler.CheckIn)
					r.Post("/check-out", attendanceHandler.CheckOut)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
					r.Use(middleware.RequireEmployee)
					r.Get("/today", attendanceHandler.Today)
					r.Get("/history", attendanceHandler.History)
				})

				r.With(middleware.RequirePermission(user.PermissionAttendanceDisplay)).
					Get("/qr-token", attendanceHandler.QRToken)

				// HR / Admin
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
					r.Get("/all", attendanceHandler.ListAll)
					r.Get("/stats", attendanceHandler.MonthStats)
					r.Get("/stats/daily", attendanceHandler.DailyStats)
				})
				r.With(middleware.RequirePermission(user.PermissionAttendanceExport)).
					Get("/export", attendanceHandler.Export)

				// Admin only
				r.With(middleware.RequirePermission(user.PermissionAttendanceClear)).
					Delete("/all", attendanceHandler.ClearAll)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/stream", notificationHandler.Stream)

			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Patch("/read", notificationHandler.MarkAsRead)
				r.Patch("/read-all", notificationHandler.MarkAllAsRead)
			})
		})
	})

	return r
}
