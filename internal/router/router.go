package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/handlers"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/logger"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/middleware"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	limiter middleware.RateLimiter,
	subjectHandler *handlers.SubjectHandler,
	studySessionHandler *handlers.StudySessionHandler,
	statsHandler *handlers.StatsHandler,
	taskHandler *handlers.TaskHandler,
	assistantHandler *handlers.AssistantHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logger.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Browsers cannot send headers on the upgrade; the hub checks ?token.
		r.Get("/ws", wsHub.HandleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(middleware.RateLimit(limiter))

			r.Route("/subjects", func(r chi.Router) {
				r.Get("/", subjectHandler.List)
				r.Post("/", subjectHandler.Create)
				r.Get("/{id}", subjectHandler.Get)
				r.Delete("/{id}", subjectHandler.Delete)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", studySessionHandler.List)
				r.Post("/", studySessionHandler.Create)
				r.Get("/{id}", studySessionHandler.Get)
				r.Delete("/{id}", studySessionHandler.Delete)
			})

			r.Route("/stats", func(r chi.Router) {
				r.Get("/daily", statsHandler.Daily)
				r.Get("/weekly", statsHandler.Weekly)
				r.Get("/report", statsHandler.Report)
			})

			r.Get("/dashboard", statsHandler.Dashboard)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Patch("/{id}/toggle", taskHandler.Toggle)
			})

			r.Post("/assistant/chat", assistantHandler.Chat)
		})
	})

	return otelhttp.NewHandler(r, "study-planner",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/health" }))
}
