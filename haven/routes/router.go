package routes

import (
	"net/http"
	"time"

	"haven/haven/config"
	"haven/haven/controllers"
	"haven/haven/middlewares"
	"haven/haven/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups everything the HTTP surface is built from.
type Handlers struct {
	Health        *controllers.HealthController
	Chat          *controllers.ChatController
	Conversations *controllers.ConversationsController
	Export        *controllers.ExportController
	Metrics       *observability.Metrics
}

func NewRouter(cfg config.Config, h Handlers) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Trace-Id"},
		MaxAge:         300,
	}))

	r.Mount("/health", HealthRoutes(h.Health))
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Mount("/chat", ChatRoutes(h.Chat, cfg))
		api.Group(func(gr chi.Router) {
			gr.Use(requestTimeout(cfg.RequestTimeout))
			gr.Mount("/resources", ResourceRoutes(h.Chat))
			gr.Mount("/conversations", ConversationRoutes(h.Conversations, h.Export, cfg))
		})
	})
	return r
}

// requestTimeout is a no-op for non-positive durations.
func requestTimeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.Timeout(d)
}
