package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type RouterOptions struct {
	AllowedOrigins []string
	// RateLimitPerMinute caps requests per client IP; zero disables limiting.
	RateLimitPerMinute int
	Logger             *zap.Logger
	Metrics            RequestObserver
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
}

func NewRouter(api *API, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger, opts.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(securityHeaders)
	if opts.RateLimitPerMinute > 0 {
		r.Use(newIPRateLimiter(opts.RateLimitPerMinute).middleware)
	}

	r.NotFound(writeNotFound)
	r.MethodNotAllowed(writeMethodNotAllowed)

	r.Get("/healthz", api.HandleHealth)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	r.Post("/sync", api.HandleSync)
	r.Get("/questions", api.HandleQuestions)
	r.Get("/settings", api.HandleGetSettings)
	r.Put("/settings", api.HandlePutSettings)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", api.HandleStartSession)
		r.Get("/{id}", api.HandleGetSession)
		r.Delete("/{id}", api.HandleAbandonSession)
		r.Put("/{id}/answers/{index}", api.HandleSelectAnswer)
		r.Post("/{id}/submit", api.HandleSubmit)
	})

	r.Route("/results", func(r chi.Router) {
		r.Get("/", api.HandleListResults)
		r.Get("/latest", api.HandleLatestResult)
		r.Get("/{id}", api.HandleGetResult)
		r.Get("/{id}/report.pdf", api.HandleResultReport)
	})

	return r
}
