package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"content-summarizer-web/internal/handlers"
	"content-summarizer-web/internal/middleware"
	"content-summarizer-web/internal/models"
	"content-summarizer-web/internal/websocket"
)

// Options carries the router's dependencies.
type Options struct {
	Visitors         *middleware.VisitorAuth
	Summarize        *handlers.SummarizeHandler
	History          *handlers.HistoryHandler
	System           *handlers.SystemHandler
	Hub              *websocket.Hub
	FrontendOrigins  []string
	SubmitRatePerMin int
	Log              *logrus.Logger
}

func New(opts Options) (http.Handler, func()) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(opts.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   opts.FrontendOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: !allowsAny(opts.FrontendOrigins),
	}).Handler)

	// Submit rate limiter (per IP)
	submitLimiter := middleware.NewRateLimiter(opts.SubmitRatePerMin, time.Minute)

	// Health check
	r.Get("/health", opts.System.Health)
	r.Get("/config.js", opts.System.ConfigJS)
	r.NotFound(opts.System.NotFound)

	r.Group(func(r chi.Router) {
		r.Use(opts.Visitors.Middleware)

		r.Get("/", opts.System.Home)

		for _, kind := range models.Modalities {
			path := handlers.FormPath(kind)
			r.Get(path, opts.Summarize.Form(kind))
			r.With(submitLimiter.Middleware).Post(path, opts.Summarize.Submit(kind))
		}

		r.Route("/views/{id}", func(r chi.Router) {
			r.Get("/", opts.Summarize.View)
			r.Get("/state", opts.Summarize.State)
			r.Get("/export", opts.Summarize.Export)
			r.Post("/copy", opts.Summarize.Copy)
		})

		r.Get("/history", opts.History.List)
	})

	// ──── WebSocket ────
	r.Get("/ws", opts.Hub.HandleWebSocket)

	return r, submitLimiter.Stop
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}
